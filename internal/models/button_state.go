package models

import "time"

// ButtonState stores the turn token for one (team, player) slot.
type ButtonState struct {
	TeamID    string    `gorm:"size:32;primaryKey" json:"team_id"`
	PlayerID  string    `gorm:"size:32;primaryKey" json:"player_id"`
	IsEnabled bool      `gorm:"not null;default:false" json:"is_enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}
