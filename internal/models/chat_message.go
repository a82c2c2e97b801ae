package models

import "time"

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	TeamID    string    `gorm:"size:32;not null;index" json:"-"`
	PlayerID  string    `gorm:"size:32;not null" json:"player_id"`
	Message   string    `gorm:"type:text;not null" json:"text"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	IsSystem  bool      `gorm:"not null;default:false" json:"is_system,omitempty"`
}
