package models

import "time"

// Player has a composite primary key: slot ids (team1/team2) repeat
// across teams.
type Player struct {
	ID              string    `gorm:"size:32;primaryKey" json:"id"`
	TeamID          string    `gorm:"size:32;primaryKey" json:"team_id"`
	Name            string    `gorm:"size:32;not null" json:"name"`
	IndividualScore int       `gorm:"not null;default:0" json:"individual_score"`
	IsActive        bool      `gorm:"not null;default:false" json:"is_active"`
	LastActivity    time.Time `json:"last_activity"`
}
