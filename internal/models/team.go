package models

import "time"

type Team struct {
	ID         string     `gorm:"size:32;primaryKey" json:"id"`
	Name       string     `gorm:"size:32;not null" json:"name"`
	Score      int        `gorm:"not null;default:0" json:"score"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	Players  []Player   `gorm:"foreignKey:TeamID" json:"players,omitempty"`
	Progress []Progress `gorm:"foreignKey:TeamID" json:"progress,omitempty"`
}
