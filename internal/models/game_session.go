package models

import "time"

type GameSession struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TeamID     string     `gorm:"size:32;not null;index" json:"team_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Status     string     `gorm:"size:32;not null;default:'in_progress'" json:"status"`
	FinalScore int        `gorm:"not null;default:0" json:"final_score"`
}

const (
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusAbandoned  = "abandoned"
)
