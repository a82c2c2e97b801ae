package models

import "time"

type Progress struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TeamID       string     `gorm:"size:32;not null;uniqueIndex:idx_team_puzzle" json:"team_id"`
	PlayerID     string     `gorm:"size:32" json:"player_id,omitempty"`
	PuzzleName   string     `gorm:"size:32;not null;uniqueIndex:idx_team_puzzle" json:"puzzle_name"`
	IsSolved     bool       `gorm:"not null;default:false" json:"is_solved"`
	SolvedAt     *time.Time `json:"solved_at,omitempty"`
	Attempts     int        `gorm:"not null;default:0" json:"attempts"`
	HintsUsed    int        `gorm:"not null;default:0" json:"hints_used"`
	PointsEarned int        `gorm:"not null;default:0" json:"points_earned"`
}
