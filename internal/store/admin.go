package store

import (
	"errors"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/models"

	"gorm.io/gorm"
)

var ErrTeamNotFound = errors.New("team not found")

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	TeamID        string `json:"team_id"`
	TeamName      string `json:"team_name"`
	Score         int    `json:"score"`
	PuzzlesSolved int    `json:"puzzles_solved"`
}

type GlobalStats struct {
	TotalTeams    int64   `json:"total_teams"`
	TotalPlayers  int64   `json:"total_players"`
	TotalMessages int64   `json:"total_messages"`
	TotalPuzzles  int64   `json:"total_puzzles"`
	SolvedPuzzles int64   `json:"solved_puzzles"`
	SuccessRate   float64 `json:"success_rate"`
}

func (s *Store) ListTeams() ([]models.Team, error) {
	var teams []models.Team
	if err := s.db.Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *Store) TeamDetail(teamID string) (*models.Team, error) {
	var team models.Team
	err := s.db.Preload("Players").Preload("Progress").
		Where("id = ?", teamID).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *Store) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	var teams []models.Team
	err := s.db.Order("score DESC").Limit(limit).Find(&teams).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(teams))
	for i, team := range teams {
		var solved int64
		err := s.db.Model(&models.Progress{}).
			Where("team_id = ? AND is_solved = ?", team.ID, true).
			Count(&solved).Error
		if err != nil {
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{
			Rank:          i + 1,
			TeamID:        team.ID,
			TeamName:      team.Name,
			Score:         team.Score,
			PuzzlesSolved: int(solved),
		})
	}
	return entries, nil
}

func (s *Store) Stats() (*GlobalStats, error) {
	var stats GlobalStats
	if err := s.db.Model(&models.Team{}).Count(&stats.TotalTeams).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Player{}).Count(&stats.TotalPlayers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.ChatMessage{}).Count(&stats.TotalMessages).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Progress{}).Count(&stats.TotalPuzzles).Error; err != nil {
		return nil, err
	}
	err := s.db.Model(&models.Progress{}).
		Where("is_solved = ?", true).
		Count(&stats.SolvedPuzzles).Error
	if err != nil {
		return nil, err
	}
	if stats.TotalPuzzles > 0 {
		stats.SuccessRate = float64(stats.SolvedPuzzles) / float64(stats.TotalPuzzles) * 100
	}
	return &stats, nil
}

func (s *Store) TeamMessages(teamID string, limit int) ([]models.ChatMessage, error) {
	return s.GetChatWindow(teamID, limit)
}

// DeleteTeam removes a team and all of its records.
func (s *Store) DeleteTeam(teamID string) error {
	var team models.Team
	if err := s.db.Where("id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Player{}, &models.Progress{}, &models.ChatMessage{},
			&models.ButtonState{}, &models.GameSession{},
		} {
			if err := tx.Where("team_id = ?", teamID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Team{}, "id = ?", teamID).Error
	})
}

// ResetTeam clears score and progress but keeps the team and its players.
func (s *Store) ResetTeam(teamID string) error {
	var team models.Team
	if err := s.db.Where("id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Team{}).Where("id = ?", teamID).
			Updates(map[string]interface{}{"score": 0, "finished_at": nil}).Error
		if err != nil {
			return err
		}
		return tx.Where("team_id = ?", teamID).Delete(&models.Progress{}).Error
	})
}
