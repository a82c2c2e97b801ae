// Package store implements the persistence gateway on top of gorm. The
// realtime core consumes it through the game.Gateway interface; the admin
// handlers query it directly.
package store

import (
	"fmt"
	"time"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/models"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetOrCreateTeam(id string) (*models.Team, error) {
	var team models.Team
	err := s.db.Where(models.Team{ID: id}).
		Attrs(models.Team{Name: id, CreatedAt: time.Now()}).
		FirstOrCreate(&team).Error
	if err != nil {
		return nil, fmt.Errorf("get or create team %s: %w", id, err)
	}
	return &team, nil
}

func (s *Store) GetOrCreatePlayer(teamID, playerID string) (*models.Player, error) {
	var player models.Player
	err := s.db.Where(models.Player{ID: playerID, TeamID: teamID}).
		Attrs(models.Player{Name: playerID, LastActivity: time.Now()}).
		FirstOrCreate(&player).Error
	if err != nil {
		return nil, fmt.Errorf("get or create player %s/%s: %w", teamID, playerID, err)
	}
	return &player, nil
}

func (s *Store) SetPlayerActive(teamID, playerID string, active bool) error {
	return s.db.Model(&models.Player{}).
		Where("team_id = ? AND id = ?", teamID, playerID).
		Updates(map[string]interface{}{
			"is_active":     active,
			"last_activity": time.Now(),
		}).Error
}

// ResetLiveness marks every player inactive. Run at startup so stale flags
// from a previous process do not survive a restart.
func (s *Store) ResetLiveness() error {
	return s.db.Model(&models.Player{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func (s *Store) GetProgress(teamID string) ([]models.Progress, error) {
	var progress []models.Progress
	if err := s.db.Where("team_id = ?", teamID).Find(&progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *Store) UpsertProgress(p *models.Progress) error {
	return s.db.Save(p).Error
}

// SolvePuzzle persists a solve: the progress record and the team score move
// together in one transaction.
func (s *Store) SolvePuzzle(p *models.Progress) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return tx.Model(&models.Team{}).
			Where("id = ?", p.TeamID).
			UpdateColumn("score", gorm.Expr("score + ?", p.PointsEarned)).Error
	})
}

// SetTeamFinished stamps the team and closes its game session.
func (s *Store) SetTeamFinished(teamID string, at time.Time, finalScore int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Team{}).
			Where("id = ?", teamID).
			Update("finished_at", at).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.GameSession{}).
			Where("team_id = ? AND status = ?", teamID, models.SessionStatusInProgress).
			Updates(map[string]interface{}{
				"status":      models.SessionStatusCompleted,
				"ended_at":    at,
				"final_score": finalScore,
			}).Error
	})
}

func (s *Store) AppendChatMessage(m *models.ChatMessage) error {
	return s.db.Create(m).Error
}

// GetChatWindow returns the most recent messages in arrival order.
func (s *Store) GetChatWindow(teamID string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.Where("team_id = ?", teamID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *Store) GetTokenStates(teamID string) (map[string]bool, error) {
	var states []models.ButtonState
	if err := s.db.Where("team_id = ?", teamID).Find(&states).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(states))
	for _, st := range states {
		out[st.PlayerID] = st.IsEnabled
	}
	return out, nil
}

func (s *Store) SetTokenState(teamID, playerID string, enabled bool) error {
	state := models.ButtonState{
		TeamID:    teamID,
		PlayerID:  playerID,
		IsEnabled: enabled,
		UpdatedAt: time.Now(),
	}
	return s.db.Save(&state).Error
}

func (s *Store) StartSession(teamID string) error {
	var session models.GameSession
	return s.db.
		Where("team_id = ? AND status = ?", teamID, models.SessionStatusInProgress).
		Attrs(models.GameSession{
			TeamID:    teamID,
			StartedAt: time.Now(),
			Status:    models.SessionStatusInProgress,
		}).
		FirstOrCreate(&session).Error
}
