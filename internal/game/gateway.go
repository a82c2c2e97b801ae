package game

import (
	"errors"
	"time"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/models"
)

// Gateway is the narrow persistence surface the realtime core consumes.
// The durable store is the source of truth for teams with no live
// connections; the StateManager owns the in-memory projection otherwise.
type Gateway interface {
	GetOrCreateTeam(id string) (*models.Team, error)
	GetOrCreatePlayer(teamID, playerID string) (*models.Player, error)
	SetPlayerActive(teamID, playerID string, active bool) error
	GetProgress(teamID string) ([]models.Progress, error)
	UpsertProgress(p *models.Progress) error
	// SolvePuzzle persists the solved progress record and the score delta
	// as one transaction.
	SolvePuzzle(p *models.Progress) error
	SetTeamFinished(teamID string, at time.Time, finalScore int) error
	AppendChatMessage(m *models.ChatMessage) error
	GetChatWindow(teamID string, limit int) ([]models.ChatMessage, error)
	GetTokenStates(teamID string) (map[string]bool, error)
	SetTokenState(teamID, playerID string, enabled bool) error
	StartSession(teamID string) error
}

// Broadcaster delivers events to live connections. Delivery is best effort:
// a player with no live connection simply misses the event and catches up
// from the snapshot on the next connect.
type Broadcaster interface {
	SendTo(teamID, playerID string, event interface{})
	BroadcastTeam(teamID string, event interface{})
}

var (
	ErrUnknownTeam            = errors.New("unknown team")
	ErrUnknownPlayer          = errors.New("unknown player slot")
	ErrEmptyMessage           = errors.New("empty chat message")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
