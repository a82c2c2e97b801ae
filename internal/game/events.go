package game

import (
	"time"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/models"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/puzzles"
)

// Outbound event envelopes. Each carries a discriminated "type" field; the
// shapes mirror what the frontoffice expects.

type ButtonStateEvent struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

func newButtonState(enabled bool) ButtonStateEvent {
	return ButtonStateEvent{Type: "button_state", Enabled: enabled}
}

type ChatHistoryEvent struct {
	Type     string               `json:"type"`
	Messages []models.ChatMessage `json:"messages"`
}

type ChatMessageEvent struct {
	Type    string             `json:"type"`
	Message models.ChatMessage `json:"message"`
}

type ProgressEntry struct {
	Puzzle   string     `json:"puzzle"`
	Solved   bool       `json:"solved"`
	Attempts int        `json:"attempts"`
	Points   int        `json:"points"`
	SolvedAt *time.Time `json:"solved_at,omitempty"`
	SolvedBy string     `json:"solved_by,omitempty"`
}

type ProgressEvent struct {
	Type     string          `json:"type"`
	Progress []ProgressEntry `json:"progress"`
	Score    int             `json:"score"`
}

// ResultEvent carries a validation outcome back to the requester. Type is
// "<puzzle>_result".
type ResultEvent struct {
	Type   string `json:"type"`
	Result Result `json:"result"`
}

type PuzzleUnlockedEvent struct {
	Type   string             `json:"type"`
	Puzzle puzzles.Definition `json:"puzzle"`
}
