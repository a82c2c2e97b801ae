package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/models"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/puzzles"
)

// ChatWindowSize is the number of messages kept in the live transcript.
// Older messages stay in the database but leave the broadcast window.
const ChatWindowSize = 100

// Roster is the fixed two-slot table of player ids for a team. Slot 2
// holds the turn token initially.
type Roster [2]string

var DefaultRoster = Roster{"team1", "team2"}

func (r Roster) Contains(playerID string) bool {
	return r[0] == playerID || r[1] == playerID
}

// Other returns the opposite slot for toggle swaps.
func (r Roster) Other(playerID string) (string, bool) {
	switch playerID {
	case r[0]:
		return r[1], true
	case r[1]:
		return r[0], true
	}
	return "", false
}

// teamState is the in-memory projection of one team. Its mutex guards every
// read-modify-write touching tokens, progress or score, and stays held
// through the broadcast so recipients observe events in generation order.
type teamState struct {
	mu       sync.Mutex
	tokens   map[string]bool
	chat     []models.ChatMessage
	progress map[string]*models.Progress
	score    int
	finished bool
}

// StateManager is the team state store: it owns the in-memory projections
// of token, chat window, progress and score for teams with live
// connections, and keeps them in lockstep with the gateway.
type StateManager struct {
	mu     sync.RWMutex
	teams  map[string]*teamState
	gw     Gateway
	bc     Broadcaster
	roster Roster
}

func NewStateManager(gw Gateway, bc Broadcaster, roster Roster) *StateManager {
	return &StateManager{
		teams:  make(map[string]*teamState),
		gw:     gw,
		bc:     bc,
		roster: roster,
	}
}

func (m *StateManager) Roster() Roster {
	return m.roster
}

// EnsureTeam loads or creates the durable records for a team and builds its
// in-memory state. Idempotent; first use allocates the turn token to the
// second roster slot and opens a game session.
func (m *StateManager) EnsureTeam(teamID string) error {
	m.mu.RLock()
	_, ok := m.teams[teamID]
	m.mu.RUnlock()
	if ok {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[teamID]; ok {
		return nil
	}

	team, err := m.gw.GetOrCreateTeam(teamID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	for _, slot := range m.roster {
		if _, err := m.gw.GetOrCreatePlayer(teamID, slot); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
	}

	tokens, err := m.gw.GetTokenStates(teamID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	if len(tokens) == 0 {
		if err := m.gw.StartSession(teamID); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
	}
	enabled := 0
	for _, slot := range m.roster {
		if tokens[slot] {
			enabled++
		}
	}
	// First use, or a toggle that failed between its two durable writes
	// left zero or two holders: (re)allocate the token to the second slot.
	if enabled != 1 {
		if err := m.gw.SetTokenState(teamID, m.roster[0], false); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
		if err := m.gw.SetTokenState(teamID, m.roster[1], true); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
		tokens = map[string]bool{m.roster[0]: false, m.roster[1]: true}
	}

	records, err := m.gw.GetProgress(teamID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	progress := make(map[string]*models.Progress, len(records))
	for i := range records {
		rec := records[i]
		progress[rec.PuzzleName] = &rec
	}

	chat, err := m.gw.GetChatWindow(teamID, ChatWindowSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	m.teams[teamID] = &teamState{
		tokens:   tokens,
		chat:     chat,
		progress: progress,
		score:    team.Score,
		finished: team.FinishedAt != nil,
	}
	return nil
}

// Drop evicts a team's in-memory state. Called once the last connection is
// gone; the durable store is authoritative again until the next connect.
func (m *StateManager) Drop(teamID string) {
	m.mu.Lock()
	delete(m.teams, teamID)
	m.mu.Unlock()
}

func (m *StateManager) get(teamID string) (*teamState, error) {
	m.mu.RLock()
	st, ok := m.teams[teamID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownTeam
	}
	return st, nil
}

// Snapshot is the initial sync pushed to a newly connected player.
type Snapshot struct {
	TokenEnabled bool
	Chat         []models.ChatMessage
	Progress     []ProgressEntry
	Score        int
}

func (m *StateManager) Snapshot(teamID, playerID string) (*Snapshot, error) {
	st, err := m.get(teamID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	chat := make([]models.ChatMessage, len(st.chat))
	copy(chat, st.chat)

	return &Snapshot{
		TokenEnabled: st.tokens[playerID],
		Chat:         chat,
		Progress:     progressEntries(st),
		Score:        st.score,
	}, nil
}

// PushSnapshot sends the initial sync (button_state, chat_history, progress)
// to one player. The sends happen under the team lock so a concurrent toggle
// cannot deliver a newer button_state ahead of the snapshot's stale one.
func (m *StateManager) PushSnapshot(teamID, playerID string) error {
	st, err := m.get(teamID)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	chat := make([]models.ChatMessage, len(st.chat))
	copy(chat, st.chat)

	m.bc.SendTo(teamID, playerID, newButtonState(st.tokens[playerID]))
	m.bc.SendTo(teamID, playerID, ChatHistoryEvent{Type: "chat_history", Messages: chat})
	m.bc.SendTo(teamID, playerID, ProgressEvent{Type: "progress", Progress: progressEntries(st), Score: st.score})
	return nil
}

// AppendChat validates, persists and fans out one chat message. The window
// is trimmed to the most recent ChatWindowSize entries.
func (m *StateManager) AppendChat(teamID, playerID, text string) (*models.ChatMessage, error) {
	st, err := m.get(teamID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	msg := &models.ChatMessage{
		TeamID:    teamID,
		PlayerID:  playerID,
		Message:   text,
		Timestamp: time.Now(),
	}
	if err := m.gw.AppendChatMessage(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	st.chat = append(st.chat, *msg)
	if len(st.chat) > ChatWindowSize {
		st.chat = st.chat[len(st.chat)-ChatWindowSize:]
	}

	m.bc.BroadcastTeam(teamID, ChatMessageEvent{Type: "chat_message", Message: *msg})
	return msg, nil
}

// ToggleToken swaps the turn token: the requester's goes off, the other
// slot's goes on. Serialized per team so two near-simultaneous clicks can
// never leave zero or two tokens enabled. The in-memory state only changes
// after both durable writes succeed.
func (m *StateManager) ToggleToken(teamID, playerID string) error {
	st, err := m.get(teamID)
	if err != nil {
		return err
	}
	other, ok := m.roster.Other(playerID)
	if !ok {
		return ErrUnknownPlayer
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := m.gw.SetTokenState(teamID, playerID, false); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	if err := m.gw.SetTokenState(teamID, other, true); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	st.tokens[playerID] = false
	st.tokens[other] = true

	for _, slot := range m.roster {
		m.bc.SendTo(teamID, slot, newButtonState(st.tokens[slot]))
	}
	return nil
}

// progressEntries renders the progress records in puzzle-config order.
// Caller holds the team lock.
func progressEntries(st *teamState) []ProgressEntry {
	var out []ProgressEntry
	for _, def := range puzzles.All() {
		rec, ok := st.progress[def.Name]
		if !ok {
			continue
		}
		out = append(out, ProgressEntry{
			Puzzle:   rec.PuzzleName,
			Solved:   rec.IsSolved,
			Attempts: rec.Attempts,
			Points:   rec.PointsEarned,
			SolvedAt: rec.SolvedAt,
			SolvedBy: rec.PlayerID,
		})
	}
	return out
}
