package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/models"
)

// fakeGateway is an in-memory stand-in for the persistence gateway.
type fakeGateway struct {
	mu       sync.Mutex
	teams    map[string]*models.Team
	players  map[string]*models.Player
	progress map[string]*models.Progress
	chat     map[string][]models.ChatMessage
	tokens   map[string]map[string]bool
	sessions map[string]string
	nextID   uint
	fail     bool

	// tokenWrites counts SetTokenState calls; failTokenWriteAt fails the
	// call with that 1-based number (0 disables).
	tokenWrites      int
	failTokenWriteAt int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		teams:    make(map[string]*models.Team),
		players:  make(map[string]*models.Player),
		progress: make(map[string]*models.Progress),
		chat:     make(map[string][]models.ChatMessage),
		tokens:   make(map[string]map[string]bool),
		sessions: make(map[string]string),
	}
}

var errFakeDown = errors.New("gateway down")

func (f *fakeGateway) failing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *fakeGateway) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

// failTokenWriteIn arms a single failure on the nth SetTokenState call
// from now.
func (f *fakeGateway) failTokenWriteIn(n int) {
	f.mu.Lock()
	f.failTokenWriteAt = f.tokenWrites + n
	f.mu.Unlock()
}

func key(teamID, name string) string { return teamID + "/" + name }

func (f *fakeGateway) GetOrCreateTeam(id string) (*models.Team, error) {
	if f.failing() {
		return nil, errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.teams[id]; ok {
		copied := *t
		return &copied, nil
	}
	t := &models.Team{ID: id, Name: id, CreatedAt: time.Now()}
	f.teams[id] = t
	copied := *t
	return &copied, nil
}

func (f *fakeGateway) GetOrCreatePlayer(teamID, playerID string) (*models.Player, error) {
	if f.failing() {
		return nil, errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(teamID, playerID)
	if p, ok := f.players[k]; ok {
		copied := *p
		return &copied, nil
	}
	p := &models.Player{ID: playerID, TeamID: teamID, Name: playerID}
	f.players[k] = p
	copied := *p
	return &copied, nil
}

func (f *fakeGateway) SetPlayerActive(teamID, playerID string, active bool) error {
	if f.failing() {
		return errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[key(teamID, playerID)]; ok {
		p.IsActive = active
		p.LastActivity = time.Now()
	}
	return nil
}

func (f *fakeGateway) GetProgress(teamID string) ([]models.Progress, error) {
	if f.failing() {
		return nil, errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Progress
	for _, p := range f.progress {
		if p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeGateway) UpsertProgress(p *models.Progress) error {
	if f.failing() {
		return errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		f.nextID++
		p.ID = f.nextID
	}
	copied := *p
	f.progress[key(p.TeamID, p.PuzzleName)] = &copied
	return nil
}

func (f *fakeGateway) SolvePuzzle(p *models.Progress) error {
	if f.failing() {
		return errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		f.nextID++
		p.ID = f.nextID
	}
	copied := *p
	f.progress[key(p.TeamID, p.PuzzleName)] = &copied
	if t, ok := f.teams[p.TeamID]; ok {
		t.Score += p.PointsEarned
	}
	return nil
}

func (f *fakeGateway) SetTeamFinished(teamID string, at time.Time, finalScore int) error {
	if f.failing() {
		return errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.teams[teamID]; ok {
		finished := at
		t.FinishedAt = &finished
	}
	f.sessions[teamID] = models.SessionStatusCompleted
	return nil
}

func (f *fakeGateway) AppendChatMessage(m *models.ChatMessage) error {
	if f.failing() {
		return errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.chat[m.TeamID] = append(f.chat[m.TeamID], *m)
	return nil
}

func (f *fakeGateway) GetChatWindow(teamID string, limit int) ([]models.ChatMessage, error) {
	if f.failing() {
		return nil, errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.chat[teamID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *fakeGateway) GetTokenStates(teamID string) (map[string]bool, error) {
	if f.failing() {
		return nil, errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.tokens[teamID]))
	for id, enabled := range f.tokens[teamID] {
		out[id] = enabled
	}
	return out, nil
}

func (f *fakeGateway) SetTokenState(teamID, playerID string, enabled bool) error {
	if f.failing() {
		return errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenWrites++
	if f.failTokenWriteAt != 0 && f.tokenWrites == f.failTokenWriteAt {
		return errFakeDown
	}
	if f.tokens[teamID] == nil {
		f.tokens[teamID] = make(map[string]bool)
	}
	f.tokens[teamID][playerID] = enabled
	return nil
}

func (f *fakeGateway) StartSession(teamID string) error {
	if f.failing() {
		return errFakeDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[teamID] = models.SessionStatusInProgress
	return nil
}

// teamScore reads the durable team score.
func (f *fakeGateway) teamScore(teamID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.teams[teamID]; ok {
		return t.Score
	}
	return 0
}

// solvedPoints sums points_earned over solved progress for a team.
func (f *fakeGateway) solvedPoints(teamID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, p := range f.progress {
		if p.TeamID == teamID && p.IsSolved {
			total += p.PointsEarned
		}
	}
	return total
}

func (f *fakeGateway) attempts(teamID, puzzle string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.progress[key(teamID, puzzle)]; ok {
		return p.Attempts
	}
	return 0
}

func (f *fakeGateway) enabledTokens(teamID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id, enabled := range f.tokens[teamID] {
		if enabled {
			out = append(out, id)
		}
	}
	return out
}

// sentEvent is one recorded delivery. Player is empty for team broadcasts.
type sentEvent struct {
	team   string
	player string
	event  interface{}
}

func (e sentEvent) String() string {
	return fmt.Sprintf("%s/%s: %#v", e.team, e.player, e.event)
}

type eventRecorder struct {
	mu   sync.Mutex
	sent []sentEvent

	// onSend, when set, runs in the sender's goroutine before each SendTo
	// is recorded. Set it before wiring the recorder into a manager.
	onSend func()
}

func (r *eventRecorder) SendTo(teamID, playerID string, event interface{}) {
	if r.onSend != nil {
		r.onSend()
	}
	r.mu.Lock()
	r.sent = append(r.sent, sentEvent{team: teamID, player: playerID, event: event})
	r.mu.Unlock()
}

func (r *eventRecorder) BroadcastTeam(teamID string, event interface{}) {
	r.mu.Lock()
	r.sent = append(r.sent, sentEvent{team: teamID, event: event})
	r.mu.Unlock()
}

func (r *eventRecorder) events() []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentEvent, len(r.sent))
	copy(out, r.sent)
	return out
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}
