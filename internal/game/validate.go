package game

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/models"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/puzzles"
)

// Result is a validation outcome. Business-rule failures are results, not
// errors; only persistence trouble surfaces as an error.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Points  int    `json:"points,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

const (
	ReasonUnknownPuzzle  = "unknown_puzzle"
	ReasonRoleRestricted = "role_restricted"
	ReasonNotYetUnlocked = "not_yet_unlocked"
	ReasonAlreadySolved  = "already_solved"
	ReasonWrongAnswer    = "wrong_answer"
	ReasonRetryLater     = "persistence_unavailable"
)

// Engine runs the puzzle validation state machine over the team state.
type Engine struct {
	states *StateManager
}

func NewEngine(states *StateManager) *Engine {
	return &Engine{states: states}
}

// Validate checks a submitted answer. Precondition failures (unknown
// puzzle, role restriction, unmet unlock) return immediately without
// touching any state. A solve persists progress and score together, then
// broadcasts the new progress and any unlocked puzzle to the whole team.
func (e *Engine) Validate(teamID, playerID, puzzleName, answer string) (Result, error) {
	def, ok := puzzles.Get(puzzleName)
	if !ok {
		return Result{
			Reason:  ReasonUnknownPuzzle,
			Message: "Unknown puzzle",
		}, nil
	}

	if !puzzles.IsPlayerAllowed(def.Name, playerID) {
		return Result{
			Reason:  ReasonRoleRestricted,
			Message: fmt.Sprintf("This puzzle is reserved for %s", strings.Join(def.RestrictedTo, ", ")),
		}, nil
	}

	st, err := e.states.get(teamID)
	if err != nil {
		return Result{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if def.Requires != "" {
		prev, ok := st.progress[def.Requires]
		if !ok || !prev.IsSolved {
			return Result{
				Reason:  ReasonNotYetUnlocked,
				Message: "This puzzle is not unlocked yet",
			}, nil
		}
	}

	prog, ok := st.progress[def.Name]
	if !ok {
		prog = &models.Progress{TeamID: teamID, PuzzleName: def.Name}
		if err := e.states.gw.UpsertProgress(prog); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
		st.progress[def.Name] = prog
	}

	// Solved records are immutable: no attempt accounting past this point.
	if prog.IsSolved {
		return Result{
			Reason:  ReasonAlreadySolved,
			Message: "Already solved",
		}, nil
	}

	updated := *prog
	updated.Attempts++

	if !def.Matches(answer) {
		res := Result{
			Reason:  ReasonWrongAnswer,
			Message: "Incorrect code. Look more closely.",
		}
		if updated.Attempts >= def.HintAfter && len(def.Hints) > 0 {
			idx := updated.Attempts - def.HintAfter
			if idx >= len(def.Hints) {
				idx = len(def.Hints) - 1
			}
			res.Hint = def.Hints[idx]
			updated.HintsUsed = idx + 1
		}
		if err := e.states.gw.UpsertProgress(&updated); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
		*prog = updated
		return res, nil
	}

	now := time.Now()
	updated.IsSolved = true
	updated.SolvedAt = &now
	updated.PointsEarned = def.Points
	updated.PlayerID = playerID
	if err := e.states.gw.SolvePuzzle(&updated); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	*prog = updated
	st.score += def.Points

	e.states.bc.BroadcastTeam(teamID, ProgressEvent{
		Type:     "progress",
		Progress: progressEntries(st),
		Score:    st.score,
	})
	for _, dep := range puzzles.DependentsOf(def.Name) {
		e.states.bc.BroadcastTeam(teamID, PuzzleUnlockedEvent{
			Type:   "puzzle_unlocked",
			Puzzle: dep,
		})
	}

	if !st.finished && allSolved(st) {
		if err := e.states.gw.SetTeamFinished(teamID, now, st.score); err != nil {
			log.Printf("game: failed to mark team %s finished: %v", teamID, err)
		} else {
			st.finished = true
		}
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("Well done! %s solved!", def.Title),
		Points:  def.Points,
	}, nil
}

func allSolved(st *teamState) bool {
	for _, def := range puzzles.All() {
		rec, ok := st.progress[def.Name]
		if !ok || !rec.IsSolved {
			return false
		}
	}
	return true
}
