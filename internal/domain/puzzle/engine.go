package puzzle

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"constellation-backend/internal/domain/graph"
	apperrors "constellation-backend/internal/errors"
)

// State is the engine's position in the round lifecycle.
type State string

const (
	StateIdle          State = "idle"
	StateRoundActive   State = "round_active"
	StateRoundResolved State = "round_resolved"
)

// Outcome records how a round ended.
type Outcome string

const (
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeCorrect    Outcome = "correct"
	OutcomeExhausted  Outcome = "exhausted"
)

// Round is one puzzle instance, from seeding to resolution. Exactly one
// round is active at a time; starting the next round or exiting replaces
// it atomically under the controller's lock.
type Round struct {
	ID              string
	Number          int
	Node1           string
	Node2           string
	CommonNeighbors graph.IDSet
	WrongGuesses    []string // insertion order, deduplicated
	GuessCount      int
	Revealed        bool
	Outcome         Outcome
}

// Snapshot is a copy of the round safe to hand to other layers.
type Snapshot struct {
	ID              string   `json:"id"`
	Number          int      `json:"number"`
	Node1           string   `json:"node1"`
	Node2           string   `json:"node2"`
	CommonNeighbors []string `json:"common_neighbors,omitempty"`
	WrongGuesses    []string `json:"wrong_guesses"`
	GuessCount      int      `json:"guess_count"`
	GuessBudget     int      `json:"guess_budget"`
	Revealed        bool     `json:"revealed"`
	Outcome         Outcome  `json:"outcome"`
}

// GuessResult reports what SubmitGuess did with one submission.
type GuessResult struct {
	// Ignored is set when the text was empty or not a node id; ignored
	// submissions change nothing and consume no budget.
	Ignored bool
	// Correct is set when the guess was an accepted answer.
	Correct bool
	// Duplicate is set when the wrong guess had already been tried.
	Duplicate bool
	// Exhausted is set when this guess spent the last of the budget.
	Exhausted bool
}

// Engine is the game-mode state machine. It is not safe for concurrent
// use; the explorer controller serializes access.
type Engine struct {
	finder *Finder
	budget int
	logger *zap.Logger

	state    State
	round    *Round
	roundNum int
}

// NewEngine creates an idle engine with the given guess budget.
func NewEngine(finder *Finder, budget int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if budget <= 0 {
		budget = 5
	}
	return &Engine{
		finder: finder,
		budget: budget,
		logger: logger,
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Budget returns the wrong-guess allowance per round.
func (e *Engine) Budget() int {
	return e.budget
}

// SetBudget replaces the wrong-guess allowance. Non-positive values are
// ignored. An active round keeps counting against the new allowance.
func (e *Engine) SetBudget(n int) {
	if n > 0 {
		e.budget = n
	}
}

// Round returns the live round for view derivation, or false when none
// exists.
func (e *Engine) Round() (*Round, bool) {
	return e.round, e.round != nil
}

// RoundSnapshot returns a copy of the active round. Hidden answers are
// included only once the round is revealed.
func (e *Engine) RoundSnapshot() (Snapshot, bool) {
	if e.round == nil {
		return Snapshot{}, false
	}
	r := e.round
	snap := Snapshot{
		ID:           r.ID,
		Number:       r.Number,
		Node1:        r.Node1,
		Node2:        r.Node2,
		WrongGuesses: append([]string(nil), r.WrongGuesses...),
		GuessCount:   r.GuessCount,
		GuessBudget:  e.budget,
		Revealed:     r.Revealed,
		Outcome:      r.Outcome,
	}
	if r.Revealed {
		snap.CommonNeighbors = r.CommonNeighbors.Sorted()
	}
	return snap, true
}

// StartRound seeds the next round from the finder and activates it. On
// ErrNoPuzzle the engine returns to Idle; the caller surfaces the
// message and leaves game mode.
func (e *Engine) StartRound(g *graph.Graph) (Snapshot, error) {
	next := e.roundNum + 1
	pair, err := e.finder.Find(g, next)
	if err != nil {
		e.round = nil
		e.state = StateIdle
		return Snapshot{}, err
	}

	e.roundNum = next
	e.round = &Round{
		ID:              uuid.NewString(),
		Number:          next,
		Node1:           pair.Node1,
		Node2:           pair.Node2,
		CommonNeighbors: pair.CommonNeighbors,
		WrongGuesses:    []string{},
		Outcome:         OutcomeUnresolved,
	}
	e.state = StateRoundActive

	e.logger.Info("puzzle round started",
		zap.Int("round", next),
		zap.String("node1", pair.Node1),
		zap.String("node2", pair.Node2),
		zap.Int("answers", len(pair.CommonNeighbors)),
	)

	snap, _ := e.RoundSnapshot()
	return snap, nil
}

// SubmitGuess processes one guess against the active round.
//
// Empty text or text that is not an existing node id is ignored: no
// state change, no budget spent. A correct guess resolves the round. A
// novel wrong guess is recorded and spends budget; spending the last of
// it resolves the round as exhausted. A duplicate wrong guess stays
// recorded once for display and spends NO budget; the counter tracks
// genuinely novel wrong answers only.
func (e *Engine) SubmitGuess(g *graph.Graph, text string) (GuessResult, error) {
	if e.state != StateRoundActive {
		return GuessResult{}, apperrors.NewValidation("no active round to guess in")
	}
	if text == "" || !g.HasNode(text) {
		return GuessResult{Ignored: true}, nil
	}

	r := e.round
	if r.CommonNeighbors.Has(text) {
		r.Outcome = OutcomeCorrect
		r.Revealed = true
		e.state = StateRoundResolved
		e.logger.Info("puzzle solved",
			zap.Int("round", r.Number),
			zap.String("guess", text),
			zap.Int("wrong_guesses", r.GuessCount),
		)
		return GuessResult{Correct: true}, nil
	}

	for _, prev := range r.WrongGuesses {
		if prev == text {
			return GuessResult{Duplicate: true}, nil
		}
	}

	r.WrongGuesses = append(r.WrongGuesses, text)
	r.GuessCount++
	if r.GuessCount >= e.budget {
		r.Outcome = OutcomeExhausted
		r.Revealed = true
		e.state = StateRoundResolved
		e.logger.Info("puzzle budget exhausted", zap.Int("round", r.Number))
		return GuessResult{Exhausted: true}, nil
	}
	return GuessResult{}, nil
}

// Skip reveals the answers and resolves the round as exhausted without
// spending a guess.
func (e *Engine) Skip() error {
	if e.state != StateRoundActive {
		return apperrors.NewValidation("no active round to skip")
	}
	e.round.Revealed = true
	e.round.Outcome = OutcomeExhausted
	e.state = StateRoundResolved
	e.logger.Info("puzzle round skipped", zap.Int("round", e.round.Number))
	return nil
}

// Advance starts the next round. Valid only once the current round is
// resolved.
func (e *Engine) Advance(g *graph.Graph) (Snapshot, error) {
	if e.state != StateRoundResolved {
		return Snapshot{}, apperrors.NewValidation("round is not resolved yet")
	}
	return e.StartRound(g)
}

// Exit clears the round and returns to Idle. Valid from any state.
func (e *Engine) Exit() {
	if e.round != nil {
		e.logger.Info("game mode exited", zap.Int("round", e.round.Number))
	}
	e.round = nil
	e.state = StateIdle
	e.roundNum = 0
}
