// Package explorer is the controller that owns all interactive state:
// the loaded graph snapshot per category, the current selection, and the
// active puzzle round. HTTP handlers call into it; nothing else holds
// mutable state.
package explorer

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"constellation-backend/internal/config"
	"constellation-backend/internal/domain/graph"
	"constellation-backend/internal/domain/puzzle"
	"constellation-backend/internal/domain/subgraph"
	apperrors "constellation-backend/internal/errors"
	"constellation-backend/internal/infrastructure/analysis"
	"constellation-backend/internal/infrastructure/layout"
	"constellation-backend/internal/infrastructure/source"
	"constellation-backend/internal/observability"
)

// session is the interactive state for one dataset category. All access
// goes through its mutex; the graph snapshot itself is immutable and may
// be read outside the lock once fetched.
type session struct {
	mu           sync.Mutex
	graph        *graph.Graph
	context      map[string][]string
	interactions []source.Interaction
	selection    *subgraph.Selection
	engine       *puzzle.Engine
	finder       *puzzle.Finder
	builder      *subgraph.Builder
	rng          *rand.Rand
	loadGen      uint64
}

// Options wires a Service.
type Options struct {
	Loader    source.Loader
	Describer analysis.Describer // nil disables analysis
	Layout    layout.Engine
	Config    *config.Config
	Questions map[graph.Category][]puzzle.Question
	Metrics   *observability.Collector
	Logger    *zap.Logger
	// Seed fixes the randomness for tests. Zero means a random seed.
	Seed int64
}

// Service coordinates dataset loading, exploration, and game mode.
type Service struct {
	loader    source.Loader
	describer analysis.Describer
	layout    layout.Engine
	metrics   *observability.Collector
	logger    *zap.Logger

	cfgMu sync.RWMutex
	cfg   *config.Config

	sessions map[graph.Category]*session
}

// New creates the explorer service with one session per category. Both
// sessions start with an empty graph; LoadDataset fills them.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lay := opts.Layout
	if lay == nil {
		lay = layout.Passthrough{}
	}

	s := &Service{
		loader:    opts.Loader,
		describer: opts.Describer,
		layout:    lay,
		cfg:       opts.Config,
		metrics:   opts.Metrics,
		logger:    logger,
		sessions:  make(map[graph.Category]*session, 2),
	}

	seed := opts.Seed
	for i, category := range []graph.Category{graph.CategorySocial, graph.CategoryTopic} {
		rng := newRand(seed, int64(i))
		finder := puzzle.NewFinder(rng, puzzle.FinderConfig{
			CandidateLimit: opts.Config.Puzzle.CandidateLimit,
			Questions:      opts.Questions[category],
			CuratedRounds:  opts.Config.Puzzle.CuratedRounds,
		}, logger.Named("finder"))

		empty, _ := graph.Load(category, nil, nil, graph.LoadOptions{})
		s.sessions[category] = &session{
			graph:     empty,
			context:   map[string][]string{},
			selection: subgraph.NewSelection(),
			engine:    puzzle.NewEngine(finder, opts.Config.Puzzle.GuessBudget, logger.Named("puzzle")),
			finder:    finder,
			builder:   subgraph.NewBuilder(rng),
			rng:       rng,
		}
	}
	return s
}

func newRand(seed, offset int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewSource(rand.Int63()))
	}
	return rand.New(rand.NewSource(seed + offset))
}

func (s *Service) config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig applies reloaded tuning knobs: the guess budget and
// search bound take effect on the next round, the similarity floor and
// sizing on the next dataset load, the layout knobs on the next view.
// Wiring fixed at startup (server address, analysis client) still needs
// a restart.
func (s *Service) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()

	for _, sess := range s.sessions {
		sess.mu.Lock()
		sess.engine.SetBudget(cfg.Puzzle.GuessBudget)
		sess.finder.SetCandidateLimit(cfg.Puzzle.CandidateLimit)
		sess.mu.Unlock()
	}
	s.logger.Info("tuning configuration applied")
}

func (s *Service) session(category graph.Category) (*session, error) {
	sess, ok := s.sessions[category]
	if !ok {
		return nil, apperrors.NewNotFound("unknown dataset category")
	}
	return sess, nil
}

// LoadDataset fetches and installs the snapshot for a category. A later
// load supersedes an in-flight one: results from a stale load are
// discarded instead of overwriting the newer snapshot. Fetch failures
// degrade to an empty graph so exploration still initializes.
func (s *Service) LoadDataset(ctx context.Context, category graph.Category) error {
	sess, err := s.session(category)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.loadGen++
	gen := sess.loadGen
	sess.mu.Unlock()

	ds, err := s.loader.Load(ctx, category)
	if err != nil {
		s.logger.Error("dataset load failed, serving empty graph",
			zap.String("category", string(category)),
			zap.Error(err),
		)
		ds = &source.Dataset{Category: category, Context: map[string][]string{}}
	}

	cfg := s.config()
	opts := graph.LoadOptions{
		Scale: graph.SizeScale{
			Min:     cfg.Sizing.Min,
			Max:     cfg.Sizing.Max,
			Epsilon: cfg.Sizing.Epsilon,
		},
		Logger: s.logger.Named("graph"),
	}
	if category == graph.CategoryTopic {
		opts.SimilarityFloor = cfg.Datasets.SimilarityFloor
		opts.DropIslands = cfg.Datasets.DropIslands
	}

	g, warn := graph.Load(category, ds.Nodes, ds.Edges, opts)
	if warn != nil {
		s.logger.Warn("dataset cleaned with warnings",
			zap.String("category", string(category)),
			zap.Error(warn),
		)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.loadGen != gen {
		s.logger.Info("discarding superseded dataset load",
			zap.String("category", string(category)),
			zap.Uint64("generation", gen),
		)
		return nil
	}
	sess.graph = g
	sess.context = ds.Context
	sess.interactions = ds.Interactions
	sess.selection.Clear()
	sess.engine.Exit()

	if s.metrics != nil {
		s.metrics.LoadedNodes.WithLabelValues(string(category)).Set(float64(g.NodeCount()))
		s.metrics.LoadedEdges.WithLabelValues(string(category)).Set(float64(g.EdgeCount()))
	}
	return nil
}

// Graph returns the current immutable snapshot for a category.
func (s *Service) Graph(category graph.Category) (*graph.Graph, error) {
	sess, err := s.session(category)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.graph, nil
}

// ToggleSelection flips a node in or out of the selection and reports
// whether it is now selected. Game mode disables click-to-select.
func (s *Service) ToggleSelection(category graph.Category, id string) (bool, error) {
	sess, err := s.session(category)
	if err != nil {
		return false, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.engine.State() != puzzle.StateIdle {
		return false, apperrors.NewValidation("selection is disabled during game mode")
	}
	if !sess.graph.HasNode(id) {
		return false, apperrors.NewNotFound("node not in graph")
	}
	return sess.selection.Toggle(id), nil
}

// ClearSelection empties the selection.
func (s *Service) ClearSelection(category graph.Category) error {
	sess, err := s.session(category)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.selection.Clear()
	return nil
}

// Selection returns the currently selected node ids.
func (s *Service) Selection(category graph.Category) ([]string, error) {
	sess, err := s.session(category)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.selection.Members(), nil
}

// VisibleGraph derives the renderable subgraph for the current mode:
// the puzzle view while a round exists, the selection view otherwise.
// The external layout engine settles the scattered coordinates.
func (s *Service) VisibleGraph(category graph.Category) (*subgraph.View, error) {
	sess, err := s.session(category)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var view *subgraph.View
	if round, ok := sess.engine.Round(); ok {
		view = puzzle.BuildRoundView(sess.graph, round, sess.rng)
	} else {
		view = sess.builder.BuildVisible(sess.graph, sess.selection)
	}
	return s.layout.Assign(view, s.config().Layout), nil
}

// StartPuzzle enters game mode: clears the selection and seeds the
// first round. On ErrNoPuzzle game mode is aborted and the error
// surfaces to the user.
func (s *Service) StartPuzzle(category graph.Category) (puzzle.Snapshot, error) {
	sess, err := s.session(category)
	if err != nil {
		return puzzle.Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.selection.Clear()
	snap, err := sess.engine.StartRound(sess.graph)
	if err != nil {
		if s.metrics != nil && apperrors.IsType(err, apperrors.ErrorTypeNoPuzzle) {
			s.metrics.PuzzlesMissing.Inc()
		}
		return puzzle.Snapshot{}, err
	}
	if s.metrics != nil {
		s.metrics.RoundsStarted.Inc()
	}
	return snap, nil
}

// SubmitGuess forwards one guess to the engine.
func (s *Service) SubmitGuess(category graph.Category, text string) (puzzle.GuessResult, puzzle.Snapshot, error) {
	sess, err := s.session(category)
	if err != nil {
		return puzzle.GuessResult{}, puzzle.Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	res, err := sess.engine.SubmitGuess(sess.graph, text)
	if err != nil {
		return puzzle.GuessResult{}, puzzle.Snapshot{}, err
	}
	if s.metrics != nil {
		if res.Correct {
			s.metrics.RoundsCorrect.Inc()
		}
		if res.Exhausted {
			s.metrics.RoundsGivenUp.Inc()
		}
	}
	snap, _ := sess.engine.RoundSnapshot()
	return res, snap, nil
}

// SkipPuzzle reveals the current round without spending a guess.
func (s *Service) SkipPuzzle(category graph.Category) (puzzle.Snapshot, error) {
	sess, err := s.session(category)
	if err != nil {
		return puzzle.Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.engine.Skip(); err != nil {
		return puzzle.Snapshot{}, err
	}
	if s.metrics != nil {
		s.metrics.RoundsGivenUp.Inc()
	}
	snap, _ := sess.engine.RoundSnapshot()
	return snap, nil
}

// AdvancePuzzle starts the next round after resolution.
func (s *Service) AdvancePuzzle(category graph.Category) (puzzle.Snapshot, error) {
	sess, err := s.session(category)
	if err != nil {
		return puzzle.Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap, err := sess.engine.Advance(sess.graph)
	if err != nil {
		if s.metrics != nil && apperrors.IsType(err, apperrors.ErrorTypeNoPuzzle) {
			s.metrics.PuzzlesMissing.Inc()
		}
		return puzzle.Snapshot{}, err
	}
	if s.metrics != nil {
		s.metrics.RoundsStarted.Inc()
	}
	return snap, nil
}

// ExitPuzzle leaves game mode and clears any selection.
func (s *Service) ExitPuzzle(category graph.Category) error {
	sess, err := s.session(category)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.Exit()
	sess.selection.Clear()
	return nil
}

// PuzzleState returns the engine state and, when a round exists, its
// snapshot.
func (s *Service) PuzzleState(category graph.Category) (puzzle.State, *puzzle.Snapshot, error) {
	sess, err := s.session(category)
	if err != nil {
		return "", nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := sess.engine.State()
	if snap, ok := sess.engine.RoundSnapshot(); ok {
		return state, &snap, nil
	}
	return state, nil, nil
}

// Analyze describes how a set of nodes is connected: the given ids, or
// the current selection when ids is empty. Topic context is the per-node
// article text; social context is only the tweets from interactions
// between the analyzed accounts themselves. The network call runs
// outside the session lock; failure leaves selection state untouched.
func (s *Service) Analyze(ctx context.Context, category graph.Category, ids []string) (string, error) {
	if s.describer == nil {
		return "", apperrors.NewExternal("analysis service not configured", nil)
	}
	sess, err := s.session(category)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	members := ids
	if len(members) == 0 {
		members = sess.selection.Members()
	}
	items := make(map[string]analysis.Item, len(members))
	for _, id := range members {
		n, ok := sess.graph.AttributesOf(id)
		if !ok {
			continue
		}
		items[id] = analysis.Item{
			Summary: n.Summary,
			Texts:   append([]string(nil), sess.context[id]...),
		}
	}
	if category == graph.CategorySocial {
		collectPairTweets(items, sess.interactions)
	}
	sess.mu.Unlock()

	if len(items) < 2 {
		return "", apperrors.NewValidation("select at least two nodes to analyze")
	}

	if s.metrics != nil {
		s.metrics.AnalysisCalls.Inc()
	}
	text, err := s.describer.Describe(ctx, analysis.Request{Category: category, Items: items})
	if err != nil {
		if s.metrics != nil {
			s.metrics.AnalysisFailures.Inc()
		}
		return "", err
	}
	return text, nil
}

// collectPairTweets fills each item's texts from the interactions whose
// both endpoints are being analyzed. Tweets from an account's other
// interactions stay out, and repeats across interactions appear once.
func collectPairTweets(items map[string]analysis.Item, interactions []source.Interaction) {
	seen := make(map[string]map[string]struct{}, len(items))
	add := func(user string, tweets []string) {
		item, ok := items[user]
		if !ok {
			return
		}
		if seen[user] == nil {
			seen[user] = make(map[string]struct{})
		}
		for _, tw := range tweets {
			if _, dup := seen[user][tw]; dup {
				continue
			}
			seen[user][tw] = struct{}{}
			item.Texts = append(item.Texts, tw)
		}
		items[user] = item
	}

	for _, in := range interactions {
		if _, ok := items[in.User1]; !ok {
			continue
		}
		if _, ok := items[in.User2]; !ok {
			continue
		}
		add(in.User1, in.User1Tweets)
		add(in.User2, in.User2Tweets)
	}
}
