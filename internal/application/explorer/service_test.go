package explorer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constellation-backend/internal/config"
	"constellation-backend/internal/domain/graph"
	"constellation-backend/internal/domain/puzzle"
	apperrors "constellation-backend/internal/errors"
	"constellation-backend/internal/infrastructure/analysis"
	"constellation-backend/internal/infrastructure/source"
)

// stubLoader serves canned datasets and can block to simulate slow
// fetches.
type stubLoader struct {
	mu      sync.Mutex
	data    map[graph.Category]*source.Dataset
	err     error
	release chan struct{} // when set, Load blocks until closed
	started chan struct{} // when set, closed once Load is entered
}

func (l *stubLoader) Load(ctx context.Context, category graph.Category) (*source.Dataset, error) {
	l.mu.Lock()
	if l.started != nil {
		close(l.started)
		l.started = nil
	}
	release := l.release
	l.mu.Unlock()
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	ds, ok := l.data[category]
	if !ok {
		return &source.Dataset{Category: category, Context: map[string][]string{}}, nil
	}
	return ds, nil
}

type stubDescriber struct {
	reply string
	err   error
	got   analysis.Request
}

func (d *stubDescriber) Describe(_ context.Context, req analysis.Request) (string, error) {
	d.got = req
	return d.reply, d.err
}

func scenarioDataset() *source.Dataset {
	return &source.Dataset{
		Category: graph.CategoryTopic,
		Nodes: []graph.NodeInput{
			{ID: "A", Popularity: 10},
			{ID: "B", Popularity: 20},
			{ID: "C", Popularity: 30},
			{ID: "D", Popularity: 40},
		},
		Edges: []graph.EdgeInput{
			{Source: "A", Target: "C", Similarity: 0.9},
			{Source: "B", Target: "C", Similarity: 0.9},
			{Source: "A", Target: "D", Similarity: 0.9},
		},
		Context: map[string][]string{
			"A": {"article about A"},
			"B": {"article about B"},
		},
	}
}

func newService(t *testing.T, loader source.Loader, describer analysis.Describer) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Datasets.DropIslands = false
	return New(Options{
		Loader:    loader,
		Describer: describer,
		Config:    cfg,
		Seed:      11,
	})
}

func loadedService(t *testing.T) *Service {
	t.Helper()
	s := newService(t, &stubLoader{
		data: map[graph.Category]*source.Dataset{graph.CategoryTopic: scenarioDataset()},
	}, nil)
	require.NoError(t, s.LoadDataset(context.Background(), graph.CategoryTopic))
	return s
}

func TestService_LoadFailureDegradesToEmptyGraph(t *testing.T) {
	s := newService(t, &stubLoader{err: errors.New("fetch failed")}, nil)

	err := s.LoadDataset(context.Background(), graph.CategorySocial)
	require.NoError(t, err, "load failure must not be fatal")

	g, err := s.Graph(graph.CategorySocial)
	require.NoError(t, err)
	assert.Zero(t, g.NodeCount())

	// exploration still initializes
	view, err := s.VisibleGraph(graph.CategorySocial)
	require.NoError(t, err)
	assert.Empty(t, view.Nodes)
}

func TestService_StaleLoadSuperseded(t *testing.T) {
	first := &source.Dataset{
		Category: graph.CategoryTopic,
		Nodes:    []graph.NodeInput{{ID: "stale", Popularity: 1}},
		Context:  map[string][]string{},
	}
	loader := &stubLoader{
		data:    map[graph.Category]*source.Dataset{graph.CategoryTopic: first},
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	started := loader.started
	s := newService(t, loader, nil)

	done := make(chan error, 1)
	go func() {
		done <- s.LoadDataset(context.Background(), graph.CategoryTopic)
	}()

	// wait until the slow load is in flight, then let a newer load
	// complete while it is still blocked
	<-started
	loader.mu.Lock()
	release := loader.release
	loader.release = nil
	loader.data[graph.CategoryTopic] = scenarioDataset()
	loader.mu.Unlock()
	require.NoError(t, s.LoadDataset(context.Background(), graph.CategoryTopic))

	// the stale load finishes and must be discarded
	close(release)
	loader.mu.Lock()
	loader.data[graph.CategoryTopic] = first
	loader.mu.Unlock()
	require.NoError(t, <-done)

	g, err := s.Graph(graph.CategoryTopic)
	require.NoError(t, err)
	assert.False(t, g.HasNode("stale"), "superseded load must not install")
	assert.Equal(t, 4, g.NodeCount())
}

func TestService_ToggleSelection(t *testing.T) {
	s := loadedService(t)

	selected, err := s.ToggleSelection(graph.CategoryTopic, "A")
	require.NoError(t, err)
	assert.True(t, selected)

	view, err := s.VisibleGraph(graph.CategoryTopic)
	require.NoError(t, err)
	assert.True(t, view.HasNode("A"))
	assert.True(t, view.HasNode("C"))
	assert.True(t, view.HasNode("D"))
	assert.False(t, view.HasNode("B"))

	selected, err = s.ToggleSelection(graph.CategoryTopic, "A")
	require.NoError(t, err)
	assert.False(t, selected)
}

func TestService_ToggleUnknownNode(t *testing.T) {
	s := loadedService(t)

	_, err := s.ToggleSelection(graph.CategoryTopic, "ghost")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestService_GameModeDisablesSelection(t *testing.T) {
	s := loadedService(t)

	_, err := s.StartPuzzle(graph.CategoryTopic)
	require.NoError(t, err)

	_, err = s.ToggleSelection(graph.CategoryTopic, "A")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	require.NoError(t, s.ExitPuzzle(graph.CategoryTopic))
	_, err = s.ToggleSelection(graph.CategoryTopic, "A")
	assert.NoError(t, err)
}

func TestService_PuzzleLifecycle(t *testing.T) {
	s := loadedService(t)

	// entering game mode clears the selection
	_, err := s.ToggleSelection(graph.CategoryTopic, "A")
	require.NoError(t, err)

	snap, err := s.StartPuzzle(graph.CategoryTopic)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Number)

	sel, err := s.Selection(graph.CategoryTopic)
	require.NoError(t, err)
	assert.Empty(t, sel)

	state, round, err := s.PuzzleState(graph.CategoryTopic)
	require.NoError(t, err)
	assert.Equal(t, puzzle.StateRoundActive, state)
	require.NotNil(t, round)

	// the puzzle view is served while a round exists
	view, err := s.VisibleGraph(graph.CategoryTopic)
	require.NoError(t, err)
	assert.True(t, view.HasNode(round.Node1))
	assert.True(t, view.HasNode(round.Node2))

	require.NoError(t, s.ExitPuzzle(graph.CategoryTopic))
	state, _, err = s.PuzzleState(graph.CategoryTopic)
	require.NoError(t, err)
	assert.Equal(t, puzzle.StateIdle, state)
}

func TestService_PuzzleOnEmptyGraph(t *testing.T) {
	s := newService(t, &stubLoader{}, nil)
	require.NoError(t, s.LoadDataset(context.Background(), graph.CategoryTopic))

	_, err := s.StartPuzzle(graph.CategoryTopic)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNoPuzzle))

	state, _, err := s.PuzzleState(graph.CategoryTopic)
	require.NoError(t, err)
	assert.Equal(t, puzzle.StateIdle, state, "failed seed aborts game mode")
}

func TestService_Analyze(t *testing.T) {
	describer := &stubDescriber{reply: "A and B are linked through C."}
	s := newService(t, &stubLoader{
		data: map[graph.Category]*source.Dataset{graph.CategoryTopic: scenarioDataset()},
	}, describer)
	require.NoError(t, s.LoadDataset(context.Background(), graph.CategoryTopic))

	// fewer than two selected nodes is rejected
	_, err := s.ToggleSelection(graph.CategoryTopic, "A")
	require.NoError(t, err)
	_, err = s.Analyze(context.Background(), graph.CategoryTopic, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = s.ToggleSelection(graph.CategoryTopic, "B")
	require.NoError(t, err)

	text, err := s.Analyze(context.Background(), graph.CategoryTopic, nil)
	require.NoError(t, err)
	assert.Equal(t, "A and B are linked through C.", text)
	assert.Equal(t, graph.CategoryTopic, describer.got.Category)
	assert.Equal(t, []string{"article about A"}, describer.got.Items["A"].Texts)

	// explicit ids bypass the selection; unknown ids are skipped
	_, err = s.Analyze(context.Background(), graph.CategoryTopic, []string{"C", "D", "ghost"})
	require.NoError(t, err)
	assert.Len(t, describer.got.Items, 2)
	assert.Contains(t, describer.got.Items, "C")
	assert.Contains(t, describer.got.Items, "D")
}

func TestService_AnalyzeSocialUsesPairInteractionsOnly(t *testing.T) {
	ds := &source.Dataset{
		Category: graph.CategorySocial,
		Nodes: []graph.NodeInput{
			{ID: "alice", Label: "@alice", Popularity: 100, Summary: "bio alice"},
			{ID: "bob", Label: "@bob", Popularity: 50},
			{ID: "carol", Label: "@carol", Popularity: 10},
		},
		Edges: []graph.EdgeInput{
			{Source: "alice", Target: "bob"},
			{Source: "alice", Target: "carol"},
		},
		Context: map[string][]string{},
		Interactions: []source.Interaction{
			{
				User1:       "alice",
				User2:       "bob",
				User1Tweets: []string{"hi @bob", "hi @bob"},
				User2Tweets: []string{"hi @alice"},
			},
			{
				User1:       "alice",
				User2:       "carol",
				User1Tweets: []string{"hi @carol"},
				User2Tweets: []string{"hi @alice from carol"},
			},
		},
	}
	describer := &stubDescriber{reply: "connected"}
	s := newService(t, &stubLoader{
		data: map[graph.Category]*source.Dataset{graph.CategorySocial: ds},
	}, describer)
	require.NoError(t, s.LoadDataset(context.Background(), graph.CategorySocial))

	_, err := s.Analyze(context.Background(), graph.CategorySocial, []string{"alice", "bob"})
	require.NoError(t, err)

	// only the alice-bob interaction contributes, deduplicated
	assert.Equal(t, []string{"hi @bob"}, describer.got.Items["alice"].Texts)
	assert.Equal(t, []string{"hi @alice"}, describer.got.Items["bob"].Texts)
	assert.Equal(t, "bio alice", describer.got.Items["alice"].Summary)
	assert.NotContains(t, describer.got.Items, "carol")
}

func TestService_UpdateConfigAppliesTuning(t *testing.T) {
	s := loadedService(t)

	next := config.Default()
	next.Puzzle.GuessBudget = 2
	s.UpdateConfig(next)

	snap, err := s.StartPuzzle(graph.CategoryTopic)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.GuessBudget)
}

func TestService_AnalyzeFailureKeepsSelection(t *testing.T) {
	describer := &stubDescriber{err: apperrors.NewExternal("analysis service", errors.New("boom"))}
	s := newService(t, &stubLoader{
		data: map[graph.Category]*source.Dataset{graph.CategoryTopic: scenarioDataset()},
	}, describer)
	require.NoError(t, s.LoadDataset(context.Background(), graph.CategoryTopic))

	for _, id := range []string{"A", "B"} {
		_, err := s.ToggleSelection(graph.CategoryTopic, id)
		require.NoError(t, err)
	}

	_, err := s.Analyze(context.Background(), graph.CategoryTopic, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))

	sel, err := s.Selection(graph.CategoryTopic)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sel)
}

func TestService_LoadClearsInteractiveState(t *testing.T) {
	s := loadedService(t)

	_, err := s.ToggleSelection(graph.CategoryTopic, "A")
	require.NoError(t, err)

	require.NoError(t, s.LoadDataset(context.Background(), graph.CategoryTopic))

	sel, err := s.Selection(graph.CategoryTopic)
	require.NoError(t, err)
	assert.Empty(t, sel, "reload must clear the selection")
}
