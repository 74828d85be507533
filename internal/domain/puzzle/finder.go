// Package puzzle implements the guess-the-hidden-connection game: the
// search for a focus pair two hops apart, the round state machine, and
// the puzzle-mode visible subgraph.
package puzzle

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"constellation-backend/internal/domain/graph"
	apperrors "constellation-backend/internal/errors"
)

// Pair is a puzzle seed: two nodes that are not directly linked but
// share at least one common neighbor. The common neighbors are the
// accepted answers.
type Pair struct {
	Node1           string
	Node2           string
	CommonNeighbors graph.IDSet
}

// Question is a pre-vetted puzzle from the curated list. It must be
// revalidated against the live graph before use; datasets change.
type Question struct {
	Node1           string   `yaml:"node1" json:"node1"`
	Node2           string   `yaml:"node2" json:"node2"`
	CommonNeighbors []string `yaml:"common_neighbors" json:"common_neighbors"`
}

// Finder locates puzzle pairs. The randomized search is bounded
// best-effort: it shuffles the node ids and examines at most
// CandidateLimit choices for each endpoint, so on large sparse graphs it
// can miss pairs that exist. Callers treat ErrNoPuzzle as an expected
// outcome, not a bug.
type Finder struct {
	rng            *rand.Rand
	candidateLimit int
	questions      []Question
	curatedRounds  map[int]int // round number -> question index
	logger         *zap.Logger
}

// FinderConfig tunes a Finder.
type FinderConfig struct {
	// CandidateLimit bounds both endpoint scans. Defaults to 50.
	CandidateLimit int
	// Questions is the curated fallback list, in order.
	Questions []Question
	// CuratedRounds lists the 1-based round numbers served from the
	// curated list instead of the randomized search. Round N uses the
	// question at the position of N within this slice, modulo the list
	// length.
	CuratedRounds []int
}

// NewFinder creates a Finder drawing randomness from rng.
func NewFinder(rng *rand.Rand, cfg FinderConfig, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.CandidateLimit
	if limit <= 0 {
		limit = 50
	}
	curated := make(map[int]int, len(cfg.CuratedRounds))
	if len(cfg.Questions) > 0 {
		for i, round := range cfg.CuratedRounds {
			curated[round] = i % len(cfg.Questions)
		}
	}
	return &Finder{
		rng:            rng,
		candidateLimit: limit,
		questions:      cfg.Questions,
		curatedRounds:  curated,
		logger:         logger,
	}
}

// SetCandidateLimit replaces the search bound. Non-positive values are
// ignored.
func (f *Finder) SetCandidateLimit(n int) {
	if n > 0 {
		f.candidateLimit = n
	}
}

// Find returns a puzzle pair for the given 1-based round number. Curated
// rounds use the pre-vetted list when the entry still validates against
// g; everything else, including failed validation, goes through the
// randomized search.
func (f *Finder) Find(g *graph.Graph, round int) (Pair, error) {
	if idx, ok := f.curatedRounds[round]; ok {
		q := f.questions[idx]
		if pair, ok := f.validate(g, q); ok {
			f.logger.Debug("curated puzzle selected",
				zap.Int("round", round),
				zap.String("node1", pair.Node1),
				zap.String("node2", pair.Node2),
			)
			return pair, nil
		}
		f.logger.Warn("curated puzzle no longer valid, falling back to search",
			zap.Int("round", round),
			zap.String("node1", q.Node1),
			zap.String("node2", q.Node2),
		)
	}
	return f.search(g)
}

// validate checks a curated question against the live graph: both
// endpoints present and not adjacent, and every listed answer still a
// common neighbor.
func (f *Finder) validate(g *graph.Graph, q Question) (Pair, bool) {
	if len(q.CommonNeighbors) == 0 {
		return Pair{}, false
	}
	if !g.HasNode(q.Node1) || !g.HasNode(q.Node2) || q.Node1 == q.Node2 {
		return Pair{}, false
	}
	if g.AreNeighbors(q.Node1, q.Node2) {
		return Pair{}, false
	}
	live := g.CommonNeighbors(q.Node1, q.Node2)
	for _, id := range q.CommonNeighbors {
		if !live.Has(id) {
			return Pair{}, false
		}
	}
	return Pair{Node1: q.Node1, Node2: q.Node2, CommonNeighbors: live}, true
}

// search is the bounded randomized two-hop scan.
func (f *Finder) search(g *graph.Graph) (Pair, error) {
	ids := g.NodeIDs()
	f.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	limit := f.candidateLimit
	if limit > len(ids) {
		limit = len(ids)
	}

	for i := 0; i < limit; i++ {
		a := ids[i]
		neighbors := g.DirectNeighbors(a)
		for j := 0; j < limit; j++ {
			b := ids[j]
			if a == b || neighbors.Has(b) {
				continue
			}
			common := g.CommonNeighbors(a, b)
			if len(common) > 0 {
				return Pair{Node1: a, Node2: b, CommonNeighbors: common}, nil
			}
		}
	}

	return Pair{}, apperrors.NewNoPuzzle(
		fmt.Sprintf("no two-hop pair found among %d candidates", limit))
}
