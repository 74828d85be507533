package graph

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	apperrors "constellation-backend/internal/errors"
)

// NodeInput is one raw node record from a data source.
type NodeInput struct {
	ID         string
	Label      string
	Popularity float64
	Summary    string
}

// EdgeInput is one raw edge record from a data source.
type EdgeInput struct {
	Source     string
	Target     string
	Weight     float64
	Similarity float64
}

// SizeScale holds the node-size normalization bounds. Raw popularity is
// mapped through a log scale so a handful of huge accounts do not flatten
// everything else.
type SizeScale struct {
	Min     float64
	Max     float64
	Epsilon float64
}

// DefaultSizeScale matches the display range the front end expects.
func DefaultSizeScale() SizeScale {
	return SizeScale{Min: 3, Max: 16, Epsilon: 1e-9}
}

// LoadOptions tune dataset cleaning during Load.
type LoadOptions struct {
	Scale SizeScale
	// SimilarityFloor keeps only edges strictly above the threshold.
	// Zero keeps all.
	SimilarityFloor float64
	// DropIslands removes nodes left with no edges after cleaning.
	DropIslands bool
	Logger      *zap.Logger
}

// Load builds an immutable Graph snapshot from raw records.
//
// Cleaning rules:
//   - duplicate node ids: last write wins, counted as a data warning
//   - self-loops: dropped
//   - edges referencing unknown nodes: dropped silently
//   - duplicate edges: dropped; undirected categories canonicalize the
//     pair before comparing, directed categories compare the ordered pair
//   - all-non-positive popularity: every node falls back to Scale.Min,
//     counted as a data warning
//
// The returned graph is valid even when an error is returned: the error
// is a DATA warning describing what was cleaned, never a failure.
func Load(category Category, nodes []NodeInput, edges []EdgeInput, opts LoadOptions) (*Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scale := opts.Scale
	if scale.Max <= scale.Min {
		scale = DefaultSizeScale()
	}

	g := &Graph{
		category:  category,
		nodes:     make(map[string]*Node, len(nodes)),
		order:     make([]string, 0, len(nodes)),
		edges:     make([]Edge, 0, len(edges)),
		adjacency: make(map[string]IDSet, len(nodes)),
	}

	duplicates := 0
	for _, in := range nodes {
		if in.ID == "" {
			continue
		}
		if _, seen := g.nodes[in.ID]; seen {
			duplicates++
		} else {
			g.order = append(g.order, in.ID)
		}
		label := in.Label
		if label == "" {
			label = in.ID
		}
		g.nodes[in.ID] = &Node{
			ID:         in.ID,
			Label:      label,
			Popularity: in.Popularity,
			Summary:    in.Summary,
		}
	}

	sizeFallback := normalizeSizes(g, scale)

	directed := category.Directed()
	seen := make(map[[2]string]struct{}, len(edges))
	droppedUnknown := 0
	for _, in := range edges {
		if in.Source == in.Target {
			continue
		}
		if !g.HasNode(in.Source) || !g.HasNode(in.Target) {
			droppedUnknown++
			continue
		}
		if opts.SimilarityFloor > 0 && in.Similarity <= opts.SimilarityFloor {
			continue
		}
		key := [2]string{in.Source, in.Target}
		if !directed && key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		size := in.Weight
		if size <= 0 {
			size = 1
		}
		g.edges = append(g.edges, Edge{
			Source:     in.Source,
			Target:     in.Target,
			Size:       size,
			Similarity: in.Similarity,
			Directed:   directed,
		})
		g.link(in.Source, in.Target)
	}

	if opts.DropIslands {
		g.dropIslands()
	}

	logger.Info("graph snapshot loaded",
		zap.String("category", string(category)),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("duplicate_nodes", duplicates),
		zap.Int("dropped_unknown_edges", droppedUnknown),
	)

	switch {
	case duplicates > 0 && sizeFallback:
		return g, apperrors.NewData("load warnings", fmt.Errorf("%d duplicate node ids (last write wins); no positive popularity values, sizes defaulted", duplicates))
	case duplicates > 0:
		return g, apperrors.NewData("load warnings", fmt.Errorf("%d duplicate node ids (last write wins)", duplicates))
	case sizeFallback && len(nodes) > 0:
		return g, apperrors.NewData("load warnings", fmt.Errorf("no positive popularity values, sizes defaulted"))
	}
	return g, nil
}

// normalizeSizes assigns each node a display size on a log scale between
// scale.Min and scale.Max. fMin is taken over positive popularity values
// only; when none exist every node gets scale.Min and the fallback is
// reported.
func normalizeSizes(g *Graph, scale SizeScale) (fallback bool) {
	fMin := math.Inf(1)
	fMax := math.Inf(-1)
	for _, id := range g.order {
		f := g.nodes[id].Popularity
		if f <= 0 {
			continue
		}
		fMin = math.Min(fMin, f)
		fMax = math.Max(fMax, f)
	}

	if math.IsInf(fMin, 1) {
		for _, id := range g.order {
			g.nodes[id].Size = scale.Min
		}
		return true
	}

	logMin := math.Log(fMin)
	logMax := math.Log(fMax)
	span := logMax - logMin
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Popularity <= 0 {
			n.Size = scale.Min
			continue
		}
		if span == 0 {
			n.Size = scale.Min
			continue
		}
		size := scale.Min + (math.Log(n.Popularity+scale.Epsilon)-logMin)/span*(scale.Max-scale.Min)
		n.Size = math.Max(scale.Min, math.Min(scale.Max, size))
	}
	return false
}

func (g *Graph) link(a, b string) {
	if g.adjacency[a] == nil {
		g.adjacency[a] = make(IDSet)
	}
	if g.adjacency[b] == nil {
		g.adjacency[b] = make(IDSet)
	}
	g.adjacency[a].Add(b)
	g.adjacency[b].Add(a)
}

func (g *Graph) dropIslands() {
	kept := make([]string, 0, len(g.order))
	for _, id := range g.order {
		if len(g.adjacency[id]) == 0 {
			delete(g.nodes, id)
			continue
		}
		kept = append(kept, id)
	}
	g.order = kept
}
