package graph

import (
	"math"
	"testing"

	apperrors "constellation-backend/internal/errors"
)

func testNodes(ids ...string) []NodeInput {
	nodes := make([]NodeInput, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, NodeInput{ID: id, Popularity: 100})
	}
	return nodes
}

func TestLoad_DuplicateNodesLastWriteWins(t *testing.T) {
	nodes := []NodeInput{
		{ID: "alice", Popularity: 10, Summary: "first"},
		{ID: "bob", Popularity: 20},
		{ID: "alice", Popularity: 30, Summary: "second"},
	}

	g, err := Load(CategorySocial, nodes, nil, LoadOptions{})
	if !apperrors.IsType(err, apperrors.ErrorTypeData) {
		t.Fatalf("expected DATA warning, got %v", err)
	}
	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2", g.NodeCount())
	}

	n, ok := g.AttributesOf("alice")
	if !ok {
		t.Fatal("alice missing")
	}
	if n.Summary != "second" || n.Popularity != 30 {
		t.Errorf("last write should win, got %+v", n)
	}
}

func TestLoad_EdgeCleaning(t *testing.T) {
	nodes := testNodes("a", "b", "c")
	edges := []EdgeInput{
		{Source: "a", Target: "a"},     // self-loop
		{Source: "a", Target: "ghost"}, // unknown endpoint
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"}, // duplicate once canonicalized
		{Source: "b", Target: "c"},
	}

	g, err := Load(CategoryTopic, nodes, edges, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestLoad_DirectedKeepsBothDirections(t *testing.T) {
	nodes := testNodes("a", "b")
	edges := []EdgeInput{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
		{Source: "a", Target: "b"}, // true duplicate
	}

	g, err := Load(CategorySocial, nodes, edges, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2 (a->b and b->a are distinct)", g.EdgeCount())
	}
}

func TestLoad_SimilarityFloor(t *testing.T) {
	nodes := testNodes("a", "b", "c")
	edges := []EdgeInput{
		{Source: "a", Target: "b", Similarity: 0.9},
		{Source: "b", Target: "c", Similarity: 0.1},
		// exactly at the floor: the filter is strictly greater-than
		{Source: "a", Target: "c", Similarity: 0.42},
	}

	g, err := Load(CategoryTopic, nodes, edges, LoadOptions{SimilarityFloor: 0.42})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if g.AreNeighbors("a", "c") {
		t.Error("edge at the similarity floor should have been dropped")
	}
}

func TestLoad_DropIslands(t *testing.T) {
	nodes := testNodes("a", "b", "island")
	edges := []EdgeInput{{Source: "a", Target: "b"}}

	g, err := Load(CategoryTopic, nodes, edges, LoadOptions{DropIslands: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.HasNode("island") {
		t.Error("island node should have been dropped")
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
}

func TestNormalizeSizes(t *testing.T) {
	scale := SizeScale{Min: 3, Max: 16, Epsilon: 1e-9}

	tests := []struct {
		name       string
		nodes      []NodeInput
		id         string
		want       float64
		wantWarn   bool
		exactMatch bool
	}{
		{
			name: "min popularity maps to min size",
			nodes: []NodeInput{
				{ID: "small", Popularity: 10},
				{ID: "big", Popularity: 100000},
			},
			id: "small", want: scale.Min, exactMatch: true,
		},
		{
			name: "max popularity maps to max size",
			nodes: []NodeInput{
				{ID: "small", Popularity: 10},
				{ID: "big", Popularity: 100000},
			},
			id: "big", want: scale.Max, exactMatch: true,
		},
		{
			name: "non-positive clamps to min",
			nodes: []NodeInput{
				{ID: "zero", Popularity: 0},
				{ID: "small", Popularity: 10},
				{ID: "big", Popularity: 100000},
			},
			id: "zero", want: scale.Min, exactMatch: true,
		},
		{
			name: "all non-positive falls back to min",
			nodes: []NodeInput{
				{ID: "a", Popularity: 0},
				{ID: "b", Popularity: -5},
			},
			id: "b", want: scale.Min, exactMatch: true, wantWarn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Load(CategorySocial, tt.nodes, nil, LoadOptions{Scale: scale})
			if tt.wantWarn != apperrors.IsType(err, apperrors.ErrorTypeData) {
				t.Fatalf("warning = %v, want warning %v", err, tt.wantWarn)
			}
			n, ok := g.AttributesOf(tt.id)
			if !ok {
				t.Fatalf("node %s missing", tt.id)
			}
			if tt.exactMatch && math.Abs(n.Size-tt.want) > 1e-6 {
				t.Errorf("Size = %v, want %v", n.Size, tt.want)
			}
		})
	}
}

func TestNormalizeSizes_Midpoint(t *testing.T) {
	// geometric midpoint of the popularity range lands on the middle of
	// the size range under log scaling
	g, err := Load(CategorySocial, []NodeInput{
		{ID: "lo", Popularity: 10},
		{ID: "mid", Popularity: 1000},
		{ID: "hi", Popularity: 100000},
	}, nil, LoadOptions{Scale: SizeScale{Min: 2, Max: 10, Epsilon: 1e-9}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	mid, _ := g.AttributesOf("mid")
	if math.Abs(mid.Size-6) > 0.01 {
		t.Errorf("midpoint Size = %v, want ~6", mid.Size)
	}
}

func TestForEach_Restartable(t *testing.T) {
	g, err := Load(CategorySocial, testNodes("a", "b", "c"), []EdgeInput{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
	}, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	count := func() int {
		n := 0
		g.ForEachNode(func(*Node) bool { n++; return true })
		return n
	}
	if count() != 3 || count() != 3 {
		t.Error("ForEachNode should be restartable")
	}

	// early stop
	visited := 0
	g.ForEachEdge(func(Edge) bool { visited++; return false })
	if visited != 1 {
		t.Errorf("early stop visited %d edges, want 1", visited)
	}
}
