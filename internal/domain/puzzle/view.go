package puzzle

import (
	"math/rand"

	"constellation-backend/internal/domain/graph"
	"constellation-backend/internal/domain/subgraph"
)

// Puzzle-mode palette. Common neighbors change color when the round is
// revealed; wrong guesses and their edges stay distinct throughout.
const (
	colorCommonHidden   = "#94a3b8"
	colorCommonRevealed = "#22c55e"
	colorWrongGuess     = "#ef4444"
	colorEdgeCommon     = "#22c55e"
	colorEdgeWrong      = "#ef4444"
	colorEdgeFocus      = "#f59e0b"
	colorEdgeDefault    = "#c8c8c8"
)

const focusScale = 1.2

// BuildRoundView derives the puzzle-mode visible subgraph for a round.
//
// Visible: the focus pair, their direct neighbors, every common
// neighbor, and every wrong guess with its own direct neighbors. Focus
// nodes and wrong guesses are always labeled; common neighbors are
// labeled only once revealed; everything else has its label suppressed
// but stays visible. Edges are included iff both endpoints are visible
// and colored by class.
func BuildRoundView(g *graph.Graph, r *Round, rng *rand.Rand) *subgraph.View {
	focus := make(graph.IDSet)
	focus.Add(r.Node1)
	focus.Add(r.Node2)

	wrong := make(graph.IDSet)
	for _, id := range r.WrongGuesses {
		wrong.Add(id)
	}

	show := make(graph.IDSet)
	for id := range focus {
		show.Add(id)
		for n := range g.DirectNeighbors(id) {
			show.Add(n)
		}
	}
	for id := range r.CommonNeighbors {
		show.Add(id)
	}
	for id := range wrong {
		show.Add(id)
		for n := range g.DirectNeighbors(id) {
			show.Add(n)
		}
	}

	view := &subgraph.View{
		Category: g.Category(),
		Nodes:    make([]subgraph.NodeView, 0, len(show)),
	}

	g.ForEachNode(func(n *graph.Node) bool {
		if !show.Has(n.ID) {
			return true
		}
		nv := subgraph.NodeView{
			ID:    n.ID,
			Label: n.Label,
			X:     rng.Float64(),
			Y:     rng.Float64(),
			Size:  n.Size,
			Color: subgraph.NodeColor(g.Category()),
		}
		switch {
		case focus.Has(n.ID):
			nv.Highlighted = true
			nv.ForceLabel = true
			nv.Size = n.Size * focusScale
			nv.Color = subgraph.HighlightColor(g.Category())
		case r.CommonNeighbors.Has(n.ID):
			if r.Revealed {
				nv.Color = colorCommonRevealed
				nv.ForceLabel = true
			} else {
				nv.Color = colorCommonHidden
			}
		case wrong.Has(n.ID):
			nv.Color = colorWrongGuess
			nv.ForceLabel = true
		}
		view.Nodes = append(view.Nodes, nv)
		return true
	})

	directed := g.Category().Directed()
	g.ForEachEdge(func(e graph.Edge) bool {
		if !show.Has(e.Source) || !show.Has(e.Target) {
			return true
		}
		ev := subgraph.EdgeView{
			Source:   e.Source,
			Target:   e.Target,
			Size:     e.Size,
			Directed: directed && e.Directed,
			Color:    edgeColor(r, focus, wrong, e),
		}
		view.Edges = append(view.Edges, ev)
		return true
	})

	return view
}

func edgeColor(r *Round, focus, wrong graph.IDSet, e graph.Edge) string {
	touchesCommon := r.CommonNeighbors.Has(e.Source) || r.CommonNeighbors.Has(e.Target)
	touchesFocus := focus.Has(e.Source) || focus.Has(e.Target)
	switch {
	case touchesCommon && touchesFocus:
		return colorEdgeCommon
	case wrong.Has(e.Source) || wrong.Has(e.Target):
		return colorEdgeWrong
	case touchesFocus:
		return colorEdgeFocus
	default:
		return colorEdgeDefault
	}
}
