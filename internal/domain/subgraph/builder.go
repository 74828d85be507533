package subgraph

import (
	"math/rand"

	"constellation-backend/internal/domain/graph"
)

// Builder computes visible subgraphs. The rand source only feeds the
// pre-layout coordinate scatter; membership and highlight attributes are
// pure in (graph, selection).
type Builder struct {
	rng *rand.Rand
}

// NewBuilder creates a builder scattering coordinates from rng.
func NewBuilder(rng *rand.Rand) *Builder {
	return &Builder{rng: rng}
}

// BuildVisible derives the renderable subgraph for the current selection.
//
// Empty selection: the full graph, edges verbatim. Non-empty selection:
// the induced subgraph over the selected nodes and their direct
// neighbors; a node is highlighted iff selected, an edge iff both its
// endpoints are. Coordinates are rescattered on every call so the
// external layout function re-settles from scratch.
func (b *Builder) BuildVisible(g *graph.Graph, sel *Selection) *View {
	if sel == nil || sel.IsEmpty() {
		return b.buildFull(g)
	}
	return b.buildSelection(g, sel)
}

func (b *Builder) buildFull(g *graph.Graph) *View {
	view := &View{
		Category: g.Category(),
		Nodes:    make([]NodeView, 0, g.NodeCount()),
		Edges:    make([]EdgeView, 0, g.EdgeCount()),
	}
	directed := g.Category().Directed()

	g.ForEachNode(func(n *graph.Node) bool {
		view.Nodes = append(view.Nodes, b.baseNode(g, n))
		return true
	})
	g.ForEachEdge(func(e graph.Edge) bool {
		view.Edges = append(view.Edges, EdgeView{
			Source:   e.Source,
			Target:   e.Target,
			Size:     e.Size,
			Color:    colorEdgeDefault,
			Directed: directed && e.Directed,
		})
		return true
	})
	return view
}

func (b *Builder) buildSelection(g *graph.Graph, sel *Selection) *View {
	show := make(graph.IDSet)
	for _, id := range sel.Members() {
		if !g.HasNode(id) {
			continue
		}
		show.Add(id)
		for n := range g.DirectNeighbors(id) {
			show.Add(n)
		}
	}

	view := &View{
		Category: g.Category(),
		Nodes:    make([]NodeView, 0, len(show)),
	}
	directed := g.Category().Directed()

	g.ForEachNode(func(n *graph.Node) bool {
		if !show.Has(n.ID) {
			return true
		}
		nv := b.baseNode(g, n)
		if sel.Has(n.ID) {
			nv.Highlighted = true
			nv.Color = HighlightColor(g.Category())
			nv.Size = n.Size * highlightScale
			nv.BorderColor = HighlightColor(g.Category())
			nv.BorderSize = highlightBorder
			nv.ForceLabel = true
		}
		view.Nodes = append(view.Nodes, nv)
		return true
	})

	g.ForEachEdge(func(e graph.Edge) bool {
		if !show.Has(e.Source) || !show.Has(e.Target) {
			return true
		}
		ev := EdgeView{
			Source:   e.Source,
			Target:   e.Target,
			Size:     e.Size,
			Color:    colorEdgeDefault,
			Directed: directed && e.Directed,
		}
		if sel.Has(e.Source) && sel.Has(e.Target) {
			ev.Highlighted = true
			ev.Color = colorEdgeHighlight
		}
		view.Edges = append(view.Edges, ev)
		return true
	})

	return view
}

func (b *Builder) baseNode(g *graph.Graph, n *graph.Node) NodeView {
	return NodeView{
		ID:    n.ID,
		Label: n.Label,
		X:     b.rng.Float64(),
		Y:     b.rng.Float64(),
		Size:  n.Size,
		Color: NodeColor(g.Category()),
	}
}
