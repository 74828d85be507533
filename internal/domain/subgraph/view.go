package subgraph

import "constellation-backend/internal/domain/graph"

// NodeView is a node prepared for the render surface: base attributes
// from the snapshot plus per-render placement and highlight state.
type NodeView struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Size        float64 `json:"size"`
	Color       string  `json:"color"`
	BorderColor string  `json:"border_color,omitempty"`
	BorderSize  float64 `json:"border_size,omitempty"`
	ForceLabel  bool    `json:"force_label"`
	Highlighted bool    `json:"highlighted"`
}

// EdgeView is an edge prepared for the render surface.
type EdgeView struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Size        float64 `json:"size"`
	Color       string  `json:"color"`
	Directed    bool    `json:"directed"`
	Highlighted bool    `json:"highlighted"`
}

// View is one renderable frame: the visible subgraph with display
// attributes applied. Coordinates are a fresh random placement each
// build; the external layout function settles them afterwards.
type View struct {
	Category graph.Category `json:"category"`
	Nodes    []NodeView     `json:"nodes"`
	Edges    []EdgeView     `json:"edges"`
}

// HasNode reports whether the view contains a node with the given id.
func (v *View) HasNode(id string) bool {
	for i := range v.Nodes {
		if v.Nodes[i].ID == id {
			return true
		}
	}
	return false
}

// Node returns the view node with the given id.
func (v *View) Node(id string) (*NodeView, bool) {
	for i := range v.Nodes {
		if v.Nodes[i].ID == id {
			return &v.Nodes[i], true
		}
	}
	return nil, false
}

// Base colors per category, and the highlight variants used for selected
// nodes. The topic palette leans warm so highlights read against the
// similarity edges.
const (
	colorSocialNode      = "#1d9bf0"
	colorSocialHighlight = "#f91880"
	colorTopicNode       = "#3366cc"
	colorTopicHighlight  = "#e57d0e"
	colorEdgeDefault     = "#c8c8c8"
	colorEdgeHighlight   = "#f91880"
)

// highlightScale enlarges selected nodes; highlightBorder thickens their
// outline.
const (
	highlightScale  = 1.2
	highlightBorder = 2.0
)

// NodeColor returns the base display color for a category.
func NodeColor(c graph.Category) string {
	if c == graph.CategorySocial {
		return colorSocialNode
	}
	return colorTopicNode
}

// HighlightColor returns the selected-node color for a category.
func HighlightColor(c graph.Category) string {
	if c == graph.CategorySocial {
		return colorSocialHighlight
	}
	return colorTopicHighlight
}
