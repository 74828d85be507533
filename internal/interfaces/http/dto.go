package httpapi

import (
	"constellation-backend/internal/domain/graph"
	"constellation-backend/internal/domain/puzzle"
)

// toggleRequest selects or deselects one node.
type toggleRequest struct {
	Node string `json:"node" validate:"required"`
}

type toggleResponse struct {
	Node      string   `json:"node"`
	Selected  bool     `json:"selected"`
	Selection []string `json:"selection"`
}

// connectionsRequest names the nodes to analyze. An empty list falls
// back to the current selection.
type connectionsRequest struct {
	Users []string `json:"users"`
}

type connectionsResponse struct {
	Analysis string `json:"analysis"`
}

// guessRequest is one puzzle submission. The text is not validated
// here: empty or unknown text is ignored by the engine, not rejected.
type guessRequest struct {
	Guess string `json:"guess"`
}

type guessResponse struct {
	Ignored   bool            `json:"ignored"`
	Correct   bool            `json:"correct"`
	Duplicate bool            `json:"duplicate"`
	Exhausted bool            `json:"exhausted"`
	Round     puzzle.Snapshot `json:"round"`
}

type puzzleStateResponse struct {
	State puzzle.State     `json:"state"`
	Round *puzzle.Snapshot `json:"round,omitempty"`
}

// Columnar dataset payloads, one slice per attribute. The render
// surface consumes these verbatim.

type socialNodesResponse struct {
	User      []string  `json:"user"`
	Followers []float64 `json:"followers"`
	Bio       []string  `json:"bio"`
	Size      []float64 `json:"size"`
}

type socialEdgesResponse struct {
	User1 []string `json:"user1"`
	User2 []string `json:"user2"`
}

type topicNodesResponse struct {
	ID      []string  `json:"id"`
	Summary []string  `json:"summary"`
	Size    []float64 `json:"size"`
}

type topicEdgesResponse struct {
	Source     []string  `json:"source"`
	Target     []string  `json:"target"`
	Similarity []float64 `json:"similarity"`
}

func socialNodes(g *graph.Graph) socialNodesResponse {
	out := socialNodesResponse{
		User:      []string{},
		Followers: []float64{},
		Bio:       []string{},
		Size:      []float64{},
	}
	g.ForEachNode(func(n *graph.Node) bool {
		out.User = append(out.User, n.ID)
		out.Followers = append(out.Followers, n.Popularity)
		out.Bio = append(out.Bio, n.Summary)
		out.Size = append(out.Size, n.Size)
		return true
	})
	return out
}

func socialEdges(g *graph.Graph) socialEdgesResponse {
	out := socialEdgesResponse{User1: []string{}, User2: []string{}}
	g.ForEachEdge(func(e graph.Edge) bool {
		out.User1 = append(out.User1, e.Source)
		out.User2 = append(out.User2, e.Target)
		return true
	})
	return out
}

func topicNodes(g *graph.Graph) topicNodesResponse {
	out := topicNodesResponse{ID: []string{}, Summary: []string{}, Size: []float64{}}
	g.ForEachNode(func(n *graph.Node) bool {
		out.ID = append(out.ID, n.ID)
		out.Summary = append(out.Summary, n.Summary)
		out.Size = append(out.Size, n.Size)
		return true
	})
	return out
}

func topicEdges(g *graph.Graph) topicEdgesResponse {
	out := topicEdgesResponse{Source: []string{}, Target: []string{}, Similarity: []float64{}}
	g.ForEachEdge(func(e graph.Edge) bool {
		out.Source = append(out.Source, e.Source)
		out.Target = append(out.Target, e.Target)
		out.Similarity = append(out.Similarity, e.Similarity)
		return true
	})
	return out
}
