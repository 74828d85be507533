// Package graph owns the canonical full graph: nodes and edges with their
// display attributes, plus the adjacency queries everything else is built
// on. A Graph is an immutable snapshot; mutation stops at Load.
package graph

import "sort"

// Node is an entity in the loaded graph: a social account or a topic.
// All fields are fixed at load time; per-render highlight attributes live
// on the derived views, never here.
type Node struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Popularity float64 `json:"popularity"`
	Size       float64 `json:"size"`
	Summary    string  `json:"summary,omitempty"`
}

// Edge links two nodes. Directed mirrors the graph's category; it is
// stored per edge only so derived views can serialize without reaching
// back to the parent graph.
type Edge struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Size       float64 `json:"size"`
	Similarity float64 `json:"similarity,omitempty"`
	Directed   bool    `json:"directed"`
}

// IDSet is a set of node identifiers.
type IDSet map[string]struct{}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Sorted returns the members in lexical order, for stable output.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Graph is an immutable snapshot of one loaded dataset.
type Graph struct {
	category  Category
	nodes     map[string]*Node
	order     []string // insertion order for restartable iteration
	edges     []Edge
	adjacency map[string]IDSet
}

// Category returns the dataset category the graph was loaded from.
func (g *Graph) Category() Category {
	return g.category
}

// NodeCount returns the number of nodes in the snapshot.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the snapshot.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// HasNode reports whether id is present in the snapshot.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// AttributesOf returns the node with the given id.
func (g *Graph) AttributesOf(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// ForEachNode visits every node in load order. Returning false from fn
// stops the walk early. The walk is restartable: each call starts over.
func (g *Graph) ForEachNode(fn func(*Node) bool) {
	for _, id := range g.order {
		if !fn(g.nodes[id]) {
			return
		}
	}
}

// ForEachEdge visits every edge in load order, with the same early-stop
// and restart semantics as ForEachNode.
func (g *Graph) ForEachEdge(fn func(Edge) bool) {
	for _, e := range g.edges {
		if !fn(e) {
			return
		}
	}
}

// NodeIDs returns all node ids in load order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}
