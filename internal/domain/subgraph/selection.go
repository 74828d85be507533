// Package subgraph derives the visible induced subgraph for exploration
// mode from the full graph snapshot and the user's current selection.
package subgraph

import "constellation-backend/internal/domain/graph"

// Selection is the set of focus nodes the user has clicked. It is owned
// by the explorer controller; nothing here is safe for concurrent use.
type Selection struct {
	members graph.IDSet
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{members: make(graph.IDSet)}
}

// Toggle flips membership of id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if s.members.Has(id) {
		delete(s.members, id)
		return false
	}
	s.members.Add(id)
	return true
}

// Clear removes every member.
func (s *Selection) Clear() {
	s.members = make(graph.IDSet)
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	return s.members.Has(id)
}

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool {
	return len(s.members) == 0
}

// Size returns the number of selected nodes.
func (s *Selection) Size() int {
	return len(s.members)
}

// Members returns the selected ids in lexical order.
func (s *Selection) Members() []string {
	return s.members.Sorted()
}
