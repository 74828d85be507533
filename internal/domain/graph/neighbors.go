package graph

// DirectNeighbors returns every node id with an edge touching id, in
// either direction. Unknown ids yield an empty set.
func (g *Graph) DirectNeighbors(id string) IDSet {
	out := make(IDSet, len(g.adjacency[id]))
	for n := range g.adjacency[id] {
		out.Add(n)
	}
	return out
}

// AreNeighbors reports whether a and b share an edge in either direction.
func (g *Graph) AreNeighbors(a, b string) bool {
	return g.adjacency[a].Has(b)
}

// CommonNeighbors returns the ids adjacent to both a and b, excluding a
// and b themselves. The result is symmetric in its arguments.
func (g *Graph) CommonNeighbors(a, b string) IDSet {
	na := g.adjacency[a]
	nb := g.adjacency[b]
	if len(nb) < len(na) {
		na, nb = nb, na
	}
	out := make(IDSet)
	for id := range na {
		if id == a || id == b {
			continue
		}
		if nb.Has(id) {
			out.Add(id)
		}
	}
	return out
}

// Degree returns the number of distinct neighbors of id.
func (g *Graph) Degree(id string) int {
	return len(g.adjacency[id])
}
