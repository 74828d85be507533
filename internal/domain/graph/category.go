package graph

// Category identifies which kind of dataset a graph was loaded from.
// It is a property of the whole graph, not of individual edges: it decides
// whether edges are rendered as directed and which raw metric feeds node
// size normalization.
type Category string

const (
	// CategorySocial is the directed dataset of social-media accounts,
	// sized by follower count.
	CategorySocial Category = "social"
	// CategoryTopic is the undirected dataset of encyclopedia topics,
	// sized by connectivity and linked by similarity scores.
	CategoryTopic Category = "topic"
)

// Directed reports whether edges in this category carry direction.
func (c Category) Directed() bool {
	return c == CategorySocial
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategorySocial || c == CategoryTopic
}

// ParseCategory maps a request path segment to a Category.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case string(CategorySocial), "twitter":
		return CategorySocial, true
	case string(CategoryTopic), "wikipedia":
		return CategoryTopic, true
	}
	return "", false
}
