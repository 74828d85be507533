// Package layout is the port to the external positioning function. The
// core scatters random coordinates; a layout engine settles them. The
// default engine is a pass-through, matching deployments where the
// force-directed simulation runs on the render surface itself.
package layout

import (
	"constellation-backend/internal/config"
	"constellation-backend/internal/domain/subgraph"
)

// Engine assigns final coordinates to a view. Implementations treat the
// config values as opaque physics knobs.
type Engine interface {
	Assign(view *subgraph.View, cfg config.Layout) *subgraph.View
}

// Passthrough leaves the scattered coordinates untouched.
type Passthrough struct{}

// Assign returns the view unchanged.
func (Passthrough) Assign(view *subgraph.View, _ config.Layout) *subgraph.View {
	return view
}
