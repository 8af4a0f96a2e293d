// Package light computes per-tile illumination from a realm ambient term
// plus radial falloff around registered point sources.
package light

import (
	"sandgarden/internal/world"
)

// SourceKind tags the two point-source families.
type SourceKind string

const (
	SourceTorch  SourceKind = "torch"
	SourcePortal SourceKind = "portal"
)

// Source is one registered light emitter.
type Source struct {
	Kind      SourceKind
	Pos       world.Point
	Intensity float64
	Radius    float64
}

// Registry maps tile coordinates to light sources. It lives apart from tile
// storage so sources survive regeneration of individual tiles.
type Registry struct {
	sources map[world.Point]Source
}

// NewRegistry builds an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[world.Point]Source)}
}

// Add registers a source at its position, replacing any existing one there.
func (r *Registry) Add(s Source) {
	r.sources[s.Pos] = s
}

// Remove drops the source at pos, reporting whether one was present.
func (r *Registry) Remove(pos world.Point) bool {
	if _, ok := r.sources[pos]; !ok {
		return false
	}
	delete(r.sources, pos)
	return true
}

// At returns the source registered at pos.
func (r *Registry) At(pos world.Point) (Source, bool) {
	s, ok := r.sources[pos]
	return s, ok
}

// Clear drops every source.
func (r *Registry) Clear() {
	r.sources = make(map[world.Point]Source)
}

// Len returns the number of registered sources.
func (r *Registry) Len() int { return len(r.sources) }

// Each visits every source in unspecified order.
func (r *Registry) Each(fn func(Source)) {
	for _, s := range r.sources {
		fn(s)
	}
}

// Sources returns a snapshot slice for debug overlays.
func (r *Registry) Sources() []Source {
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	return out
}
