package light

import (
	"math"

	"sandgarden/internal/world"
)

// AmbientFunc supplies the realm's current ambient level in [0,1].
type AmbientFunc func() float64

// Fixed returns an AmbientFunc for realms with a constant ambient level.
func Fixed(level float64) AmbientFunc {
	return func() float64 { return level }
}

// Propagator writes illumination onto tiles. Brightening a source's
// neighborhood during chunk generation would require materializing tiles
// that may not exist yet, so affected coordinates are queued and flushed
// only after the triggering generation pass completes. Flush touches only
// tiles already in the chunk cache and never triggers generation.
type Propagator struct {
	store   *world.Store
	reg     *Registry
	ambient AmbientFunc

	pending []world.Point
}

// NewPropagator wires a propagator to one realm's store, registry, and
// ambient rule.
func NewPropagator(store *world.Store, reg *Registry, ambient AmbientFunc) *Propagator {
	return &Propagator{store: store, reg: reg, ambient: ambient}
}

// Registry exposes the realm's source registry.
func (p *Propagator) Registry() *Registry { return p.reg }

// Ambient returns the realm's current ambient level.
func (p *Propagator) Ambient() float64 { return p.ambient() }

// BonusAt is the point-source contribution at pos: for each source,
// intensity scaled by linear falloff over its radius; the total is the
// maximum over sources, not the sum.
func (p *Propagator) BonusAt(pos world.Point) float64 {
	best := 0.0
	p.reg.Each(func(s Source) {
		d := world.Dist(pos, s.Pos)
		if d >= s.Radius {
			return
		}
		b := s.Intensity * (1 - d/s.Radius)
		if b > best {
			best = b
		}
	})
	return best
}

// EffectiveAt combines ambient and bonus, capped at full brightness.
func (p *Propagator) EffectiveAt(pos world.Point) float64 {
	return math.Min(1, p.ambient()+p.BonusAt(pos))
}

// AddSource registers a source and queues its footprint for the next flush.
func (p *Propagator) AddSource(s Source) {
	p.reg.Add(s)
	p.enqueueArea(s.Pos, int(math.Ceil(s.Radius)))
}

// RemoveSource drops a source and queues its former footprint so residual
// brightness is cleared.
func (p *Propagator) RemoveSource(pos world.Point) bool {
	s, ok := p.reg.At(pos)
	if !ok {
		return false
	}
	p.reg.Remove(pos)
	p.enqueueArea(pos, int(math.Ceil(s.Radius)))
	return true
}

// Pending returns how many coordinates await a flush.
func (p *Propagator) Pending() int { return len(p.pending) }

func (p *Propagator) enqueueArea(center world.Point, radius int) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p.pending = append(p.pending, world.Point{X: center.X + dx, Y: center.Y + dy})
		}
	}
}

// Flush drains the pending queue, rewriting light on tiles whose chunks are
// already loaded. Coordinates in ungenerated chunks are dropped; they get
// their light during their own chunk's generation pass.
func (p *Propagator) Flush() {
	if len(p.pending) == 0 {
		return
	}
	queue := p.pending
	p.pending = nil
	for _, pos := range queue {
		t := p.store.TileIfLoaded(pos)
		if t == nil {
			continue
		}
		p.Refresh(t)
	}
}

// Refresh recomputes one tile's stored light from the current sources and
// ambient.
func (p *Propagator) Refresh(t *world.Tile) {
	t.BaseLight = p.BonusAt(t.Pos)
	t.Light = math.Min(1, p.ambient()+t.BaseLight)
}

// LightChunk initializes light across a freshly generated chunk.
func (p *Propagator) LightChunk(c *world.Chunk) {
	c.EachTile(p.Refresh)
}
