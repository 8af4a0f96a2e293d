package light

import (
	"math"
	"testing"

	"sandgarden/internal/world"
)

type flatGen struct{}

func (flatGen) Populate(c *world.Chunk) {
	c.EachTile(func(t *world.Tile) { t.Class = world.ClassGrass })
}

type countingGen struct {
	calls int
}

func (g *countingGen) Populate(c *world.Chunk) {
	g.calls++
	c.EachTile(func(t *world.Tile) { t.Class = world.ClassGrass })
}

func newLitWorld(ambient float64) (*world.Store, *Propagator) {
	store := world.NewStore(16, flatGen{})
	prop := NewPropagator(store, NewRegistry(), Fixed(ambient))
	return store, prop
}

func TestBonusAtSourceAndFalloff(t *testing.T) {
	_, prop := newLitWorld(0.2)
	src := Source{Kind: SourceTorch, Pos: world.Point{X: 0, Y: 0}, Intensity: 0.8, Radius: 6}
	prop.AddSource(src)

	if got := prop.BonusAt(src.Pos); got != 0.8 {
		t.Fatalf("bonus at source = %v, want 0.8", got)
	}
	if got := prop.EffectiveAt(src.Pos); got != 1.0 {
		t.Fatalf("effective at source = %v, want min(1, 0.2+0.8) = 1", got)
	}
	if got := prop.BonusAt(world.Point{X: 6, Y: 0}); got != 0 {
		t.Fatalf("bonus at distance == radius = %v, want 0", got)
	}
	if got := prop.BonusAt(world.Point{X: 7, Y: 0}); got != 0 {
		t.Fatalf("bonus beyond radius = %v, want 0", got)
	}
	half := prop.BonusAt(world.Point{X: 3, Y: 0})
	if math.Abs(half-0.4) > 1e-9 {
		t.Fatalf("bonus at half radius = %v, want 0.4", half)
	}
}

func TestBonusIsMaxNotSum(t *testing.T) {
	_, prop := newLitWorld(0)
	prop.AddSource(Source{Kind: SourceTorch, Pos: world.Point{X: 0, Y: 0}, Intensity: 0.5, Radius: 6})
	prop.AddSource(Source{Kind: SourceTorch, Pos: world.Point{X: 2, Y: 0}, Intensity: 0.5, Radius: 6})

	at := prop.BonusAt(world.Point{X: 1, Y: 0})
	// Both sources are 1 tile away, each contributing 0.5*(1-1/6).
	want := 0.5 * (1 - 1.0/6.0)
	if math.Abs(at-want) > 1e-9 {
		t.Fatalf("overlapping sources gave %v, want max contribution %v", at, want)
	}
}

func TestFlushWritesOnlyLoadedTiles(t *testing.T) {
	gen := &countingGen{}
	store := world.NewStore(16, gen)
	prop := NewPropagator(store, NewRegistry(), Fixed(0))
	store.Tile(world.Point{X: 0, Y: 0})
	base := gen.calls

	// Source at a chunk edge; most of its footprint is in ungenerated space.
	prop.AddSource(Source{Kind: SourceTorch, Pos: world.Point{X: 15, Y: 15}, Intensity: 0.8, Radius: 6})
	prop.Flush()

	if gen.calls != base {
		t.Fatalf("flush generated %d new chunks", gen.calls-base)
	}
	if prop.Pending() != 0 {
		t.Fatalf("flush left %d pending entries", prop.Pending())
	}
	tile := store.TileIfLoaded(world.Point{X: 15, Y: 15})
	if tile.BaseLight != 0.8 {
		t.Fatalf("loaded tile not brightened: %v", tile.BaseLight)
	}
}

func TestRemoveSourceClearsResidualLight(t *testing.T) {
	store, prop := newLitWorld(0.1)
	pos := world.Point{X: 4, Y: 4}
	store.Tile(pos)
	prop.AddSource(Source{Kind: SourceTorch, Pos: pos, Intensity: 0.8, Radius: 6})
	prop.Flush()
	if store.TileIfLoaded(pos).BaseLight == 0 {
		t.Fatalf("source never applied")
	}
	if !prop.RemoveSource(pos) {
		t.Fatalf("remove failed")
	}
	prop.Flush()
	if got := store.TileIfLoaded(pos).BaseLight; got != 0 {
		t.Fatalf("residual light %v after source removal", got)
	}
}

func TestRegistryClearSurvivesIndependently(t *testing.T) {
	reg := NewRegistry()
	reg.Add(Source{Kind: SourceTorch, Pos: world.Point{X: 1, Y: 1}, Intensity: 0.8, Radius: 6})
	reg.Add(Source{Kind: SourcePortal, Pos: world.Point{X: 2, Y: 2}, Intensity: 1, Radius: 8})
	if reg.Len() != 2 {
		t.Fatalf("registry holds %d sources, want 2", reg.Len())
	}
	reg.Clear()
	if reg.Len() != 0 {
		t.Fatalf("registry not empty after clear")
	}
}
