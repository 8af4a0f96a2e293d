package subterra

import (
	"testing"

	"sandgarden/internal/config"
	"sandgarden/internal/noise"
	"sandgarden/internal/world"
)

func testMine(seed string) *Mine {
	cfg := config.Default()
	return NewMine(noise.SeedOf(seed), cfg.Mine, cfg.Lighting, nil)
}

func TestMineShaftRunsBelowEntrance(t *testing.T) {
	m := testMine("abc")
	e := world.Point{X: 0, Y: 0}
	m.SetEntrance(&e)
	cfg := config.Default().Mine
	for dy := 0; dy <= cfg.LevelInterval; dy++ {
		p := world.Point{X: 0, Y: dy}
		if !m.Member(p) {
			t.Fatalf("shaft tile %v not carved", p)
		}
	}
	if m.Member(world.Point{X: 0, Y: -1}) {
		t.Fatalf("shaft extends above the entrance")
	}
	if m.Member(world.Point{X: cfg.ShaftHalfWidth + 1, Y: 1}) {
		t.Fatalf("shaft wider than configured half-width")
	}
}

func TestMineLevelsAtFixedDepths(t *testing.T) {
	m := testMine("abc")
	e := world.Point{X: 0, Y: 0}
	m.SetEntrance(&e)
	cfg := config.Default().Mine

	levels := 0
	for i := 1; i <= cfg.LevelCount; i++ {
		ly := i * cfg.LevelInterval
		off := cfg.ShaftHalfWidth + 2
		if m.Member(world.Point{X: off, Y: ly}) {
			levels++
			// A level only exists at its exact depth.
			if m.Member(world.Point{X: cfg.LevelReach + cfg.BranchLength + 5, Y: ly}) {
				t.Fatalf("level %d reaches past its configured limit", i)
			}
		}
	}
	if levels == 0 {
		t.Fatalf("no levels exist for this seed; existence chance is %v", cfg.LevelChance)
	}
}

func TestMineMembershipDeterministic(t *testing.T) {
	a := testMine("abc")
	b := testMine("abc")
	e := world.Point{X: 7, Y: 3}
	a.SetEntrance(&e)
	b.SetEntrance(&e)
	for y := 0; y <= 70; y += 2 {
		for x := -45; x <= 45; x += 2 {
			p := world.Point{X: e.X + x, Y: e.Y + y}
			if a.Member(p) != b.Member(p) {
				t.Fatalf("membership at %v differs across identical mines", p)
			}
		}
	}
}

func TestMineWallsAreStoneAndSupports(t *testing.T) {
	m := testMine("abc")
	e := world.Point{X: 0, Y: 0}
	m.SetEntrance(&e)
	for cy := 0; cy <= 4; cy++ {
		for cx := -3; cx <= 3; cx++ {
			m.Store().Chunk(world.ChunkCoord{X: cx, Y: cy})
		}
	}
	supports := m.Spawned(SpawnSupport)
	for _, p := range supports {
		tile := m.Store().TileIfLoaded(p)
		if tile == nil || tile.Class != world.ClassWoodSupport {
			t.Fatalf("recorded support at %v is not a wood-support tile", p)
		}
		if _, ok := m.adjacentTunnel(p); !ok {
			t.Fatalf("support at %v not adjacent to any tunnel", p)
		}
	}
}

func TestMineTorchesRegisterLightSources(t *testing.T) {
	m := testMine("abc")
	e := world.Point{X: 0, Y: 0}
	m.SetEntrance(&e)
	for cy := 0; cy <= 4; cy++ {
		for cx := -3; cx <= 3; cx++ {
			m.Store().Chunk(world.ChunkCoord{X: cx, Y: cy})
		}
	}
	for _, p := range m.Spawned(SpawnTorch) {
		if _, ok := m.Lights().Registry().At(p); !ok {
			t.Fatalf("torch at %v has no registered light source", p)
		}
	}
}

func TestMineAmbientIsFixed(t *testing.T) {
	m := testMine("abc")
	e := world.Point{X: 0, Y: 0}
	m.SetEntrance(&e)
	cfg := config.Default().Lighting
	if got := m.Lights().Ambient(); got != cfg.MineAmbient {
		t.Fatalf("mine ambient = %v, want %v", got, cfg.MineAmbient)
	}
}

func TestMineBanditSpacing(t *testing.T) {
	m := testMine("abc")
	e := world.Point{X: 0, Y: 0}
	m.SetEntrance(&e)
	for cy := 0; cy <= 5; cy++ {
		for cx := -4; cx <= 4; cx++ {
			m.Store().Chunk(world.ChunkCoord{X: cx, Y: cy})
		}
	}
	cfg := config.Default().Mine
	bandits := m.Spawned(SpawnBandit)
	for i := 0; i < len(bandits); i++ {
		for j := i + 1; j < len(bandits); j++ {
			if d := world.ChebyshevDist(bandits[i], bandits[j]); d < cfg.SpawnSpacing {
				t.Fatalf("bandits at %v and %v only %d apart", bandits[i], bandits[j], d)
			}
		}
	}
}
