package subterra

import (
	"log"
	"math"

	"github.com/aquilax/go-perlin"

	"sandgarden/internal/config"
	"sandgarden/internal/light"
	"sandgarden/internal/noise"
	"sandgarden/internal/world"
)

// Mine carves a vertical shaft with horizontal levels below its entrance and
// populates them with bandits, chests, torches, and wood supports.
type Mine struct {
	topology
	cfg      config.MineConfig
	lightCfg config.LightingConfig
	seed     int64

	entity *perlin.Perlin
}

// NewMine builds an inactive mine realm. SetEntrance activates it.
func NewMine(seed int64, cfg config.MineConfig, lightCfg config.LightingConfig, logger *log.Logger) *Mine {
	return &Mine{
		topology: newTopology(world.RealmMine, logger),
		cfg:      cfg,
		lightCfg: lightCfg,
		seed:     seed,
	}
}

// SetEntrance selects the mine reached through pos, with the same
// keep-or-rebuild rule as the dungeon.
func (m *Mine) SetEntrance(pos *world.Point) {
	if pos == nil {
		m.entrance = nil
		m.store = nil
		m.prop = nil
		m.resetSpawns()
		return
	}
	if m.sameEntrance(*pos) {
		return
	}
	p := *pos
	m.entrance = &p
	m.resetSpawns()

	m.entity = perlin.NewPerlin(2, 2, 3, entranceHash(m.seed, p))

	m.store = world.NewStore(world.DefaultChunkSize, m)
	reg := light.NewRegistry()
	m.prop = light.NewPropagator(m.store, reg, light.Fixed(m.lightCfg.MineAmbient))
	m.store.AfterGenerate = func(c *world.Chunk) {
		m.ensureLights(c, m.lightCfg.TorchIntensity, m.lightCfg.TorchRadius,
			m.lightCfg.PortalIntensity, m.lightCfg.PortalRadius)
		m.prop.Flush()
		m.prop.LightChunk(c)
	}
}

// depth returns how many tiles below the entrance the shaft reaches.
func (m *Mine) depth() int {
	return m.cfg.LevelInterval*m.cfg.LevelCount + m.cfg.BranchLength
}

// levelExists rolls the probabilistic existence of one horizontal level,
// keyed to the entrance so the answer never changes for a given mine.
func (m *Mine) levelExists(i int) bool {
	e := *m.entrance
	rng := noise.NewTileRNG(entranceHash(m.seed, e), i, 0, 0x1e7e)
	return rng.Chance(m.cfg.LevelChance)
}

// levelReach returns how far level i runs from the shaft on each side.
func (m *Mine) levelReach(i int) int {
	e := *m.entrance
	rng := noise.NewTileRNG(entranceHash(m.seed, e), i, 1, 0x2ea0)
	min := m.cfg.LevelReach / 2
	return min + rng.Intn(m.cfg.LevelReach-min+1)
}

// Member reports whether (x,y) is carved tunnel: the shaft, any existing
// level at its fixed depth, or an end-branch dropping from a level's tip.
func (m *Mine) Member(p world.Point) bool {
	if m.entrance == nil {
		return false
	}
	e := *m.entrance
	dx := p.X - e.X
	dy := p.Y - e.Y
	if dy < 0 || dy > m.depth() {
		return false
	}
	if int(math.Abs(float64(dx))) <= m.cfg.ShaftHalfWidth {
		return true
	}
	for i := 1; i <= m.cfg.LevelCount; i++ {
		ly := i * m.cfg.LevelInterval
		if !m.levelExists(i) {
			continue
		}
		reach := m.levelReach(i)
		if dy == ly && int(math.Abs(float64(dx))) <= reach {
			return true
		}
		// End-branches hang off both tips of the level.
		if (dx == reach || dx == -reach) && dy > ly && dy <= ly+m.cfg.BranchLength {
			return true
		}
	}
	return false
}

func (m *Mine) entityMagnitude(p world.Point) float64 {
	v := math.Abs(m.entity.Noise2D(float64(p.X)*0.015, float64(p.Y)*0.015)) * 1.5
	if v > 1 {
		v = 1
	}
	return v
}

// Populate carves one chunk, then runs the support and feature passes.
func (m *Mine) Populate(c *world.Chunk) {
	if m.entrance == nil {
		c.EachTile(func(t *world.Tile) { t.Class = world.ClassStone })
		return
	}
	c.EachTile(func(t *world.Tile) {
		if m.Member(t.Pos) {
			t.Class = world.ClassDirt
		} else {
			t.Class = world.ClassStone
		}
	})
	c.EachTile(func(t *world.Tile) {
		if t.Class == world.ClassStone {
			m.trySupport(c, t)
		}
	})
	c.EachTile(func(t *world.Tile) {
		if t.Class == world.ClassDirt {
			m.placeFeature(t)
		}
	})
}

// trySupport turns a wall tile adjacent to tunnel into a wood support, and
// attempts the matching support on the opposite wall of the same tunnel.
func (m *Mine) trySupport(c *world.Chunk, t *world.Tile) {
	adj, ok := m.adjacentTunnel(t.Pos)
	if !ok {
		return
	}
	rng := noise.NewTileRNG(m.seed, t.Pos.X, t.Pos.Y, 0x5a9e)
	if !rng.Chance(m.cfg.SupportChance) {
		return
	}
	if m.tooClose(SpawnSupport, t.Pos, m.cfg.SupportSpacing) {
		return
	}
	t.Class = world.ClassWoodSupport
	m.markSpawn(SpawnSupport, t.Pos)

	// Mirror across the tunnel tile.
	opp := world.Point{X: 2*adj.X - t.Pos.X, Y: 2*adj.Y - t.Pos.Y}
	ot := c.TileAt(opp)
	if ot == nil || ot.Class != world.ClassStone {
		return
	}
	if m.tooClose(SpawnSupport, opp, 1) {
		return
	}
	ot.Class = world.ClassWoodSupport
	m.markSpawn(SpawnSupport, opp)
}

func (m *Mine) adjacentTunnel(p world.Point) (world.Point, bool) {
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		q := world.Point{X: p.X + d[0], Y: p.Y + d[1]}
		if m.Member(q) {
			return q, true
		}
	}
	return world.Point{}, false
}

func (m *Mine) placeFeature(t *world.Tile) {
	e := *m.entrance
	pos := t.Pos
	if world.Dist(pos, e) < float64(m.cfg.EntranceClearance) {
		return
	}
	mag := m.entityMagnitude(pos)
	switch {
	case mag > m.cfg.ChestBand:
		if m.tooClose(SpawnChest, pos, m.cfg.SpawnSpacing) {
			return
		}
		m.store.Place(chestPoi(m.seed, pos))
		m.markSpawn(SpawnChest, pos)
	case mag > m.cfg.BanditBand:
		if m.prop.EffectiveAt(pos) > m.lightCfg.MonsterLightCap {
			return
		}
		if mag <= m.lightCfg.SpawnNoiseFloor {
			return
		}
		if m.tooClose(SpawnBandit, pos, m.cfg.SpawnSpacing) {
			return
		}
		m.store.Place(world.NewNpc("bandit", world.CategoryMonster, pos, 20))
		m.markSpawn(SpawnBandit, pos)
	case mag > m.cfg.TorchBand:
		if m.tooClose(SpawnTorch, pos, m.cfg.SpawnSpacing) {
			return
		}
		m.store.Place(&world.Poi{Kind: world.PoiTorch, Pos: pos, Passable: true})
		m.prop.AddSource(light.Source{
			Kind: light.SourceTorch, Pos: pos,
			Intensity: m.lightCfg.TorchIntensity, Radius: m.lightCfg.TorchRadius,
		})
		m.markSpawn(SpawnTorch, pos)
	}
}
