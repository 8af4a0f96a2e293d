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

// Dungeon carves a corridor-and-room network around its active entrance and
// populates it with monsters, chests, and a single cached portal.
type Dungeon struct {
	topology
	cfg      config.DungeonConfig
	lightCfg config.LightingConfig
	seed     int64

	carve     *perlin.Perlin
	branch    *perlin.Perlin
	rooms     *perlin.Perlin
	connector *perlin.Perlin
	entity    *perlin.Perlin

	portal *world.Point
}

// NewDungeon builds an inactive dungeon realm. SetEntrance activates it.
func NewDungeon(seed int64, cfg config.DungeonConfig, lightCfg config.LightingConfig, logger *log.Logger) *Dungeon {
	return &Dungeon{
		topology: newTopology(world.RealmDungeon, logger),
		cfg:      cfg,
		lightCfg: lightCfg,
		seed:     seed,
	}
}

// Portal returns the cached portal tile for the active entrance.
func (d *Dungeon) Portal() (world.Point, bool) {
	if d.portal == nil {
		return world.Point{}, false
	}
	return *d.portal, true
}

// SetEntrance selects the dungeon reached through pos. The same entrance
// (within one tile) preserves every cache; a genuinely new one rebuilds the
// realm from scratch. A nil position deactivates the realm, keeping nothing.
func (d *Dungeon) SetEntrance(pos *world.Point) {
	if pos == nil {
		d.entrance = nil
		d.store = nil
		d.prop = nil
		d.portal = nil
		d.resetSpawns()
		return
	}
	if d.sameEntrance(*pos) {
		return
	}
	p := *pos
	d.entrance = &p
	d.portal = nil
	d.resetSpawns()

	chSeed := entranceHash(d.seed, p)
	d.carve = perlin.NewPerlin(2, 2, 3, chSeed)
	d.branch = perlin.NewPerlin(2, 2, 3, chSeed+1)
	d.rooms = perlin.NewPerlin(2, 2, 3, chSeed+2)
	d.connector = perlin.NewPerlin(2, 2, 3, chSeed+3)
	d.entity = perlin.NewPerlin(2, 2, 3, chSeed+4)

	d.store = world.NewStore(world.DefaultChunkSize, d)
	reg := light.NewRegistry()
	d.prop = light.NewPropagator(d.store, reg, light.Fixed(0))
	d.store.AfterGenerate = func(c *world.Chunk) {
		d.ensureLights(c, d.lightCfg.TorchIntensity, d.lightCfg.TorchRadius,
			d.lightCfg.PortalIntensity, d.lightCfg.PortalRadius)
		d.prop.Flush()
		d.prop.LightChunk(c)
	}
	d.findPortal()
}

// Member reports whether (x,y) is carved tunnel. It is a pure function of
// the coordinate and the active entrance.
func (d *Dungeon) Member(p world.Point) bool {
	if d.entrance == nil {
		return false
	}
	e := *d.entrance
	dist := world.Dist(p, e)
	if dist <= 3 {
		return true
	}
	if dist > float64(d.cfg.CarveRange) {
		return false
	}
	x, y := float64(p.X), float64(p.Y)
	if math.Abs(d.carve.Noise2D(x*0.05, y*0.05)) < d.cfg.CorridorWidth {
		return true
	}
	if dist < float64(d.cfg.BranchRange) &&
		math.Abs(d.branch.Noise2D(x*0.08, y*0.08)) < d.cfg.BranchWidth {
		return true
	}
	if normalized(d.rooms.Noise2D(x*0.03, y*0.03)) > d.cfg.RoomThreshold {
		return true
	}
	return math.Abs(d.connector.Noise2D(x*0.02, y*0.02)) < d.cfg.ConnectorWidth
}

// normalized remaps a roughly [-1,1] sample to [0,1].
func normalized(v float64) float64 {
	v = v*0.5 + 0.5
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// entityMagnitude is the low-frequency feature channel; band thresholds on
// its magnitude select what spawns where.
func (d *Dungeon) entityMagnitude(p world.Point) float64 {
	v := math.Abs(d.entity.Noise2D(float64(p.X)*0.015, float64(p.Y)*0.015)) * 1.5
	if v > 1 {
		v = 1
	}
	return v
}

// Populate carves one chunk and runs its feature pass.
func (d *Dungeon) Populate(c *world.Chunk) {
	if d.entrance == nil {
		c.EachTile(func(t *world.Tile) { t.Class = world.ClassVoid })
		return
	}
	e := *d.entrance
	c.EachTile(func(t *world.Tile) {
		switch {
		case d.Member(t.Pos):
			t.Class = world.ClassCobblestone
		case world.Dist(t.Pos, e) > float64(d.cfg.CarveRange)+8:
			t.Class = world.ClassVoid
		default:
			t.Class = world.ClassStone
		}
	})
	c.EachTile(func(t *world.Tile) {
		if t.Class == world.ClassCobblestone {
			d.placeFeature(t)
		}
	})
}

func (d *Dungeon) placeFeature(t *world.Tile) {
	e := *d.entrance
	pos := t.Pos
	if d.portal != nil && pos == *d.portal {
		d.placePortal(pos)
		return
	}
	if world.Dist(pos, e) < float64(d.cfg.EntranceClearance) {
		return
	}
	mag := d.entityMagnitude(pos)
	switch {
	case mag > d.cfg.ChestBand:
		if d.tooClose(SpawnChest, pos, d.cfg.SpawnSpacing) {
			return
		}
		d.store.Place(chestPoi(d.seed, pos))
		d.markSpawn(SpawnChest, pos)
	case mag > d.cfg.MonsterBand:
		if !d.monsterMaySpawn(pos, mag) {
			return
		}
		if d.tooClose(SpawnMonster, pos, d.cfg.SpawnSpacing) {
			return
		}
		kind := "skeleton"
		if noise.NewTileRNG(d.seed, pos.X, pos.Y, 0xd0b).Chance(0.4) {
			kind = "ghoul"
		}
		d.store.Place(world.NewNpc(kind, world.CategoryMonster, pos, 25))
		d.markSpawn(SpawnMonster, pos)
	}
}

// monsterMaySpawn requires darkness below the cap and a feature-channel
// magnitude above the spawn floor. Darkness alone is not sufficient.
func (d *Dungeon) monsterMaySpawn(pos world.Point, mag float64) bool {
	if d.prop.EffectiveAt(pos) > d.lightCfg.MonsterLightCap {
		return false
	}
	return mag > d.lightCfg.SpawnNoiseFloor
}

func (d *Dungeon) placePortal(pos world.Point) {
	d.store.Place(&world.Poi{
		Kind:         world.PoiPortal,
		Pos:          pos,
		Interactable: true,
		Payload:      &world.PortalPayload{Entrance: *d.entrance},
	})
	d.prop.AddSource(light.Source{
		Kind: light.SourcePortal, Pos: pos,
		Intensity: d.lightCfg.PortalIntensity, Radius: d.lightCfg.PortalRadius,
	})
}

// findPortal scans the carved network once per entrance for the member tile
// farthest from the entrance past the configured floor. Ties break toward
// the smaller y, then the smaller x, so the result is stable. The choice is
// cached; the per-tile feature pass never re-rolls it.
func (d *Dungeon) findPortal() {
	e := *d.entrance
	r := d.cfg.CarveRange
	var best *world.Point
	bestDist := float64(d.cfg.PortalMinDistance)
	for y := e.Y - r; y <= e.Y+r; y++ {
		for x := e.X - r; x <= e.X+r; x++ {
			p := world.Point{X: x, Y: y}
			dist := world.Dist(p, e)
			if dist < bestDist {
				continue
			}
			if !d.Member(p) {
				continue
			}
			if best == nil || dist > bestDist ||
				(dist == bestDist && (p.Y < best.Y || (p.Y == best.Y && p.X < best.X))) {
				q := p
				best = &q
				bestDist = dist
			}
		}
	}
	if best == nil {
		d.logger.Printf("dungeon: no portal site beyond %d tiles of (%d,%d)",
			d.cfg.PortalMinDistance, e.X, e.Y)
		return
	}
	d.portal = best
}
