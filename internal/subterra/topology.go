// Package subterra carves and populates the two underground realms. Each
// realm owns its chunk store, noise channels, spawn-spacing sets, and light
// registry, all keyed to the currently active entrance.
package subterra

import (
	"log"

	"sandgarden/internal/light"
	"sandgarden/internal/world"
)

// SpawnCategory partitions spawned features for spacing checks.
type SpawnCategory string

const (
	SpawnMonster SpawnCategory = "monster"
	SpawnBandit  SpawnCategory = "bandit"
	SpawnChest   SpawnCategory = "chest"
	SpawnTorch   SpawnCategory = "torch"
	SpawnSupport SpawnCategory = "support"
)

// topology is the state shared by both realms: the entrance pointer, the
// per-category spawn sets, and the lighting hookup. A realm embeds it and
// supplies its own carving and feature rules.
type topology struct {
	realm    world.RealmKind
	entrance *world.Point
	spawned  map[SpawnCategory][]world.Point
	store    *world.Store
	prop     *light.Propagator
	logger   *log.Logger
}

func newTopology(realm world.RealmKind, logger *log.Logger) topology {
	if logger == nil {
		logger = log.Default()
	}
	return topology{
		realm:   realm,
		spawned: make(map[SpawnCategory][]world.Point),
		logger:  logger,
	}
}

// Entrance returns the active entrance, or false when the realm is inactive.
func (t *topology) Entrance() (world.Point, bool) {
	if t.entrance == nil {
		return world.Point{}, false
	}
	return *t.entrance, true
}

// Store returns the realm's chunk store; nil while no entrance is active.
func (t *topology) Store() *world.Store { return t.store }

// Lights returns the realm's propagator; nil while no entrance is active.
func (t *topology) Lights() *light.Propagator { return t.prop }

// sameEntrance treats positions within one tile as the same entrance, so a
// player re-crossing the threshold does not reset the realm.
func (t *topology) sameEntrance(pos world.Point) bool {
	return t.entrance != nil && world.Dist(*t.entrance, pos) < 1
}

func (t *topology) tooClose(cat SpawnCategory, pos world.Point, spacing int) bool {
	for _, q := range t.spawned[cat] {
		if world.ChebyshevDist(q, pos) < spacing {
			return true
		}
	}
	return false
}

func (t *topology) markSpawn(cat SpawnCategory, pos world.Point) {
	t.spawned[cat] = append(t.spawned[cat], pos)
}

// Spawned returns the spawn positions recorded for a category.
func (t *topology) Spawned(cat SpawnCategory) []world.Point {
	return t.spawned[cat]
}

func (t *topology) resetSpawns() {
	t.spawned = make(map[SpawnCategory][]world.Point)
}

// ensureLights re-registers sources for every torch and portal POI in a
// freshly generated chunk. A source registered without its POI on the tile
// means the two stores disagree; that is logged and skipped, never fatal.
func (t *topology) ensureLights(c *world.Chunk, torchIntensity, torchRadius, portalIntensity, portalRadius float64) {
	if t.prop == nil {
		return
	}
	c.EachPoi(func(p *world.Poi) {
		switch p.Kind {
		case world.PoiTorch:
			if _, ok := t.prop.Registry().At(p.Pos); !ok {
				t.prop.AddSource(light.Source{
					Kind: light.SourceTorch, Pos: p.Pos,
					Intensity: torchIntensity, Radius: torchRadius,
				})
			}
		case world.PoiPortal:
			if _, ok := t.prop.Registry().At(p.Pos); !ok {
				t.prop.AddSource(light.Source{
					Kind: light.SourcePortal, Pos: p.Pos,
					Intensity: portalIntensity, Radius: portalRadius,
				})
			}
		}
	})
	t.prop.Registry().Each(func(s light.Source) {
		tile := t.store.TileIfLoaded(s.Pos)
		if tile == nil {
			return
		}
		if poi := tile.Poi(); poi == nil || (poi.Kind != world.PoiTorch && poi.Kind != world.PoiPortal) {
			t.logger.Printf("%s: light source at (%d,%d) has no backing structure", t.realm, s.Pos.X, s.Pos.Y)
		}
	})
}

// entranceHash folds an entrance position into a channel seed so two
// different entrances carve two different networks.
func entranceHash(seed int64, pos world.Point) int64 {
	h := uint64(seed)
	h ^= uint64(int64(pos.X)) * 0x9e3779b97f4a7c15
	h ^= uint64(int64(pos.Y)) * 0xbf58476d1ce4e5b9
	return int64(h)
}
