// Package sim assembles the three realms into one tick-driven simulation and
// exposes the narrow surface that rendering, UI, and combat collaborators
// call into.
package sim

import (
	"log"
	"time"

	"sandgarden/internal/config"
	"sandgarden/internal/light"
	"sandgarden/internal/movement"
	"sandgarden/internal/noise"
	"sandgarden/internal/subterra"
	"sandgarden/internal/terrain"
	"sandgarden/internal/world"
)

// World owns every realm and all per-tick state. There is exactly one
// logical writer per tick phase, so no locking is needed.
type World struct {
	cfg    *config.Config
	logger *log.Logger
	seed   int64

	overworld *world.Store
	overOcc   *world.Occupancy
	overProp  *light.Propagator
	placer    *terrain.Placer
	day       *light.DayCycle

	dungeon *subterra.Dungeon
	mine    *subterra.Mine

	active world.RealmKind
	policy wanderPolicy

	tick        uint64
	growthAccum time.Duration
	breedAccum  time.Duration

	// Overworld dirt tiles waiting to regrow into grass.
	dirt map[world.Point]time.Duration
}

// New builds the full world from configuration. Nothing generates until the
// first tile query.
func New(cfg *config.Config, logger *log.Logger) *World {
	if logger == nil {
		logger = log.Default()
	}
	seed := noise.SeedOf(cfg.World.Seed)
	field := noise.NewField(seed)
	synth := terrain.NewSynthesizer(field, cfg.Terrain)
	placer := terrain.NewPlacer(synth, field, cfg.Structures, logger)

	store := world.NewStore(cfg.World.ChunkSize, placer)
	placer.Bind(store)

	day := light.NewDayCycle(cfg.Lighting.DayLength.Duration(), cfg.Lighting.NightMinimum)
	prop := light.NewPropagator(store, light.NewRegistry(), day.Ambient)
	store.AfterGenerate = func(c *world.Chunk) {
		prop.Flush()
		prop.LightChunk(c)
	}

	w := &World{
		cfg:       cfg,
		logger:    logger,
		seed:      seed,
		overworld: store,
		overOcc:   world.NewOccupancy(store, world.RealmOverworld),
		overProp:  prop,
		placer:    placer,
		day:       day,
		dungeon:   subterra.NewDungeon(seed, cfg.Dungeon, cfg.Lighting, logger),
		mine:      subterra.NewMine(seed, cfg.Mine, cfg.Lighting, logger),
		active:    world.RealmOverworld,
		policy:    wanderPolicy{cfg: cfg.Entities, seed: seed},
		dirt:      make(map[world.Point]time.Duration),
	}
	return w
}

// Seed returns the numeric world seed derived from the configured string.
func (w *World) Seed() int64 { return w.seed }

// ActiveRealm returns the realm the player currently inhabits.
func (w *World) ActiveRealm() world.RealmKind { return w.active }

// Day exposes the overworld day cycle for rendering.
func (w *World) Day() *light.DayCycle { return w.day }

// Dungeon exposes the dungeon realm for interaction collaborators.
func (w *World) Dungeon() *subterra.Dungeon { return w.dungeon }

// Mine exposes the mine realm.
func (w *World) Mine() *subterra.Mine { return w.mine }

func (w *World) storeFor(realm world.RealmKind) *world.Store {
	switch realm {
	case world.RealmDungeon:
		return w.dungeon.Store()
	case world.RealmMine:
		return w.mine.Store()
	default:
		return w.overworld
	}
}

func (w *World) propFor(realm world.RealmKind) *light.Propagator {
	switch realm {
	case world.RealmDungeon:
		return w.dungeon.Lights()
	case world.RealmMine:
		return w.mine.Lights()
	default:
		return w.overProp
	}
}

// TileAt returns the tile at a world coordinate in the given realm,
// generating its chunk on first access. The tile's light field is refreshed
// before returning so render snapshots track the day cycle.
func (w *World) TileAt(realm world.RealmKind, x, y int) *world.Tile {
	store := w.storeFor(realm)
	if store == nil {
		return nil
	}
	t := store.Tile(world.Point{X: x, Y: y})
	if prop := w.propFor(realm); prop != nil && t != nil {
		prop.Refresh(t)
	}
	return t
}

// StructureAt returns the occupant of a generated tile, if any.
func (w *World) StructureAt(realm world.RealmKind, x, y int) world.Structure {
	store := w.storeFor(realm)
	if store == nil {
		return nil
	}
	return store.StructureAt(world.Point{X: x, Y: y})
}

// NpcAt returns the NPC on a generated tile.
func (w *World) NpcAt(realm world.RealmKind, x, y int) *world.Npc {
	store := w.storeFor(realm)
	if store == nil {
		return nil
	}
	return store.NpcAt(world.Point{X: x, Y: y})
}

// PoiAt returns the POI on a generated tile.
func (w *World) PoiAt(realm world.RealmKind, x, y int) *world.Poi {
	store := w.storeFor(realm)
	if store == nil {
		return nil
	}
	return store.PoiAt(world.Point{X: x, Y: y})
}

// LightSources returns the realm's registered sources for debug overlays.
func (w *World) LightSources(realm world.RealmKind) []light.Source {
	prop := w.propFor(realm)
	if prop == nil {
		return nil
	}
	return prop.Registry().Sources()
}

// AddTorch registers a torch source at pos in the given realm.
func (w *World) AddTorch(realm world.RealmKind, pos world.Point) {
	prop := w.propFor(realm)
	if prop == nil {
		return
	}
	prop.AddSource(light.Source{
		Kind: light.SourceTorch, Pos: pos,
		Intensity: w.cfg.Lighting.TorchIntensity,
		Radius:    w.cfg.Lighting.TorchRadius,
	})
	prop.Flush()
}

// ClearLights drops every source in the given realm.
func (w *World) ClearLights(realm world.RealmKind) {
	prop := w.propFor(realm)
	if prop == nil {
		return
	}
	prop.Registry().Each(func(s light.Source) {
		prop.RemoveSource(s.Pos)
	})
	prop.Flush()
}

// RemoveLight drops the source at pos in the given realm.
func (w *World) RemoveLight(realm world.RealmKind, pos world.Point) bool {
	prop := w.propFor(realm)
	if prop == nil {
		return false
	}
	ok := prop.RemoveSource(pos)
	prop.Flush()
	return ok
}

// RemoveDeadEntityAt removes an NPC whose health has been reduced to zero
// and returns its drop list. A living or missing NPC yields nothing.
func (w *World) RemoveDeadEntityAt(x, y int) []world.ItemStack {
	store := w.storeFor(w.active)
	if store == nil {
		return nil
	}
	n := store.NpcAt(world.Point{X: x, Y: y})
	if n == nil || n.Alive() {
		return nil
	}
	store.Remove(n)
	return n.Inventory
}

// HandleEntityDeath removes the entity and raises a tombstone holding the
// inventory snapshot at the death position. If the tile's POI slot is taken
// the items are lost with a logged notice; the core does not relocate loot.
func (w *World) HandleEntityDeath(n *world.Npc, pos world.Point, inv []world.ItemStack) {
	store := w.storeFor(w.active)
	if store == nil {
		return
	}
	if n != nil {
		store.Remove(n)
	}
	if len(inv) == 0 {
		return
	}
	if store.PoiAt(pos) != nil {
		w.logger.Printf("death at (%d,%d): tile already holds a structure, drops lost", pos.X, pos.Y)
		return
	}
	store.Place(world.NewTombstone(pos, inv))
}

// SetEntrancePosition activates the subterranean realm reached through the
// entrance POI at pos, or returns the player to the overworld when pos is
// nil. Exiting keeps realm caches alive so re-entering the same entrance
// restores the identical dungeon or mine.
func (w *World) SetEntrancePosition(pos *world.Point) {
	if pos == nil {
		w.active = world.RealmOverworld
		return
	}
	poi := w.overworld.PoiAt(*pos)
	if poi == nil {
		w.logger.Printf("no entrance structure at (%d,%d)", pos.X, pos.Y)
		return
	}
	payload, ok := poi.Payload.(*world.EntrancePayload)
	if !ok {
		w.logger.Printf("structure at (%d,%d) is not an entrance", pos.X, pos.Y)
		return
	}
	switch payload.Realm {
	case world.RealmDungeon:
		w.dungeon.SetEntrance(pos)
		w.active = world.RealmDungeon
	case world.RealmMine:
		w.mine.SetEntrance(pos)
		w.active = world.RealmMine
	}
}

// MarkDirt flips an overworld tile to dirt and schedules its regrowth.
// Collaborators call this for trampling and digging effects.
func (w *World) MarkDirt(pos world.Point) {
	t := w.overworld.TileIfLoaded(pos)
	if t == nil || t.Class != world.ClassGrass {
		return
	}
	w.overworld.SetClass(pos, world.ClassDirt)
	w.dirt[pos] = w.cfg.Entities.DirtRegrowth.Duration()
}

// StrikeFlora applies damage to a tile's flora. A destroyed cactus leaves
// bare sand behind.
func (w *World) StrikeFlora(pos world.Point, damage float64) {
	store := w.storeFor(w.active)
	if store == nil {
		return
	}
	t := store.TileIfLoaded(pos)
	if t == nil {
		return
	}
	f := t.LivingFlora()
	if f == nil {
		return
	}
	f.Health -= damage
	if f.Health > 0 {
		return
	}
	store.RemoveFlora(pos)
	if f.Kind == world.FloraCactus {
		store.SetClass(pos, world.ClassSand)
	}
}

// Update advances the world one tick: day cycle, growth and regrowth
// timers, breeding, movement arbitration, then a lighting flush.
func (w *World) Update(delta time.Duration, playerPos world.Point, playerInv []world.ItemStack) {
	w.tick++
	w.day.Advance(delta)

	w.regrowDirt(delta)

	w.growthAccum += delta
	if w.growthAccum >= w.cfg.Entities.GrowthInterval.Duration() {
		w.growthAccum = 0
		w.growFlora(playerPos)
		w.pruneTombstones(playerPos)
	}

	w.breedAccum += delta
	if w.breedAccum >= w.cfg.Entities.BreedInterval.Duration() {
		w.breedAccum = 0
		w.breedAnimals(playerPos)
	}

	if w.tick%uint64(w.cfg.Entities.MoveCadence) == 0 {
		w.moveEntities(playerPos)
	}

	if prop := w.propFor(w.active); prop != nil {
		prop.Flush()
	}
}

func (w *World) regrowDirt(delta time.Duration) {
	for pos, left := range w.dirt {
		left -= delta
		if left > 0 {
			w.dirt[pos] = left
			continue
		}
		delete(w.dirt, pos)
		t := w.overworld.TileIfLoaded(pos)
		if t != nil && t.Class == world.ClassDirt {
			w.overworld.SetClass(pos, world.ClassGrass)
		}
	}
}

// growFlora advances every living flora near the player by one stage.
func (w *World) growFlora(playerPos world.Point) {
	w.eachLoadedChunkNear(playerPos, func(c *world.Chunk) {
		c.EachFlora(func(t *world.Tile, f *world.Flora) {
			if f.Alive() && f.Stage < world.FloraStages-1 {
				f.Stage++
			}
		})
	})
}

// pruneTombstones removes tombstones that collaborators have emptied.
func (w *World) pruneTombstones(playerPos world.Point) {
	store := w.storeFor(w.active)
	if store == nil {
		return
	}
	var empty []*world.Poi
	w.eachLoadedChunkNear(playerPos, func(c *world.Chunk) {
		c.EachPoi(func(p *world.Poi) {
			if p.Kind == world.PoiTombstone && p.Chest().Empty() {
				empty = append(empty, p)
			}
		})
	})
	for _, p := range empty {
		store.Remove(p)
	}
}

func (w *World) breedAnimals(playerPos world.Point) {
	if w.active != world.RealmOverworld {
		return
	}
	animals := 0
	nearby := w.overworld.NpcsWithin(playerPos, w.cfg.World.UpdateRadius)
	for _, n := range nearby {
		if n.Category == world.CategoryAnimal && n.Alive() {
			animals++
		}
	}
	for _, n := range nearby {
		if animals >= w.cfg.Entities.BreedCap {
			return
		}
		if n.Category != world.CategoryAnimal || !n.Alive() {
			continue
		}
		rng := noise.NewTileRNG(w.seed^int64(w.tick), n.Pos.X, n.Pos.Y, 0xb4ed)
		if !rng.Chance(w.cfg.Entities.BreedChance) {
			continue
		}
		if spot, ok := w.freeNeighbor(n.Pos, playerPos); ok {
			w.overworld.Place(world.NewNpc(n.Kind, world.CategoryAnimal, spot, n.MaxHealth))
			animals++
		}
	}
}

func (w *World) freeNeighbor(pos, playerPos world.Point) (world.Point, bool) {
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		q := world.Point{X: pos.X + d[0], Y: pos.Y + d[1]}
		if q != playerPos && w.overOcc.CanEnter(q, nil, playerPos) {
			return q, true
		}
	}
	return world.Point{}, false
}

func (w *World) moveEntities(playerPos world.Point) {
	store := w.storeFor(w.active)
	if store == nil {
		return
	}
	occ := w.occupancyFor(w.active)
	npcs := store.NpcsWithin(playerPos, w.cfg.World.UpdateRadius)
	if len(npcs) == 0 {
		return
	}
	w.policy.tick = w.tick
	arb := movement.NewArbiter(store, occ)
	arb.Tick(npcs, &w.policy, playerPos)
}

func (w *World) occupancyFor(realm world.RealmKind) *world.Occupancy {
	if realm == world.RealmOverworld {
		return w.overOcc
	}
	return world.NewOccupancy(w.storeFor(realm), realm)
}

func (w *World) eachLoadedChunkNear(center world.Point, fn func(*world.Chunk)) {
	store := w.storeFor(w.active)
	if store == nil {
		return
	}
	r := w.cfg.World.UpdateRadius
	size := store.ChunkSize()
	minC := world.ChunkOf(world.Point{X: center.X - r, Y: center.Y - r}, size)
	maxC := world.ChunkOf(world.Point{X: center.X + r, Y: center.Y + r}, size)
	for cy := minC.Y; cy <= maxC.Y; cy++ {
		for cx := minC.X; cx <= maxC.X; cx++ {
			if c := store.ChunkIfLoaded(world.ChunkCoord{X: cx, Y: cy}); c != nil {
				fn(c)
			}
		}
	}
}
