package terrain

import (
	"log"
	"strings"

	"sandgarden/internal/config"
	"sandgarden/internal/noise"
	"sandgarden/internal/world"
)

const (
	saltEntrance uint64 = 0xe117
	saltWildlife uint64 = 0x3a1f
	saltName     uint64 = 0x9a3e
)

// settlementBuildings is the fixed cluster footprint relative to the trigger
// tile: a central landmark, four resource buildings, and wildlife spawns.
var settlementBuildings = []struct {
	dx, dy int
	kind   world.PoiKind
}{
	{-3, 0, world.PoiMarket},
	{3, 0, world.PoiWell},
	{0, -3, world.PoiHouse},
	{0, 3, world.PoiNoticeBoard},
}

var settlementWildlife = [][2]int{
	{-2, -2}, {2, -2}, {-2, 2}, {2, 2},
}

// settlementReach is how far the cluster extends from its trigger tile.
// Triggers closer than this to a chunk edge are skipped so placement never
// touches a neighboring, possibly ungenerated chunk.
const settlementReach = 3

var nameSyllables = []string{
	"bar", "dun", "el", "fen", "gar", "hol", "kel", "mor",
	"nor", "os", "pel", "ral", "sten", "tor", "vin", "wyn",
}

var nameSuffixes = []string{"ford", "holm", "stead", "wick", "marsh", "field"}

// Placer decorates freshly synthesized chunks. It implements the store's
// Generator and therefore must be bound to the store after construction.
type Placer struct {
	synth *Synthesizer
	field *noise.Field
	cfg   config.StructureConfig
	store *world.Store

	// Claimed settlement cells and placed entrances persist across chunk
	// passes; the per-tile occupied set does not. Claims remember their
	// trigger tile so an evicted chunk regenerates identically.
	settledCells map[world.ChunkCoord]world.Point
	entrances    []world.Point
	names        map[world.Point]string

	// OnEntrance is invoked for every placed mine or dungeon entrance.
	OnEntrance func(poi *world.Poi)

	logger *log.Logger
}

// NewPlacer builds a placer. Bind must be called before the first chunk
// generates.
func NewPlacer(synth *Synthesizer, field *noise.Field, cfg config.StructureConfig, logger *log.Logger) *Placer {
	if logger == nil {
		logger = log.Default()
	}
	return &Placer{
		synth:        synth,
		field:        field,
		cfg:          cfg,
		settledCells: make(map[world.ChunkCoord]world.Point),
		names:        make(map[world.Point]string),
		logger:       logger,
	}
}

// Bind attaches the store the placer writes through.
func (p *Placer) Bind(store *world.Store) { p.store = store }

// Entrances returns every mine/dungeon entrance placed so far.
func (p *Placer) Entrances() []world.Point { return p.entrances }

// SettlementName returns the generated name for a settlement anchored at pos.
func (p *Placer) SettlementName(pos world.Point) (string, bool) {
	n, ok := p.names[pos]
	return n, ok
}

// Populate synthesizes every tile of the chunk, seeds flora, then runs the
// placement pass over the finished terrain.
func (p *Placer) Populate(c *world.Chunk) {
	c.EachTile(func(t *world.Tile) {
		p.synth.Synthesize(t)
	})
	c.EachTile(func(t *world.Tile) {
		if f := p.synth.SeedFlora(t); f != nil {
			p.store.AddFlora(t.Pos, f)
		}
	})

	occupied := make(map[world.Point]bool)
	c.EachTile(func(t *world.Tile) {
		p.trySettlement(c, t, occupied)
		p.tryEntrance(t, occupied)
		p.tryWildlife(t, occupied)
	})
}

// poiTerrainOK reports whether a POI may stand on the tile's terrain.
func poiTerrainOK(class world.TerrainClass) bool {
	switch class {
	case world.ClassDeepWater, world.ClassWater, world.ClassStone, world.ClassSnow:
		return false
	}
	return true
}

// npcTerrainOK mirrors poiTerrainOK for creature spawns.
func npcTerrainOK(class world.TerrainClass) bool {
	return poiTerrainOK(class)
}

func (p *Placer) claim(pos world.Point, occupied map[world.Point]bool) bool {
	if occupied[pos] {
		return false
	}
	occupied[pos] = true
	return true
}

func (p *Placer) trySettlement(c *world.Chunk, t *world.Tile, occupied map[world.Point]bool) {
	if t.Class != world.ClassGrass {
		return
	}
	if p.field.Settlement(t.Pos.X, t.Pos.Y, p.cfg.SettlementFrequency) < p.cfg.SettlementThreshold {
		return
	}
	if p.nearChunkEdge(c, t.Pos) {
		return
	}
	cell := world.ChunkCoord{
		X: world.FloorDiv(t.Pos.X, p.cfg.SettlementCellSize),
		Y: world.FloorDiv(t.Pos.Y, p.cfg.SettlementCellSize),
	}
	if prev, claimed := p.settledCells[cell]; claimed && prev != t.Pos {
		return
	}
	fresh := p.names[t.Pos] == ""
	p.settledCells[cell] = t.Pos

	name := p.rollName(t.Pos)
	p.names[t.Pos] = name
	if fresh {
		p.logger.Printf("settlement %q founded at (%d,%d)", name, t.Pos.X, t.Pos.Y)
	}

	if p.claim(t.Pos, occupied) {
		p.store.Place(&world.Poi{
			Kind:         world.PoiLandmark,
			Pos:          t.Pos,
			Interactable: true,
		})
	}
	for _, b := range settlementBuildings {
		pos := world.Point{X: t.Pos.X + b.dx, Y: t.Pos.Y + b.dy}
		bt := p.store.TileIfLoaded(pos)
		if bt == nil || !poiTerrainOK(bt.Class) || !p.claim(pos, occupied) {
			continue
		}
		poi := &world.Poi{Kind: b.kind, Pos: pos, Interactable: true}
		if b.kind == world.PoiNoticeBoard {
			poi.Payload = &world.NoticeBoardPayload{Settlement: name}
		}
		if p.store.Place(poi) {
			p.store.SetClass(pos, world.ClassCobblestone)
		}
	}
	for _, w := range settlementWildlife {
		pos := world.Point{X: t.Pos.X + w[0], Y: t.Pos.Y + w[1]}
		wt := p.store.TileIfLoaded(pos)
		if wt == nil || !npcTerrainOK(wt.Class) || !p.claim(pos, occupied) {
			continue
		}
		p.store.Place(world.NewNpc("sheep", world.CategoryAnimal, pos, 10))
	}
}

func (p *Placer) tryEntrance(t *world.Tile, occupied map[world.Point]bool) {
	if t.Class != world.ClassStone {
		return
	}
	if p.field.Settlement(t.Pos.X, t.Pos.Y, p.cfg.SettlementFrequency) < p.cfg.EntranceThreshold {
		return
	}
	rng := noise.NewTileRNG(p.field.Seed(), t.Pos.X, t.Pos.Y, saltEntrance)
	if !rng.Chance(p.cfg.EntranceChance) {
		return
	}
	known := false
	for _, e := range p.entrances {
		if e == t.Pos {
			// Same tile regenerating after eviction; re-place, don't re-record.
			known = true
			break
		}
		if world.ChebyshevDist(e, t.Pos) < p.cfg.EntranceSpacing {
			return
		}
	}
	if !p.claim(t.Pos, occupied) {
		return
	}
	realm := world.RealmMine
	kind := world.PoiMineEntrance
	if rng.Chance(0.5) {
		realm = world.RealmDungeon
		kind = world.PoiDungeonEntrance
	}
	poi := &world.Poi{
		Kind:         kind,
		Pos:          t.Pos,
		Interactable: true,
		Payload:      &world.EntrancePayload{Realm: realm},
	}
	if !p.store.Place(poi) {
		return
	}
	if known {
		return
	}
	p.entrances = append(p.entrances, t.Pos)
	if p.OnEntrance != nil {
		p.OnEntrance(poi)
	}
}

func (p *Placer) tryWildlife(t *world.Tile, occupied map[world.Point]bool) {
	if t.Class != world.ClassGrass {
		return
	}
	rng := noise.NewTileRNG(p.field.Seed(), t.Pos.X, t.Pos.Y, saltWildlife)
	if !rng.Chance(p.cfg.WildlifeChance) {
		return
	}
	if t.LivingFlora() != nil || !p.claim(t.Pos, occupied) {
		return
	}
	kind := "rabbit"
	if rng.Chance(0.3) {
		kind = "deer"
	}
	p.store.Place(world.NewNpc(kind, world.CategoryAnimal, t.Pos, 8))
}

// nearChunkEdge reports whether a settlement anchored at pos would spill into
// a neighboring chunk.
func (p *Placer) nearChunkEdge(c *world.Chunk, pos world.Point) bool {
	size := c.Size()
	lx := world.FloorMod(pos.X, size)
	ly := world.FloorMod(pos.Y, size)
	return lx < settlementReach || ly < settlementReach ||
		lx >= size-settlementReach || ly >= size-settlementReach
}

func (p *Placer) rollName(pos world.Point) string {
	rng := noise.NewTileRNG(p.field.Seed(), pos.X, pos.Y, saltName)
	var b strings.Builder
	parts := 1 + rng.Intn(2)
	for i := 0; i < parts; i++ {
		b.WriteString(nameSyllables[rng.Intn(len(nameSyllables))])
	}
	b.WriteString(nameSuffixes[rng.Intn(len(nameSuffixes))])
	name := b.String()
	return strings.ToUpper(name[:1]) + name[1:]
}
