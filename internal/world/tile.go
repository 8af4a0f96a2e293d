package world

// TerrainClass enumerates known tile terrain categories.
type TerrainClass string

const (
	ClassDeepWater   TerrainClass = "deep-water"
	ClassWater       TerrainClass = "water"
	ClassSand        TerrainClass = "sand"
	ClassGrass       TerrainClass = "grass"
	ClassDirt        TerrainClass = "dirt"
	ClassForest      TerrainClass = "forest"
	ClassStone       TerrainClass = "stone"
	ClassCobblestone TerrainClass = "cobblestone"
	ClassSnow        TerrainClass = "snow"
	ClassVoid        TerrainClass = "void"
	ClassWoodSupport TerrainClass = "wood-support"
)

// FloraKind distinguishes the two flora families.
type FloraKind string

const (
	FloraTree   FloraKind = "tree"
	FloraCactus FloraKind = "cactus"
)

// FloraStages is the number of growth stages; a flora at the final stage is
// fully grown.
const FloraStages = 4

// Flora is a tree or cactus growing on a tile, with independent health and
// growth stage.
type Flora struct {
	Kind      FloraKind
	Health    float64
	MaxHealth float64
	Stage     int
}

// Alive reports whether the flora still blocks its tile.
func (f *Flora) Alive() bool {
	return f != nil && f.Health > 0
}

// Tile is the unit cell of the world grid. Its coordinate never changes after
// generation; its contents mutate in place.
type Tile struct {
	Pos   Point
	Class TerrainClass

	// Climate scalars in [0,1].
	Height      float64
	Temperature float64
	Humidity    float64

	// River carving: value in [0,1] and the downhill flow direction.
	River     float64
	FlowAngle float64

	Flora []*Flora

	// Occupancy slots. At most one NPC and at most one POI may coexist;
	// the separate slots make the invariant structural.
	npc *Npc
	poi *Poi

	// BaseLight is the point-source bonus computed at generation or flush;
	// Light is the effective level including the realm ambient.
	BaseLight float64
	Light     float64
}

// Npc returns the NPC occupying the tile, if any.
func (t *Tile) Npc() *Npc { return t.npc }

// Poi returns the point of interest on the tile, if any.
func (t *Tile) Poi() *Poi { return t.poi }

// Structures returns the tile's occupants as a slice for callers that want to
// range over both slots.
func (t *Tile) Structures() []Structure {
	out := make([]Structure, 0, 2)
	if t.poi != nil {
		out = append(out, t.poi)
	}
	if t.npc != nil {
		out = append(out, t.npc)
	}
	return out
}

// LivingFlora returns the first flora on the tile that still has health.
func (t *Tile) LivingFlora() *Flora {
	for _, f := range t.Flora {
		if f.Alive() {
			return f
		}
	}
	return nil
}
