package world

// DefaultChunkSize is the side length of a chunk in tiles.
const DefaultChunkSize = 16

// Chunk is a fixed-size square of tiles, the unit of lazy generation. A
// coordinate always maps to the same chunk; only contents mutate.
type Chunk struct {
	Coord ChunkCoord

	size  int
	tiles []Tile

	// Registries keyed by local index for O(1) movement and removal.
	flora map[int]*Flora
	npcs  map[int]*Npc
	pois  map[int]*Poi

	// Tiles that diverged from pure generation, kept for future persistence.
	modified map[int]struct{}

	generated bool
}

func newChunk(coord ChunkCoord, size int) *Chunk {
	c := &Chunk{
		Coord:    coord,
		size:     size,
		tiles:    make([]Tile, size*size),
		flora:    make(map[int]*Flora),
		npcs:     make(map[int]*Npc),
		pois:     make(map[int]*Poi),
		modified: make(map[int]struct{}),
	}
	for ly := 0; ly < size; ly++ {
		for lx := 0; lx < size; lx++ {
			idx := ly*size + lx
			c.tiles[idx].Pos = Point{
				X: coord.X*size + lx,
				Y: coord.Y*size + ly,
			}
		}
	}
	return c
}

// Size returns the chunk side length in tiles.
func (c *Chunk) Size() int { return c.size }

func (c *Chunk) localIndex(p Point) (int, bool) {
	lx := p.X - c.Coord.X*c.size
	ly := p.Y - c.Coord.Y*c.size
	if lx < 0 || ly < 0 || lx >= c.size || ly >= c.size {
		return 0, false
	}
	return ly*c.size + lx, true
}

// TileAt returns the tile at a global coordinate, or nil when the coordinate
// falls outside this chunk.
func (c *Chunk) TileAt(p Point) *Tile {
	idx, ok := c.localIndex(p)
	if !ok {
		return nil
	}
	return &c.tiles[idx]
}

// EachTile invokes fn for every tile in local scan order.
func (c *Chunk) EachTile(fn func(*Tile)) {
	for i := range c.tiles {
		fn(&c.tiles[i])
	}
}

// MarkModified records that a tile diverged from pure generation. Calls made
// while the chunk itself is still generating are ignored.
func (c *Chunk) MarkModified(p Point) {
	if !c.generated {
		return
	}
	if idx, ok := c.localIndex(p); ok {
		c.modified[idx] = struct{}{}
	}
}

// Modified reports whether any tile, flora or structure diverged from pure
// generation.
func (c *Chunk) Modified() bool {
	return len(c.modified) > 0
}

// addFlora registers a flora on its tile and in the chunk registry.
func (c *Chunk) addFlora(p Point, f *Flora) bool {
	idx, ok := c.localIndex(p)
	if !ok || f == nil {
		return false
	}
	c.tiles[idx].Flora = append(c.tiles[idx].Flora, f)
	c.flora[idx] = f
	c.MarkModified(p)
	return true
}

// removeFlora drops all flora from a tile.
func (c *Chunk) removeFlora(p Point) bool {
	idx, ok := c.localIndex(p)
	if !ok {
		return false
	}
	if len(c.tiles[idx].Flora) == 0 {
		return false
	}
	c.tiles[idx].Flora = nil
	delete(c.flora, idx)
	c.MarkModified(p)
	return true
}

// EachFlora invokes fn for every registered flora with its tile.
func (c *Chunk) EachFlora(fn func(*Tile, *Flora)) {
	for idx, f := range c.flora {
		fn(&c.tiles[idx], f)
	}
}

// place installs a structure into the matching tile slot. It refuses a second
// NPC or a second POI on the same tile.
func (c *Chunk) place(s Structure) bool {
	idx, ok := c.localIndex(s.Position())
	if !ok {
		return false
	}
	tile := &c.tiles[idx]
	switch v := s.(type) {
	case *Npc:
		if tile.npc != nil {
			return false
		}
		tile.npc = v
		c.npcs[idx] = v
	case *Poi:
		if tile.poi != nil {
			return false
		}
		tile.poi = v
		c.pois[idx] = v
	default:
		return false
	}
	c.MarkModified(s.Position())
	return true
}

// remove clears a structure from its tile slot.
func (c *Chunk) remove(s Structure) bool {
	idx, ok := c.localIndex(s.Position())
	if !ok {
		return false
	}
	tile := &c.tiles[idx]
	switch v := s.(type) {
	case *Npc:
		if tile.npc != v {
			return false
		}
		tile.npc = nil
		delete(c.npcs, idx)
	case *Poi:
		if tile.poi != v {
			return false
		}
		tile.poi = nil
		delete(c.pois, idx)
	default:
		return false
	}
	c.MarkModified(s.Position())
	return true
}

// EachNpc invokes fn for every NPC in the chunk.
func (c *Chunk) EachNpc(fn func(*Npc)) {
	for _, n := range c.npcs {
		fn(n)
	}
}

// EachPoi invokes fn for every POI in the chunk.
func (c *Chunk) EachPoi(fn func(*Poi)) {
	for _, p := range c.pois {
		fn(p)
	}
}
