package world

import "sort"

// Generator populates a freshly created chunk with terrain and structures.
type Generator interface {
	Populate(c *Chunk)
}

// Store keeps the authoritative chunk state for one realm. Chunks materialize
// on first reference to any coordinate inside them, generating every tile of
// the chunk eagerly; re-access is O(1).
type Store struct {
	size   int
	gen    Generator
	chunks map[ChunkCoord]*Chunk

	// AfterGenerate runs once a chunk's full generation pass has completed,
	// after the chunk is registered. Deferred lighting flushes hook in here.
	AfterGenerate func(*Chunk)

	epoch uint64
}

// NewStore builds an empty store for the given chunk size.
func NewStore(size int, gen Generator) *Store {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Store{
		size:   size,
		gen:    gen,
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// ChunkSize returns the side length of chunks in this store.
func (s *Store) ChunkSize() int { return s.size }

// Epoch increases whenever occupancy changes; render-facing tile caches key
// off it.
func (s *Store) Epoch() uint64 { return s.epoch }

func (s *Store) bumpEpoch() { s.epoch++ }

// Chunk returns the chunk at the given coordinate, generating it on first
// access.
func (s *Store) Chunk(coord ChunkCoord) *Chunk {
	if c, ok := s.chunks[coord]; ok {
		return c
	}
	c := newChunk(coord, s.size)
	// Register before populating so generation-time placements resolve
	// coordinates inside the chunk being built.
	s.chunks[coord] = c
	if s.gen != nil {
		s.gen.Populate(c)
	}
	c.generated = true
	if s.AfterGenerate != nil {
		s.AfterGenerate(c)
	}
	return c
}

// ChunkIfLoaded returns the chunk only when it already exists; it never
// triggers generation.
func (s *Store) ChunkIfLoaded(coord ChunkCoord) *Chunk {
	return s.chunks[coord]
}

// LoadedChunks returns how many chunks have been materialized.
func (s *Store) LoadedChunks() int { return len(s.chunks) }

// Evict drops a chunk so the next access regenerates it. Exposed for
// regeneration determinism checks; the simulation itself never evicts.
func (s *Store) Evict(coord ChunkCoord) {
	delete(s.chunks, coord)
}

// Tile returns the tile at a global coordinate, generating its chunk when
// needed.
func (s *Store) Tile(p Point) *Tile {
	return s.Chunk(ChunkOf(p, s.size)).TileAt(p)
}

// TileIfLoaded returns the tile only when its chunk already exists.
func (s *Store) TileIfLoaded(p Point) *Tile {
	c := s.ChunkIfLoaded(ChunkOf(p, s.size))
	if c == nil {
		return nil
	}
	return c.TileAt(p)
}

// SetClass flips a tile's terrain class in place, tracking the mutation.
func (s *Store) SetClass(p Point, class TerrainClass) bool {
	c := s.ChunkIfLoaded(ChunkOf(p, s.size))
	if c == nil {
		return false
	}
	t := c.TileAt(p)
	if t == nil {
		return false
	}
	t.Class = class
	c.MarkModified(p)
	s.bumpEpoch()
	return true
}

// Place installs a structure on its tile, honoring the one-NPC-one-POI
// occupancy invariant. The target chunk is generated when needed.
func (s *Store) Place(st Structure) bool {
	c := s.Chunk(ChunkOf(st.Position(), s.size))
	if !c.place(st) {
		return false
	}
	s.bumpEpoch()
	return true
}

// Remove detaches a structure from its tile.
func (s *Store) Remove(st Structure) bool {
	c := s.ChunkIfLoaded(ChunkOf(st.Position(), s.size))
	if c == nil {
		return false
	}
	if !c.remove(st) {
		return false
	}
	s.bumpEpoch()
	return true
}

// MoveNpc relocates an NPC, possibly across a chunk boundary. The move fails
// when the destination slot is already occupied; the NPC keeps its old tile.
func (s *Store) MoveNpc(n *Npc, to Point) bool {
	if n == nil || n.Pos == to {
		return false
	}
	from := n.Pos
	fromChunk := s.ChunkIfLoaded(ChunkOf(from, s.size))
	toChunk := s.ChunkIfLoaded(ChunkOf(to, s.size))
	if fromChunk == nil || toChunk == nil {
		return false
	}
	target := toChunk.TileAt(to)
	if target == nil || target.npc != nil {
		return false
	}
	if !fromChunk.remove(n) {
		return false
	}
	n.Pos = to
	if !toChunk.place(n) {
		// Restore; the target slot was checked above, so this only trips if
		// a caller raced its own bookkeeping.
		n.Pos = from
		fromChunk.place(n)
		return false
	}
	s.bumpEpoch()
	return true
}

// AddFlora plants a flora on an already-generated tile.
func (s *Store) AddFlora(p Point, f *Flora) bool {
	c := s.ChunkIfLoaded(ChunkOf(p, s.size))
	if c == nil {
		return false
	}
	if !c.addFlora(p, f) {
		return false
	}
	s.bumpEpoch()
	return true
}

// RemoveFlora clears a tile's flora.
func (s *Store) RemoveFlora(p Point) bool {
	c := s.ChunkIfLoaded(ChunkOf(p, s.size))
	if c == nil {
		return false
	}
	if !c.removeFlora(p) {
		return false
	}
	s.bumpEpoch()
	return true
}

// NpcAt returns the living NPC on a generated tile, if any.
func (s *Store) NpcAt(p Point) *Npc {
	t := s.TileIfLoaded(p)
	if t == nil {
		return nil
	}
	return t.npc
}

// PoiAt returns the POI on a generated tile, if any.
func (s *Store) PoiAt(p Point) *Poi {
	t := s.TileIfLoaded(p)
	if t == nil {
		return nil
	}
	return t.poi
}

// StructureAt returns the tile's occupant, preferring the NPC when both
// slots are filled.
func (s *Store) StructureAt(p Point) Structure {
	t := s.TileIfLoaded(p)
	if t == nil {
		return nil
	}
	if t.npc != nil {
		return t.npc
	}
	if t.poi != nil {
		return t.poi
	}
	return nil
}

// NpcsWithin collects NPCs within a chebyshev radius of center, walking only
// chunks that are already loaded. The result is in position order; chunk
// registries are maps, and callers that act on the list in sequence must not
// inherit map iteration order.
func (s *Store) NpcsWithin(center Point, radius int) []*Npc {
	if radius < 0 {
		return nil
	}
	minC := ChunkOf(Point{X: center.X - radius, Y: center.Y - radius}, s.size)
	maxC := ChunkOf(Point{X: center.X + radius, Y: center.Y + radius}, s.size)
	var out []*Npc
	for cy := minC.Y; cy <= maxC.Y; cy++ {
		for cx := minC.X; cx <= maxC.X; cx++ {
			c := s.ChunkIfLoaded(ChunkCoord{X: cx, Y: cy})
			if c == nil {
				continue
			}
			c.EachNpc(func(n *Npc) {
				if ChebyshevDist(n.Pos, center) <= radius {
					out = append(out, n)
				}
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos.Y != out[j].Pos.Y {
			return out[i].Pos.Y < out[j].Pos.Y
		}
		return out[i].Pos.X < out[j].Pos.X
	})
	return out
}

// HasModifications reports whether any loaded chunk diverged from pure
// generation.
func (s *Store) HasModifications() bool {
	for _, c := range s.chunks {
		if c.Modified() {
			return true
		}
	}
	return false
}
