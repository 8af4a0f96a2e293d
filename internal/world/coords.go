package world

import "math"

// Point identifies a tile in global tile space.
type Point struct {
	X int
	Y int
}

// ChunkCoord identifies a chunk in global chunk space.
type ChunkCoord struct {
	X int
	Y int
}

// RealmKind names one of the three parallel world instances.
type RealmKind string

const (
	RealmOverworld RealmKind = "overworld"
	RealmDungeon   RealmKind = "dungeon"
	RealmMine      RealmKind = "mine"
)

// FloorDiv divides rounding toward negative infinity, so negative tile
// coordinates map to the correct chunk.
func FloorDiv(value, size int) int {
	if size <= 0 {
		return 0
	}
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}

// FloorMod returns the remainder of FloorDiv, always in [0, size).
func FloorMod(value, size int) int {
	if size <= 0 {
		return 0
	}
	m := value % size
	if m < 0 {
		m += size
	}
	return m
}

// ChunkOf locates the chunk containing a tile.
func ChunkOf(p Point, size int) ChunkCoord {
	return ChunkCoord{X: FloorDiv(p.X, size), Y: FloorDiv(p.Y, size)}
}

// Dist returns euclidean distance between two tiles.
func Dist(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// ChebyshevDist returns the board distance between two tiles.
func ChebyshevDist(a, b Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
