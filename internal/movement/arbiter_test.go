package movement

import (
	"testing"

	"sandgarden/internal/world"
)

type flatGen struct{}

func (flatGen) Populate(c *world.Chunk) {
	c.EachTile(func(t *world.Tile) { t.Class = world.ClassGrass })
}

// scriptedPolicy maps each NPC to a fixed destination.
type scriptedPolicy map[*world.Npc]world.Point

func (p scriptedPolicy) Desire(n *world.Npc, _ world.Point) (world.Point, bool) {
	dest, ok := p[n]
	return dest, ok
}

func newArena(t *testing.T) (*world.Store, *Arbiter) {
	t.Helper()
	store := world.NewStore(16, flatGen{})
	store.Tile(world.Point{X: 0, Y: 0})
	occ := world.NewOccupancy(store, world.RealmOverworld)
	return store, NewArbiter(store, occ)
}

func placeNpc(t *testing.T, store *world.Store, kind string, cat world.NpcCategory, pos world.Point) *world.Npc {
	t.Helper()
	n := world.NewNpc(kind, cat, pos, 10)
	if !store.Place(n) {
		t.Fatalf("failed to place %s at %v", kind, pos)
	}
	return n
}

func TestSimpleMoveCommits(t *testing.T) {
	store, arb := newArena(t)
	n := placeNpc(t, store, "rabbit", world.CategoryAnimal, world.Point{X: 2, Y: 2})
	dest := world.Point{X: 3, Y: 2}

	moved := arb.Tick([]*world.Npc{n}, scriptedPolicy{n: dest}, world.Point{X: 9, Y: 9})
	if moved != 1 {
		t.Fatalf("committed %d moves, want 1", moved)
	}
	if n.Pos != dest || store.NpcAt(dest) != n {
		t.Fatalf("NPC not at destination after commit")
	}
	if store.NpcAt(world.Point{X: 2, Y: 2}) != nil {
		t.Fatalf("old tile still occupied")
	}
}

func TestBlockedMoveRevertsSilently(t *testing.T) {
	store, arb := newArena(t)
	n := placeNpc(t, store, "rabbit", world.CategoryAnimal, world.Point{X: 2, Y: 2})
	store.SetClass(world.Point{X: 3, Y: 2}, world.ClassWater)

	moved := arb.Tick([]*world.Npc{n}, scriptedPolicy{n: {X: 3, Y: 2}}, world.Point{X: 9, Y: 9})
	if moved != 0 {
		t.Fatalf("committed %d moves into water, want 0", moved)
	}
	if n.Pos != (world.Point{X: 2, Y: 2}) {
		t.Fatalf("NPC position changed on a rejected move")
	}
}

func TestSwapResolvesBothMoves(t *testing.T) {
	store, arb := newArena(t)
	p := world.Point{X: 4, Y: 4}
	q := world.Point{X: 5, Y: 4}
	a := placeNpc(t, store, "rabbit", world.CategoryAnimal, p)
	b := placeNpc(t, store, "deer", world.CategoryAnimal, q)

	moved := arb.Tick([]*world.Npc{a, b}, scriptedPolicy{a: q, b: p}, world.Point{X: 9, Y: 9})
	if moved != 2 {
		t.Fatalf("swap committed %d moves, want 2", moved)
	}
	if a.Pos != q || b.Pos != p {
		t.Fatalf("swap left a=%v b=%v, want a=%v b=%v", a.Pos, b.Pos, q, p)
	}
	if store.NpcAt(q) != a || store.NpcAt(p) != b {
		t.Fatalf("store occupancy does not match swapped positions")
	}
}

func TestChainFollowsVacatingBlocker(t *testing.T) {
	store, arb := newArena(t)
	front := placeNpc(t, store, "deer", world.CategoryAnimal, world.Point{X: 6, Y: 6})
	back := placeNpc(t, store, "rabbit", world.CategoryAnimal, world.Point{X: 5, Y: 6})

	// back steps into the tile front is leaving this same tick.
	moved := arb.Tick([]*world.Npc{front, back}, scriptedPolicy{
		front: {X: 7, Y: 6},
		back:  {X: 6, Y: 6},
	}, world.Point{X: 9, Y: 9})
	if moved != 2 {
		t.Fatalf("chain committed %d moves, want 2", moved)
	}
	if back.Pos != (world.Point{X: 6, Y: 6}) || front.Pos != (world.Point{X: 7, Y: 6}) {
		t.Fatalf("chain positions wrong: front=%v back=%v", front.Pos, back.Pos)
	}
}

func TestChainStallsWhenHeadBlocked(t *testing.T) {
	store, arb := newArena(t)
	front := placeNpc(t, store, "deer", world.CategoryAnimal, world.Point{X: 6, Y: 6})
	back := placeNpc(t, store, "rabbit", world.CategoryAnimal, world.Point{X: 5, Y: 6})
	store.SetClass(world.Point{X: 7, Y: 6}, world.ClassWater)

	moved := arb.Tick([]*world.Npc{front, back}, scriptedPolicy{
		front: {X: 7, Y: 6},
		back:  {X: 6, Y: 6},
	}, world.Point{X: 9, Y: 9})
	if moved != 0 {
		t.Fatalf("stalled chain committed %d moves, want 0", moved)
	}
	if front.Pos != (world.Point{X: 6, Y: 6}) || back.Pos != (world.Point{X: 5, Y: 6}) {
		t.Fatalf("stalled chain moved: front=%v back=%v", front.Pos, back.Pos)
	}
}

func TestHostileNeverReachesPlayerTile(t *testing.T) {
	store, arb := newArena(t)
	player := world.Point{X: 8, Y: 8}
	hostile := placeNpc(t, store, "skeleton", world.CategoryMonster, world.Point{X: 7, Y: 8})

	moved := arb.Tick([]*world.Npc{hostile}, scriptedPolicy{hostile: player}, player)
	if moved != 0 {
		t.Fatalf("hostile committed %d moves onto the player tile", moved)
	}
	if hostile.Pos != (world.Point{X: 7, Y: 8}) {
		t.Fatalf("hostile position changed to %v", hostile.Pos)
	}
}

func TestHostileSwapOntoPlayerTileStillRejected(t *testing.T) {
	store, arb := newArena(t)
	player := world.Point{X: 8, Y: 8}
	hostile := placeNpc(t, store, "skeleton", world.CategoryMonster, world.Point{X: 7, Y: 8})
	other := placeNpc(t, store, "rabbit", world.CategoryAnimal, player)

	// Even a textbook swap must not carry a hostile onto the player.
	moved := arb.Tick([]*world.Npc{hostile, other}, scriptedPolicy{
		hostile: player,
		other:   {X: 7, Y: 8},
	}, player)
	if hostile.Pos == player {
		t.Fatalf("hostile ended on the player tile via swap")
	}
	_ = moved
}

func TestStationaryBlockerAtOriginNeighborStays(t *testing.T) {
	store, arb := newArena(t)
	mover := placeNpc(t, store, "rabbit", world.CategoryAnimal, world.Point{X: 0, Y: 0})
	blocker := placeNpc(t, store, "deer", world.CategoryAnimal, world.Point{X: 1, Y: 0})

	// The blocker records no intent. Its missing map entry must not read as
	// an intent to move to the zero tile, which would approve a phantom swap.
	moved := arb.Tick([]*world.Npc{mover, blocker}, scriptedPolicy{
		mover: {X: 1, Y: 0},
	}, world.Point{X: 9, Y: 9})
	if moved != 0 {
		t.Fatalf("committed %d moves against a stationary blocker, want 0", moved)
	}
	if blocker.Pos != (world.Point{X: 1, Y: 0}) {
		t.Fatalf("stationary blocker relocated to %v", blocker.Pos)
	}
	if mover.Pos != (world.Point{X: 0, Y: 0}) {
		t.Fatalf("mover advanced onto an occupied tile")
	}
	if store.NpcAt(world.Point{X: 1, Y: 0}) != blocker {
		t.Fatalf("blocker lost its tile record")
	}
}

func TestContestedDestinationWinnerIsOrderIndependent(t *testing.T) {
	dest := world.Point{X: 10, Y: 10}
	posA := world.Point{X: 9, Y: 10}
	posB := world.Point{X: 11, Y: 10}

	run := func(reversed bool) world.Point {
		store, arb := newArena(t)
		a := placeNpc(t, store, "rabbit", world.CategoryAnimal, posA)
		b := placeNpc(t, store, "deer", world.CategoryAnimal, posB)
		npcs := []*world.Npc{a, b}
		if reversed {
			npcs = []*world.Npc{b, a}
		}
		arb.Tick(npcs, scriptedPolicy{a: dest, b: dest}, world.Point{X: 0, Y: 0})
		winner := store.NpcAt(dest)
		if winner == nil {
			t.Fatalf("nobody claimed the contested tile")
		}
		if winner == a {
			return posA
		}
		return posB
	}

	first := run(false)
	second := run(true)
	if first != second {
		t.Fatalf("contested winner depends on input order: %v vs %v", first, second)
	}
}

func TestDestinationClaimedOncePerTick(t *testing.T) {
	store, arb := newArena(t)
	dest := world.Point{X: 10, Y: 10}
	a := placeNpc(t, store, "rabbit", world.CategoryAnimal, world.Point{X: 9, Y: 10})
	b := placeNpc(t, store, "deer", world.CategoryAnimal, world.Point{X: 11, Y: 10})

	arb.Tick([]*world.Npc{a, b}, scriptedPolicy{a: dest, b: dest}, world.Point{X: 0, Y: 0})
	occupantCount := 0
	if store.NpcAt(dest) != nil {
		occupantCount = 1
	}
	if occupantCount != 1 {
		t.Fatalf("contested destination ended with %d occupants", occupantCount)
	}
	if a.Pos == b.Pos {
		t.Fatalf("both movers ended on the same tile")
	}
}

func TestMoveIntoUngeneratedChunkIsNoop(t *testing.T) {
	store, arb := newArena(t)
	n := placeNpc(t, store, "rabbit", world.CategoryAnimal, world.Point{X: 15, Y: 0})

	moved := arb.Tick([]*world.Npc{n}, scriptedPolicy{n: {X: 16, Y: 0}}, world.Point{X: 0, Y: 0})
	if moved != 0 {
		t.Fatalf("move into ungenerated chunk committed")
	}
	if store.LoadedChunks() != 1 {
		t.Fatalf("movement generated a chunk")
	}
}
