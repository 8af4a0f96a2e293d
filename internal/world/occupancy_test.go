package world

import "testing"

func newGrassWorld(t *testing.T) (*Store, *Occupancy) {
	t.Helper()
	s := NewStore(16, flatGen{class: ClassGrass})
	s.Tile(Point{X: 0, Y: 0})
	return s, NewOccupancy(s, RealmOverworld)
}

func TestOccupancyImpassableTerrain(t *testing.T) {
	s, occ := newGrassWorld(t)
	pos := Point{X: 3, Y: 3}
	for _, class := range []TerrainClass{ClassDeepWater, ClassWater, ClassStone, ClassCobblestone, ClassSnow} {
		s.SetClass(pos, class)
		if occ.CanEnter(pos, nil, Point{X: 99, Y: 99}) {
			t.Fatalf("%s should block overworld movement", class)
		}
	}
	s.SetClass(pos, ClassGrass)
	if !occ.CanEnter(pos, nil, Point{X: 99, Y: 99}) {
		t.Fatalf("grass should be enterable")
	}
}

func TestOccupancyRealmSetsDiffer(t *testing.T) {
	if !ImpassableFor(RealmDungeon)[ClassVoid] {
		t.Fatalf("dungeon must block void")
	}
	if ImpassableFor(RealmDungeon)[ClassCobblestone] {
		t.Fatalf("dungeon floor must be walkable")
	}
	if !ImpassableFor(RealmMine)[ClassWoodSupport] {
		t.Fatalf("mine must block wood supports")
	}
	if ImpassableFor(RealmOverworld)[ClassWoodSupport] {
		t.Fatalf("wood supports only exist underground")
	}
}

func TestOccupancyUnloadedTileBlocks(t *testing.T) {
	_, occ := newGrassWorld(t)
	if occ.CanEnter(Point{X: 500, Y: 500}, nil, Point{}) {
		t.Fatalf("ungenerated tile must be treated as blocked")
	}
}

func TestOccupancyLivingFloraBlocks(t *testing.T) {
	s, occ := newGrassWorld(t)
	pos := Point{X: 5, Y: 5}
	s.AddFlora(pos, &Flora{Kind: FloraTree, Health: 10, MaxHealth: 10})
	if occ.CanEnter(pos, nil, Point{}) {
		t.Fatalf("living flora should block")
	}
	s.TileIfLoaded(pos).Flora[0].Health = 0
	if !occ.CanEnter(pos, nil, Point{}) {
		t.Fatalf("dead flora should not block")
	}
}

func TestOccupancyNpcAndExclusion(t *testing.T) {
	s, occ := newGrassWorld(t)
	pos := Point{X: 6, Y: 6}
	blocker := NewNpc("rabbit", CategoryAnimal, pos, 8)
	s.Place(blocker)

	mover := NewNpc("deer", CategoryAnimal, Point{X: 7, Y: 6}, 8)
	if occ.CanEnter(pos, mover, Point{}) {
		t.Fatalf("living NPC should block another mover")
	}
	if !occ.CanEnter(pos, blocker, Point{}) {
		t.Fatalf("an NPC must not block itself")
	}
	if !occ.CanEnter(pos, mover, Point{}, blocker) {
		t.Fatalf("excluded blocker should not block")
	}
	blocker.Health = 0
	if !occ.CanEnter(pos, mover, Point{}) {
		t.Fatalf("dead NPC should not block")
	}
}

func TestOccupancyImpassablePoi(t *testing.T) {
	s, occ := newGrassWorld(t)
	pos := Point{X: 8, Y: 8}
	s.Place(&Poi{Kind: PoiHouse, Pos: pos})
	if occ.CanEnter(pos, nil, Point{}) {
		t.Fatalf("blocking POI should block")
	}
	s.Remove(s.PoiAt(pos))
	s.Place(&Poi{Kind: PoiTorch, Pos: pos, Passable: true})
	if !occ.CanEnter(pos, nil, Point{}) {
		t.Fatalf("passable POI should not block")
	}
}

func TestOccupancyPlayerTileBlocksEveryMover(t *testing.T) {
	_, occ := newGrassWorld(t)
	player := Point{X: 9, Y: 9}
	hostile := NewNpc("skeleton", CategoryMonster, Point{X: 10, Y: 9}, 25)
	if occ.CanEnter(player, hostile, player) {
		t.Fatalf("hostile NPC may never enter the player tile")
	}
	friendly := NewNpc("rabbit", CategoryAnimal, Point{X: 10, Y: 9}, 8)
	if occ.CanEnter(player, friendly, player) {
		t.Fatalf("player tile counts as occupied for non-hostile movers too")
	}
	// The tile itself is free once the player is elsewhere.
	if !occ.CanEnter(player, friendly, Point{X: 0, Y: 0}) {
		t.Fatalf("vacated player tile should be enterable")
	}
}
