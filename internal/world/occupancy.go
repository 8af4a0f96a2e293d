package world

// ImpassableFor returns the terrain classes a walker can never stand on in
// the given realm.
func ImpassableFor(realm RealmKind) map[TerrainClass]bool {
	switch realm {
	case RealmDungeon:
		return map[TerrainClass]bool{
			ClassStone: true,
			ClassVoid:  true,
		}
	case RealmMine:
		return map[TerrainClass]bool{
			ClassStone:       true,
			ClassWoodSupport: true,
		}
	default:
		return map[TerrainClass]bool{
			ClassDeepWater:   true,
			ClassWater:       true,
			ClassStone:       true,
			ClassCobblestone: true,
			ClassSnow:        true,
		}
	}
}

// Occupancy answers walkability questions against one realm's store.
type Occupancy struct {
	Store      *Store
	Impassable map[TerrainClass]bool
}

// NewOccupancy binds a realm's blocking rules to its store.
func NewOccupancy(store *Store, realm RealmKind) *Occupancy {
	return &Occupancy{Store: store, Impassable: ImpassableFor(realm)}
}

// CanEnter reports whether mover may step onto p. playerPos is the tile the
// player currently occupies; it counts as occupied for every mover even
// though the player has no structure record. Occupants listed in exclude are
// ignored, which lets the arbiter test swaps where the blocker is about to
// vacate.
//
// An unloaded tile blocks. Movement never triggers generation; the ungenerated
// frontier behaves as a wall until something else materializes it.
func (o *Occupancy) CanEnter(p Point, mover *Npc, playerPos Point, exclude ...*Npc) bool {
	t := o.Store.TileIfLoaded(p)
	if t == nil {
		return false
	}
	if o.Impassable[t.Class] {
		return false
	}
	if t.LivingFlora() != nil {
		return false
	}
	if t.poi != nil && !t.poi.Passable {
		return false
	}
	if occ := t.npc; occ != nil && occ != mover && occ.Alive() && !excluded(occ, exclude) {
		return false
	}
	if p == playerPos {
		return false
	}
	return true
}

func excluded(n *Npc, exclude []*Npc) bool {
	for _, e := range exclude {
		if e == n {
			return true
		}
	}
	return false
}
