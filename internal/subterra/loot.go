package subterra

import (
	"sandgarden/internal/noise"
	"sandgarden/internal/world"
)

var chestLootTable = []struct {
	item string
	max  int
}{
	{"gold-coin", 12},
	{"iron-ingot", 4},
	{"torch", 3},
	{"healing-draught", 2},
}

// chestPoi rolls a chest with deterministic loot for its tile.
func chestPoi(seed int64, pos world.Point) *world.Poi {
	rng := noise.NewTileRNG(seed, pos.X, pos.Y, 0xc4e5)
	var slots []world.ItemStack
	for _, entry := range chestLootTable {
		if !rng.Chance(0.5) {
			continue
		}
		slots = append(slots, world.ItemStack{
			Item:  entry.item,
			Count: 1 + rng.Intn(entry.max),
		})
	}
	if len(slots) == 0 {
		slots = []world.ItemStack{{Item: "gold-coin", Count: 1}}
	}
	return &world.Poi{
		Kind:         world.PoiChest,
		Pos:          pos,
		Interactable: true,
		Payload:      &world.ChestPayload{Slots: slots},
	}
}
