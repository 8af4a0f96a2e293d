package world

import "github.com/google/uuid"

// Structure is a tile occupant: either a point of interest or an NPC, never
// both in one value. Callers pattern-match with a type switch.
type Structure interface {
	Position() Point
	structure()
}

// PoiKind tags the point-of-interest variants.
type PoiKind string

const (
	PoiLandmark        PoiKind = "landmark"
	PoiMarket          PoiKind = "market"
	PoiWell            PoiKind = "well"
	PoiHouse           PoiKind = "house"
	PoiNoticeBoard     PoiKind = "notice-board"
	PoiChest           PoiKind = "chest"
	PoiTombstone       PoiKind = "tombstone"
	PoiTorch           PoiKind = "torch"
	PoiPortal          PoiKind = "portal"
	PoiMineEntrance    PoiKind = "mine-entrance"
	PoiDungeonEntrance PoiKind = "dungeon-entrance"
)

// ItemStack is one inventory slot.
type ItemStack struct {
	Item  string
	Count int
}

// TombstoneSlots is the fixed capacity of a tombstone's item list.
const TombstoneSlots = 9

// PoiPayload is the closed set of typed per-kind payloads.
type PoiPayload interface {
	payload()
}

// ChestPayload holds the item list of chests and tombstones.
type ChestPayload struct {
	Slots []ItemStack
}

// NoticeBoardPayload carries the settlement notice text.
type NoticeBoardPayload struct {
	Settlement string
	Text       string
}

// PortalPayload records which entrance the portal belongs to.
type PortalPayload struct {
	Entrance Point
}

// EntrancePayload records which realm an entrance leads to.
type EntrancePayload struct {
	Realm RealmKind
}

func (ChestPayload) payload()       {}
func (NoticeBoardPayload) payload() {}
func (PortalPayload) payload()      {}
func (EntrancePayload) payload()    {}

// Poi is a placed point of interest.
type Poi struct {
	Kind         PoiKind
	Pos          Point
	Passable     bool
	Interactable bool
	Payload      PoiPayload
}

func (p *Poi) Position() Point { return p.Pos }
func (p *Poi) structure()      {}

// Chest returns the chest payload, substituting an empty one when the payload
// is missing or of another kind.
func (p *Poi) Chest() *ChestPayload {
	if c, ok := p.Payload.(*ChestPayload); ok && c != nil {
		return c
	}
	return &ChestPayload{}
}

// Empty reports whether a chest-like POI holds no items.
func (c *ChestPayload) Empty() bool {
	for _, s := range c.Slots {
		if s.Count > 0 {
			return false
		}
	}
	return true
}

// NewTombstone builds the ephemeral POI created at a death position. The slot
// list is clamped to the fixed capacity.
func NewTombstone(pos Point, items []ItemStack) *Poi {
	slots := make([]ItemStack, 0, TombstoneSlots)
	for _, s := range items {
		if len(slots) == TombstoneSlots {
			break
		}
		if s.Count > 0 {
			slots = append(slots, s)
		}
	}
	return &Poi{
		Kind:         PoiTombstone,
		Pos:          pos,
		Passable:     false,
		Interactable: true,
		Payload:      &ChestPayload{Slots: slots},
	}
}

// NpcCategory partitions NPCs by disposition.
type NpcCategory string

const (
	CategoryAnimal   NpcCategory = "animal"
	CategoryFriendly NpcCategory = "friendly"
	CategoryMonster  NpcCategory = "monster"
)

// Npc is a creature occupying a tile.
type Npc struct {
	ID        uuid.UUID
	Kind      string
	Category  NpcCategory
	Pos       Point
	Health    float64
	MaxHealth float64
	Inventory []ItemStack

	// Aggression state; only meaningful for monsters.
	Hostile         bool
	AttackingPlayer bool
}

func (n *Npc) Position() Point { return n.Pos }
func (n *Npc) structure()      {}

// Alive reports whether the NPC still occupies its tile.
func (n *Npc) Alive() bool {
	return n != nil && n.Health > 0
}

// NewNpc builds a creature with full health at the given position.
func NewNpc(kind string, category NpcCategory, pos Point, health float64) *Npc {
	return &Npc{
		ID:        uuid.New(),
		Kind:      kind,
		Category:  category,
		Pos:       pos,
		Health:    health,
		MaxHealth: health,
		Hostile:   category == CategoryMonster,
	}
}
