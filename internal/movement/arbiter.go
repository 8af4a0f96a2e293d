// Package movement resolves per-tick entity movement with a two-phase
// intent/commit protocol so same-tick interactions (swaps, chases) are
// deterministic and order-independent.
package movement

import (
	"sort"

	"sandgarden/internal/world"
)

// Policy computes an entity's desired destination for the current tick. It
// must not mutate shared state; the arbiter alone commits movement.
type Policy interface {
	Desire(n *world.Npc, playerPos world.Point) (world.Point, bool)
}

// Arbiter owns the per-tick intents table. Phase 1 records every desired
// move without touching the world; phase 2 approves and commits moves
// together, so two adjacent entities exchanging tiles both succeed instead
// of blocking each other forever.
type Arbiter struct {
	store *world.Store
	occ   *world.Occupancy

	intents map[*world.Npc]world.Point
	byDest  map[world.Point]*world.Npc
}

// NewArbiter binds an arbiter to one realm's store and occupancy rules.
func NewArbiter(store *world.Store, occ *world.Occupancy) *Arbiter {
	return &Arbiter{
		store:   store,
		occ:     occ,
		intents: make(map[*world.Npc]world.Point),
		byDest:  make(map[world.Point]*world.Npc),
	}
}

// Tick runs both phases for the given entities and returns how many moves
// committed. The intents table is discarded at the end of the tick.
func (a *Arbiter) Tick(npcs []*world.Npc, policy Policy, playerPos world.Point) int {
	a.collect(npcs, policy, playerPos)
	n := a.commit(playerPos)
	clear(a.intents)
	clear(a.byDest)
	return n
}

// collect is phase 1: record intents, first claim per destination wins.
// Entities whose desired tile was already claimed simply stay put this tick.
// The list is put in position order first, so a contested destination always
// resolves the same way no matter how the caller gathered the entities.
func (a *Arbiter) collect(npcs []*world.Npc, policy Policy, playerPos world.Point) {
	sort.Slice(npcs, func(i, j int) bool {
		if npcs[i].Pos.Y != npcs[j].Pos.Y {
			return npcs[i].Pos.Y < npcs[j].Pos.Y
		}
		return npcs[i].Pos.X < npcs[j].Pos.X
	})
	for _, n := range npcs {
		if !n.Alive() {
			continue
		}
		dest, ok := policy.Desire(n, playerPos)
		if !ok || dest == n.Pos {
			continue
		}
		if _, taken := a.byDest[dest]; taken {
			continue
		}
		a.intents[n] = dest
		a.byDest[dest] = n
	}
}

// commit is phase 2. Moves are approved before anything mutates: a move is
// approved outright when its destination is enterable, or speculatively when
// the only blocker is an entity already approved to vacate. Mutual swaps are
// approved as a pair. A hostile entity is never approved onto the player's
// tile. Approved movers are then detached and re-attached together, which
// makes tile exchange possible without an intermediate double-occupied state.
func (a *Arbiter) commit(playerPos world.Point) int {
	approved := make(map[*world.Npc]bool)

	for changed := true; changed; {
		changed = false
		for n, dest := range a.intents {
			if approved[n] || !a.allowed(n, dest, playerPos) {
				continue
			}
			blocker := a.blockingNpc(n, dest)
			if blocker == nil || approved[blocker] {
				// Free tile, or the blocker is already leaving it.
				approved[n] = true
				changed = true
				continue
			}
			// Mutual swap: approve the pair together. The blocker must have
			// actually recorded an intent; a missing entry must not match a
			// mover departing the zero tile.
			if bdest, ok := a.intents[blocker]; ok && bdest == n.Pos && a.allowed(blocker, bdest, playerPos) {
				approved[n] = true
				approved[blocker] = true
				changed = true
			}
		}
	}

	if len(approved) == 0 {
		return 0
	}
	committed := 0
	for n := range approved {
		a.store.Remove(n)
	}
	for n := range approved {
		n.Pos = a.intents[n]
		if a.store.Place(n) {
			committed++
		}
	}
	return committed
}

// allowed checks everything about a destination except a living NPC
// occupant, which commit reasons about separately.
func (a *Arbiter) allowed(n *world.Npc, dest world.Point, playerPos world.Point) bool {
	if n.Hostile && dest == playerPos {
		return false
	}
	blocker := a.blockingNpc(n, dest)
	return a.occ.CanEnter(dest, n, playerPos, blocker)
}

// blockingNpc returns the living NPC standing on dest, other than the mover.
func (a *Arbiter) blockingNpc(n *world.Npc, dest world.Point) *world.Npc {
	occ := a.store.NpcAt(dest)
	if occ == nil || occ == n || !occ.Alive() {
		return nil
	}
	return occ
}
