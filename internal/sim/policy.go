package sim

import (
	"sandgarden/internal/config"
	"sandgarden/internal/noise"
	"sandgarden/internal/world"
)

// wanderPolicy is the stock movement policy: monsters close on the player
// inside their aggro range, everything else drifts randomly. All draws come
// from a tick-keyed tile RNG so a tick replays identically for a given seed.
type wanderPolicy struct {
	cfg  config.EntityConfig
	seed int64
	tick uint64
}

func (p *wanderPolicy) Desire(n *world.Npc, playerPos world.Point) (world.Point, bool) {
	if n.Category == world.CategoryMonster &&
		world.ChebyshevDist(n.Pos, playerPos) <= p.cfg.AggroRange {
		return p.chase(n, playerPos)
	}
	return p.wander(n)
}

// chase steps one tile along the dominant axis toward the player.
func (p *wanderPolicy) chase(n *world.Npc, playerPos world.Point) (world.Point, bool) {
	dx := playerPos.X - n.Pos.X
	dy := playerPos.Y - n.Pos.Y
	if dx == 0 && dy == 0 {
		return world.Point{}, false
	}
	step := n.Pos
	if abs(dx) >= abs(dy) {
		step.X += sign(dx)
	} else {
		step.Y += sign(dy)
	}
	return step, true
}

// wander picks one of the four directions or stays put, with a bias toward
// staying so herds do not churn every tick.
func (p *wanderPolicy) wander(n *world.Npc) (world.Point, bool) {
	rng := noise.NewTileRNG(p.seed^int64(p.tick), n.Pos.X, n.Pos.Y, 0x3a0d)
	if rng.Chance(0.6) {
		return world.Point{}, false
	}
	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	d := dirs[rng.Intn(4)]
	return world.Point{X: n.Pos.X + d[0], Y: n.Pos.Y + d[1]}, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
