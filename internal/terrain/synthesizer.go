// Package terrain turns world coordinates into classified tiles and
// decorates freshly generated chunks with settlements, wildlife, and
// subterranean entrances.
package terrain

import (
	"math"

	"sandgarden/internal/config"
	"sandgarden/internal/noise"
	"sandgarden/internal/world"
)

// Per-tile RNG salts keep independent decisions decorrelated.
const (
	saltFlora uint64 = 0xf10a
	saltStage uint64 = 0x57a6
)

// Synthesizer classifies terrain. Every output is a pure function of the
// world seed and the tile coordinate.
type Synthesizer struct {
	field *noise.Field
	cfg   config.TerrainConfig
}

// NewSynthesizer builds a synthesizer over a seeded noise field.
func NewSynthesizer(field *noise.Field, cfg config.TerrainConfig) *Synthesizer {
	return &Synthesizer{field: field, cfg: cfg}
}

func (s *Synthesizer) heightAt(x, y int) float64 {
	return s.field.Height(x, y, s.cfg.HeightFrequency, s.cfg.Octaves, s.cfg.HeightContrast)
}

// riverAt combines the ridged river channel with the meander channel and an
// attenuation term that peaks near lowland height so rivers hug valleys.
func (s *Synthesizer) riverAt(x, y int, height float64) float64 {
	base := s.field.River(x, y, s.cfg.RiverFrequency)
	path := s.field.RiverPath(x, y, s.cfg.RiverPathFrequency) * s.cfg.RiverPathScale
	atten := 1 - math.Abs(height-s.cfg.RiverPeakHeight)/0.5
	if atten < 0 {
		atten = 0
	}
	v := (base + path) / (1 + s.cfg.RiverPathScale) * atten
	if v > 1 {
		v = 1
	}
	return v
}

// flowAngleAt points toward the lowest of the eight neighboring tiles.
func (s *Synthesizer) flowAngleAt(x, y int) float64 {
	lowest := math.Inf(1)
	var angle float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			h := s.heightAt(x+dx, y+dy)
			if h < lowest {
				lowest = h
				angle = math.Atan2(float64(dy), float64(dx))
			}
		}
	}
	return angle
}

// classify is the fixed-order climate decision tree. The ordering matters:
// rivers take precedence over open water, water over every biome, and each
// temperature band tests height before humidity.
func (s *Synthesizer) classify(height, temperature, humidity, river float64) world.TerrainClass {
	if river > s.cfg.RiverThreshold && height >= 0.2 && height <= 0.8 {
		return world.ClassWater
	}
	if height < 0.2 {
		return world.ClassDeepWater
	}
	if height < 0.35 {
		return world.ClassWater
	}
	switch {
	case temperature < 0.3:
		if height > 0.75 {
			return world.ClassSnow
		}
		if height > 0.6 {
			return world.ClassStone
		}
		if humidity > 0.6 {
			return world.ClassForest
		}
		return world.ClassGrass
	case temperature > 0.7:
		if height > 0.75 {
			return world.ClassStone
		}
		if humidity > 0.65 {
			return world.ClassGrass
		}
		return world.ClassSand
	default:
		if height > 0.75 {
			return world.ClassStone
		}
		if humidity > 0.7 {
			return world.ClassForest
		}
		return world.ClassGrass
	}
}

// Synthesize fills in a tile's terrain fields. The tile's Pos must already be
// set by its owning chunk.
func (s *Synthesizer) Synthesize(t *world.Tile) {
	x, y := t.Pos.X, t.Pos.Y
	t.Height = s.heightAt(x, y)
	t.Temperature = s.field.Temperature(x, y, s.cfg.ClimateFrequency, s.cfg.Octaves)
	t.Humidity = s.field.Humidity(x, y, s.cfg.ClimateFrequency, s.cfg.Octaves)
	t.River = s.riverAt(x, y, t.Height)
	t.FlowAngle = s.flowAngleAt(x, y)
	t.Class = s.classify(t.Height, t.Temperature, t.Humidity, t.River)
}

// SeedFlora rolls the per-tile flora draw. At most one flora is produced per
// tile, centered, with a weighted-random initial growth stage.
func (s *Synthesizer) SeedFlora(t *world.Tile) *world.Flora {
	var chance float64
	kind := world.FloraTree
	switch t.Class {
	case world.ClassForest:
		chance = s.cfg.ForestTreeChance
	case world.ClassGrass:
		chance = s.cfg.SparseFloraChance
	case world.ClassSand:
		chance = s.cfg.SparseFloraChance
		kind = world.FloraCactus
	default:
		return nil
	}
	rng := noise.NewTileRNG(s.field.Seed(), t.Pos.X, t.Pos.Y, saltFlora)
	if !rng.Chance(chance) {
		return nil
	}
	stage := rollStage(noise.NewTileRNG(s.field.Seed(), t.Pos.X, t.Pos.Y, saltStage))
	maxHealth := 20.0
	if kind == world.FloraTree {
		maxHealth = 40
	}
	return &world.Flora{
		Kind:      kind,
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Stage:     stage,
	}
}

// rollStage favors mature flora so freshly explored land does not look newly
// planted.
func rollStage(rng *noise.TileRNG) int {
	v := rng.Float64()
	switch {
	case v < 0.15:
		return 0
	case v < 0.35:
		return 1
	case v < 0.6:
		return 2
	default:
		return world.FloraStages - 1
	}
}
