package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a YAML-friendly wrapper around time.Duration that accepts human
// readable strings such as "150ms" in configuration files while still
// allowing numeric nanosecond values when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalYAML encodes the duration using the canonical string representation.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var s string
	if err := value.Decode(&s); err == nil {
		if s == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration: parse %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	return fmt.Errorf("duration: invalid value %q", value.Value)
}

// Config captures the tunable parameters needed to bootstrap the world core.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Structures StructureConfig  `yaml:"structures"`
	Dungeon    DungeonConfig    `yaml:"dungeon"`
	Mine       MineConfig       `yaml:"mine"`
	Lighting   LightingConfig   `yaml:"lighting"`
	Entities   EntityConfig     `yaml:"entities"`
}

type WorldConfig struct {
	Seed         string   `yaml:"seed"`
	ChunkSize    int      `yaml:"chunkSize"`
	UpdateRadius int      `yaml:"updateRadius"` // tiles around the player that tick
	TickRate     Duration `yaml:"tickRate"`
}

type TerrainConfig struct {
	HeightFrequency      float64 `yaml:"heightFrequency"`
	ClimateFrequency     float64 `yaml:"climateFrequency"`
	RiverFrequency       float64 `yaml:"riverFrequency"`
	RiverPathFrequency   float64 `yaml:"riverPathFrequency"`
	RiverPathScale       float64 `yaml:"riverPathScale"`
	RiverThreshold       float64 `yaml:"riverThreshold"`
	RiverPeakHeight      float64 `yaml:"riverPeakHeight"` // attenuation peaks near this height
	Octaves              int     `yaml:"octaves"`
	HeightContrast       float64 `yaml:"heightContrast"` // pow() exponent applied to height
	ForestTreeChance     float64 `yaml:"forestTreeChance"`
	SparseFloraChance    float64 `yaml:"sparseFloraChance"` // grass and sand tiles
}

type StructureConfig struct {
	SettlementThreshold float64 `yaml:"settlementThreshold"`
	SettlementFrequency float64 `yaml:"settlementFrequency"`
	SettlementCellSize  int     `yaml:"settlementCellSize"` // at most one settlement per cell
	EntranceThreshold   float64 `yaml:"entranceThreshold"`
	EntranceChance      float64 `yaml:"entranceChance"`
	EntranceSpacing     int     `yaml:"entranceSpacing"` // tiles between mine/dungeon entrances
	WildlifeChance      float64 `yaml:"wildlifeChance"`
}

type DungeonConfig struct {
	CarveRange        int     `yaml:"carveRange"` // tunnels never reach past this distance
	CorridorWidth     float64 `yaml:"corridorWidth"`
	BranchWidth       float64 `yaml:"branchWidth"`
	BranchRange       int     `yaml:"branchRange"`
	RoomThreshold     float64 `yaml:"roomThreshold"`
	ConnectorWidth    float64 `yaml:"connectorWidth"`
	PortalMinDistance int     `yaml:"portalMinDistance"`
	EntranceClearance int     `yaml:"entranceClearance"` // no spawns this close to the entrance
	SpawnSpacing      int     `yaml:"spawnSpacing"`      // same-category minimum spacing
	MonsterBand       float64 `yaml:"monsterBand"`       // entity-noise magnitude floor for monsters
	ChestBand         float64 `yaml:"chestBand"`
}

type MineConfig struct {
	ShaftHalfWidth    int     `yaml:"shaftHalfWidth"`
	LevelInterval     int     `yaml:"levelInterval"` // vertical distance between horizontal levels
	LevelCount        int     `yaml:"levelCount"`
	LevelReach        int     `yaml:"levelReach"` // how far each level runs from the shaft
	LevelChance       float64 `yaml:"levelChance"`
	BranchLength      int     `yaml:"branchLength"` // end-branches hanging off level ends
	SupportChance     float64 `yaml:"supportChance"`
	SupportSpacing    int     `yaml:"supportSpacing"`
	EntranceClearance int     `yaml:"entranceClearance"`
	SpawnSpacing      int     `yaml:"spawnSpacing"`
	BanditBand        float64 `yaml:"banditBand"`
	ChestBand         float64 `yaml:"chestBand"`
	TorchBand         float64 `yaml:"torchBand"`
}

type LightingConfig struct {
	DayLength         Duration `yaml:"dayLength"`
	NightMinimum      float64  `yaml:"nightMinimum"`
	MineAmbient       float64  `yaml:"mineAmbient"`
	TorchIntensity    float64  `yaml:"torchIntensity"`
	TorchRadius       float64  `yaml:"torchRadius"`
	PortalIntensity   float64  `yaml:"portalIntensity"`
	PortalRadius      float64  `yaml:"portalRadius"`
	MonsterLightCap   float64  `yaml:"monsterLightCap"`   // spawning disallowed above this brightness
	SpawnNoiseFloor   float64  `yaml:"spawnNoiseFloor"`   // and requires at least this noise magnitude
}

type EntityConfig struct {
	MoveCadence    int      `yaml:"moveCadence"` // NPCs step once every N ticks
	AggroRange     int      `yaml:"aggroRange"`
	DirtRegrowth   Duration `yaml:"dirtRegrowth"` // dirt turns back to grass after this long
	GrowthInterval Duration `yaml:"growthInterval"`
	BreedInterval  Duration `yaml:"breedInterval"`
	BreedChance    float64  `yaml:"breedChance"`
	BreedCap       int      `yaml:"breedCap"` // max animals near the player before breeding stops
}

// Load reads configuration from a YAML file if provided. An empty path
// returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		World: WorldConfig{
			Seed:         "sandgarden",
			ChunkSize:    16,
			UpdateRadius: 24,
			TickRate:     Duration(100 * time.Millisecond),
		},
		Terrain: TerrainConfig{
			HeightFrequency:    0.012,
			ClimateFrequency:   0.007,
			RiverFrequency:     0.02,
			RiverPathFrequency: 0.11,
			RiverPathScale:     0.25,
			RiverThreshold:     0.82,
			RiverPeakHeight:    0.3,
			Octaves:            4,
			HeightContrast:     1.2,
			ForestTreeChance:   1.0,
			SparseFloraChance:  0.05,
		},
		Structures: StructureConfig{
			SettlementThreshold: 0.93,
			SettlementFrequency: 0.05,
			SettlementCellSize:  20,
			EntranceThreshold:   0.96,
			EntranceChance:      0.35,
			EntranceSpacing:     48,
			WildlifeChance:      0.01,
		},
		Dungeon: DungeonConfig{
			CarveRange:        120,
			CorridorWidth:     0.09,
			BranchWidth:       0.05,
			BranchRange:       80,
			RoomThreshold:     0.62,
			ConnectorWidth:    0.035,
			PortalMinDistance: 45,
			EntranceClearance: 10,
			SpawnSpacing:      6,
			MonsterBand:       0.55,
			ChestBand:         0.78,
		},
		Mine: MineConfig{
			ShaftHalfWidth:    1,
			LevelInterval:     12,
			LevelCount:        5,
			LevelReach:        40,
			LevelChance:       0.8,
			BranchLength:      6,
			SupportChance:     0.12,
			SupportSpacing:    5,
			EntranceClearance: 8,
			SpawnSpacing:      7,
			BanditBand:        0.6,
			ChestBand:         0.8,
			TorchBand:         0.45,
		},
		Lighting: LightingConfig{
			DayLength:       Duration(20 * time.Minute),
			NightMinimum:    0.15,
			MineAmbient:     0.5,
			TorchIntensity:  0.8,
			TorchRadius:     6,
			PortalIntensity: 1.0,
			PortalRadius:    8,
			MonsterLightCap: 0.6,
			SpawnNoiseFloor: 0.55,
		},
		Entities: EntityConfig{
			MoveCadence:    5,
			AggroRange:     8,
			DirtRegrowth:   Duration(90 * time.Second),
			GrowthInterval: Duration(30 * time.Second),
			BreedInterval:  Duration(60 * time.Second),
			BreedChance:    0.2,
			BreedCap:       8,
		},
	}
}

func (c *Config) Validate() error {
	if c.World.Seed == "" {
		return errors.New("world.seed must be set")
	}
	if c.World.ChunkSize <= 0 {
		return errors.New("world.chunkSize must be positive")
	}
	if c.World.UpdateRadius <= 0 {
		return errors.New("world.updateRadius must be positive")
	}
	if c.World.TickRate <= 0 {
		return errors.New("world.tickRate must be positive")
	}
	if c.Terrain.Octaves <= 0 {
		return errors.New("terrain.octaves must be positive")
	}
	if c.Terrain.HeightContrast <= 0 {
		return errors.New("terrain.heightContrast must be positive")
	}
	if c.Structures.SettlementCellSize <= 0 {
		return errors.New("structures.settlementCellSize must be positive")
	}
	if c.Structures.EntranceSpacing < 0 {
		return errors.New("structures.entranceSpacing cannot be negative")
	}
	if c.Dungeon.PortalMinDistance <= 0 {
		return errors.New("dungeon.portalMinDistance must be positive")
	}
	if c.Dungeon.CarveRange <= c.Dungeon.PortalMinDistance {
		return errors.New("dungeon.carveRange must exceed portalMinDistance")
	}
	if c.Mine.LevelInterval <= 0 || c.Mine.LevelCount <= 0 {
		return errors.New("mine level layout must be positive")
	}
	if c.Lighting.DayLength <= 0 {
		return errors.New("lighting.dayLength must be positive")
	}
	if c.Lighting.NightMinimum < 0 || c.Lighting.NightMinimum > 1 {
		return errors.New("lighting.nightMinimum must be in [0,1]")
	}
	if c.Lighting.MineAmbient < 0 || c.Lighting.MineAmbient > 1 {
		return errors.New("lighting.mineAmbient must be in [0,1]")
	}
	if c.Lighting.MonsterLightCap <= c.Lighting.MineAmbient {
		return errors.New("lighting.monsterLightCap must exceed mineAmbient or mines never spawn hostiles")
	}
	if c.Entities.MoveCadence <= 0 {
		return errors.New("entities.moveCadence must be positive")
	}
	return nil
}
