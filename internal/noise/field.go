// Package noise provides the seeded continuous fields and per-tile hash RNG
// the terrain and structure layers sample from.
package noise

import (
	"hash/fnv"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Channel offsets keep the per-concern fields statistically independent
// while deriving from one world seed.
const (
	channelHeight      = 0
	channelTemperature = 1
	channelHumidity    = 2
	channelRiver       = 3
	channelRiverPath   = 4
	channelSettlement  = 5
	channelFeature     = 6
)

// Field bundles every noise channel for one world seed. All sampling methods
// return values in [0, 1] and are pure functions of seed and coordinates.
type Field struct {
	seed        int64
	height      opensimplex.Noise
	temperature opensimplex.Noise
	humidity    opensimplex.Noise
	river       opensimplex.Noise
	riverPath   opensimplex.Noise
	settlement  opensimplex.Noise
	feature     opensimplex.Noise
}

// SeedOf hashes an arbitrary seed string to the int64 the noise sources need.
func SeedOf(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// NewField derives every channel from the given seed.
func NewField(seed int64) *Field {
	return &Field{
		seed:        seed,
		height:      opensimplex.NewNormalized(seed + channelHeight),
		temperature: opensimplex.NewNormalized(seed + channelTemperature),
		humidity:    opensimplex.NewNormalized(seed + channelHumidity),
		river:       opensimplex.NewNormalized(seed + channelRiver),
		riverPath:   opensimplex.NewNormalized(seed + channelRiverPath),
		settlement:  opensimplex.NewNormalized(seed + channelSettlement),
		feature:     opensimplex.NewNormalized(seed + channelFeature),
	}
}

// Seed returns the numeric world seed.
func (f *Field) Seed() int64 { return f.seed }

// octave layers four frequencies of one channel, each at twice the previous
// frequency and half the amplitude, renormalized to [0, 1].
func octave(n opensimplex.Noise, x, y, frequency float64, octaves int) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= 0.5
		frequency *= 2
	}
	return total / maxVal
}

// Height samples the elevation channel with octave detail and a contrast
// exponent that deepens basins and sharpens peaks.
func (f *Field) Height(x, y int, frequency float64, octaves int, contrast float64) float64 {
	v := octave(f.height, float64(x), float64(y), frequency, octaves)
	return math.Pow(v, contrast)
}

// Temperature samples the broad climate channel with octave detail.
func (f *Field) Temperature(x, y int, frequency float64, octaves int) float64 {
	return octave(f.temperature, float64(x), float64(y), frequency, octaves)
}

// Humidity samples the moisture channel with octave detail.
func (f *Field) Humidity(x, y int, frequency float64, octaves int) float64 {
	return octave(f.humidity, float64(x), float64(y), frequency, octaves)
}

// River samples the ridged channel whose near-peak band traces river courses.
func (f *Field) River(x, y int, frequency float64) float64 {
	v := f.river.Eval2(float64(x)*frequency, float64(y)*frequency)
	// Fold around the midpoint so river centerlines follow the zero
	// crossings of the raw channel rather than its blobs.
	return 1 - math.Abs(v*2-1)
}

// RiverPath samples the meander channel that perturbs river flow direction.
func (f *Field) RiverPath(x, y int, frequency float64) float64 {
	return f.riverPath.Eval2(float64(x)*frequency, float64(y)*frequency)
}

// Settlement samples the sparse channel that seeds settlement anchors.
func (f *Field) Settlement(x, y int, frequency float64) float64 {
	return f.settlement.Eval2(float64(x)*frequency, float64(y)*frequency)
}

// Feature samples the subterranean feature channel shared by spawn bands.
func (f *Field) Feature(x, y int, frequency float64) float64 {
	return f.feature.Eval2(float64(x)*frequency, float64(y)*frequency)
}

// TileRNG is a tiny deterministic generator keyed on one tile. It exists for
// per-tile jitter decisions where a full noise sample is overkill; identical
// (seed, x, y, salt) always yields the identical stream.
type TileRNG struct {
	state uint64
}

// NewTileRNG keys a generator to one tile and purpose salt.
func NewTileRNG(seed int64, x, y int, salt uint64) *TileRNG {
	s := uint64(seed) ^ uint64(int64(x))*0x9e3779b97f4a7c15 ^ uint64(int64(y))*0xbf58476d1ce4e5b9 ^ salt*0x94d049bb133111eb
	r := &TileRNG{state: s}
	// Burn one output so nearby tiles decorrelate.
	r.next()
	return r
}

func (r *TileRNG) next() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Float64 returns a uniform value in [0, 1).
func (r *TileRNG) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// Intn returns a uniform value in [0, n).
func (r *TileRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}

// Chance reports a hit with probability p.
func (r *TileRNG) Chance(p float64) bool {
	return r.Float64() < p
}
