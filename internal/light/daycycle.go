package light

import (
	"math"
	"time"
)

// DayCycle produces the overworld's ambient level: a sinusoidal arc peaking
// at midday and clamped to a configured floor during the night window.
type DayCycle struct {
	length  time.Duration
	minimum float64
	elapsed time.Duration
}

// NewDayCycle starts a cycle at midday.
func NewDayCycle(length time.Duration, minimum float64) *DayCycle {
	if length <= 0 {
		length = 20 * time.Minute
	}
	return &DayCycle{
		length:  length,
		minimum: minimum,
		elapsed: length / 2,
	}
}

// Advance moves time forward.
func (d *DayCycle) Advance(delta time.Duration) {
	d.elapsed = (d.elapsed + delta) % d.length
	if d.elapsed < 0 {
		d.elapsed += d.length
	}
}

// Progress returns the cycle position in [0,1); 0 is midnight, 0.5 midday.
func (d *DayCycle) Progress() float64 {
	return float64(d.elapsed) / float64(d.length)
}

// Ambient returns the current ambient light level.
func (d *DayCycle) Ambient() float64 {
	sunHeight := math.Cos((d.Progress() - 0.5) * 2 * math.Pi)
	if sunHeight < 0 {
		sunHeight = 0
	}
	ambient := d.minimum + (1-d.minimum)*sunHeight
	if ambient < d.minimum {
		ambient = d.minimum
	}
	if ambient > 1 {
		ambient = 1
	}
	return ambient
}
