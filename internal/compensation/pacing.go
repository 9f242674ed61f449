package compensation

import (
	"fmt"
	"math"
	"time"
)

// Pacing controls how fast a schedule is animated.
//
// Horizons up to HorizonDays tick every ShortInterval. Longer horizons tick every
// maxDays / maxDays^Exponent units, so the step delay shrinks as the horizon grows
// and a multi-year projection still finishes in a bounded wall-clock window.
type Pacing struct {
	ShortInterval time.Duration
	HorizonDays   float64
	// Exponent trades smoothness against total runtime; observed values are 1.6-1.7.
	Exponent float64
	// Unit is the wall-clock length of one pacing time-unit.
	Unit time.Duration
}

// DefaultPacing returns 200ms ticks for horizons up to two years and exponent 1.6 beyond.
func DefaultPacing() Pacing {
	return Pacing{
		ShortInterval: 200 * time.Millisecond,
		HorizonDays:   720,
		Exponent:      1.6,
		Unit:          time.Second,
	}
}

// Validate checks that the pacing compresses long horizons.
func (p Pacing) Validate() error {
	if p.ShortInterval <= 0 {
		return fmt.Errorf("%w: short interval must be positive", ErrInvalidPacing)
	}
	if p.HorizonDays <= 0 {
		return fmt.Errorf("%w: horizon must be positive", ErrInvalidPacing)
	}
	if !(p.Exponent > 1) || math.IsInf(p.Exponent, 0) {
		return fmt.Errorf("%w: exponent %v must be greater than 1", ErrInvalidPacing, p.Exponent)
	}
	if p.Unit <= 0 {
		return fmt.Errorf("%w: unit must be positive", ErrInvalidPacing)
	}
	return nil
}

// TickInterval returns the pause between two ticks for the given horizon.
func (p Pacing) TickInterval(maxDays float64) time.Duration {
	if maxDays <= p.HorizonDays {
		return p.ShortInterval
	}
	units := maxDays / math.Pow(maxDays, p.Exponent)
	return time.Duration(units * float64(p.Unit))
}
