package enhance

import (
	"fmt"
	"math"
)

const (
	defaultExciterDrive = 1.5

	// Flat gain on the upper-mid band after saturation.
	exciterBandGain = 1.1
)

// Exciter runs every magnitude through a tanh saturator normalized by the
// drive, then lifts the band between bins n/8 and n/2. The saturation
// compresses peaks and the lift restores presence.
type Exciter struct {
	drive float64
}

// NewExciter validates the drive and returns the enhancer.
func NewExciter(drive float64) (*Exciter, error) {
	if !isFinite(drive) || drive <= 0 {
		return nil, fmt.Errorf("exciter enhancer: drive must be > 0, got %v", drive)
	}

	return &Exciter{drive: drive}, nil
}

// Process saturates and lifts the magnitudes in place. Phases are untouched.
func (e *Exciter) Process(magnitudes, phases []float64) error {
	if len(magnitudes) != len(phases) {
		return fmt.Errorf("exciter enhancer: magnitude and phase counts differ: %d vs %d", len(magnitudes), len(phases))
	}

	for i, m := range magnitudes {
		magnitudes[i] = math.Tanh(m*e.drive) / e.drive
	}

	n := len(magnitudes)
	for i := n / 8; i < n/2; i++ {
		magnitudes[i] *= exciterBandGain
	}

	return nil
}

// Reset is a no-op; the enhancer keeps no state across frames.
func (e *Exciter) Reset() {}
