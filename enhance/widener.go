package enhance

import (
	"fmt"
	"math"
)

const defaultWidenerWidth = 1.5

// Widener tilts the phase spectrum linearly from zero at DC up to
// pi/4*(width-1) at the top bin. Applied to one channel of a stereo pair it
// decorrelates the channels and widens the image; magnitudes are untouched.
type Widener struct {
	width float64
}

// NewWidener validates the width and returns the enhancer. Width 1 is a
// no-op; larger values widen.
func NewWidener(width float64) (*Widener, error) {
	if !isFinite(width) || width <= 0 {
		return nil, fmt.Errorf("widener enhancer: width must be > 0, got %v", width)
	}

	return &Widener{width: width}, nil
}

// Process adds the phase ramp in place.
func (w *Widener) Process(magnitudes, phases []float64) error {
	if len(magnitudes) != len(phases) {
		return fmt.Errorf("widener enhancer: magnitude and phase counts differ: %d vs %d", len(magnitudes), len(phases))
	}

	n := len(phases)
	if n < 2 {
		return nil
	}

	step := math.Pi / 4 * (w.width - 1) / float64(n-1)
	for i := range phases {
		phases[i] += step * float64(i)
	}

	return nil
}

// Reset is a no-op; the enhancer keeps no state across frames.
func (w *Widener) Reset() {}
