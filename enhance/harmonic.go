package enhance

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/window"
)

const (
	defaultHarmonicBoost = 1.5
	defaultHarmonicDecay = 0.5

	// Highest overtone considered, counted from the fundamental.
	maxHarmonic = 7
)

// Harmonic locates the strongest low-frequency partial and raises its
// overtones. The gain per overtone falls off as boost/h^decay and is
// applied over a small Hann-shaped neighborhood so bin boundaries stay
// smooth.
type Harmonic struct {
	boost float64
	decay float64
}

// NewHarmonic validates the parameters and returns the enhancer.
func NewHarmonic(boost, decay float64) (*Harmonic, error) {
	if !isFinite(boost) || boost <= 0 {
		return nil, fmt.Errorf("harmonic enhancer: boost must be > 0, got %v", boost)
	}

	if !isFinite(decay) || decay < 0 {
		return nil, fmt.Errorf("harmonic enhancer: decay must be >= 0, got %v", decay)
	}

	return &Harmonic{boost: boost, decay: decay}, nil
}

// Process boosts the overtone neighborhoods in place. Phases are untouched.
func (h *Harmonic) Process(magnitudes, phases []float64) error {
	if len(magnitudes) != len(phases) {
		return fmt.Errorf("harmonic enhancer: magnitude and phase counts differ: %d vs %d", len(magnitudes), len(phases))
	}

	n := len(magnitudes)

	fundamental := fundamentalBin(magnitudes)
	if fundamental == 0 {
		return nil
	}

	radius := max(3, min(5, n/1000))

	for harmonic := 2; harmonic <= maxHarmonic; harmonic++ {
		idx := fundamental * harmonic
		if idx >= n {
			break
		}

		gain := h.boost / math.Pow(float64(harmonic), h.decay)
		start := max(0, idx-radius)
		end := min(n, idx+radius+1)

		win := window.Generate(window.TypeHann, end-start)
		for i, w := range win {
			magnitudes[start+i] *= 1 + w*(gain-1)
		}
	}

	return nil
}

// Reset is a no-op; the enhancer keeps no state across frames.
func (h *Harmonic) Reset() {}

// fundamentalBin returns the first strongest bin within the low band,
// scanning at most the lower fifth of the spectrum and never past bin 100.
// Bin 0 means no usable fundamental.
func fundamentalBin(magnitudes []float64) int {
	lower := min(len(magnitudes)/5, 100)

	best := 0
	for i := 1; i < lower; i++ {
		if magnitudes[i] > magnitudes[best] {
			best = i
		}
	}

	return best
}
