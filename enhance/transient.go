package enhance

import "fmt"

const (
	defaultTransientSensitivity = 0.5
	defaultTransientAttack      = 2.0
)

// Transient boosts bins whose magnitude jumped since the previous frame.
// The positive spectral flux per bin is compared against a threshold scaled
// from its mean; bins above it are attack onsets and get the attack gain.
// The first frame only seeds the history.
type Transient struct {
	sensitivity float64
	attack      float64
	prev        []float64
}

// NewTransient validates the parameters and returns the enhancer.
func NewTransient(sensitivity, attack float64) (*Transient, error) {
	if !isFinite(sensitivity) || sensitivity < 0 {
		return nil, fmt.Errorf("transient enhancer: sensitivity must be >= 0, got %v", sensitivity)
	}

	if !isFinite(attack) || attack <= 0 {
		return nil, fmt.Errorf("transient enhancer: attack must be > 0, got %v", attack)
	}

	return &Transient{sensitivity: sensitivity, attack: attack}, nil
}

// Process boosts onset bins in place. Phases are untouched. The stored
// history always holds the pre-boost magnitudes of the current frame.
func (t *Transient) Process(magnitudes, phases []float64) error {
	if len(magnitudes) != len(phases) {
		return fmt.Errorf("transient enhancer: magnitude and phase counts differ: %d vs %d", len(magnitudes), len(phases))
	}

	n := len(magnitudes)
	if t.prev == nil || len(t.prev) != n {
		t.prev = append([]float64(nil), magnitudes...)

		return nil
	}

	flux := make([]float64, n)
	sum := 0.0

	for i, m := range magnitudes {
		f := m - t.prev[i]
		if f < 0 {
			f = 0
		}

		flux[i] = f
		sum += f
	}

	threshold := sum / float64(n) * (1 + 5*t.sensitivity)

	copy(t.prev, magnitudes)

	for i, f := range flux {
		if f > threshold {
			magnitudes[i] *= t.attack
		}
	}

	return nil
}

// Reset drops the frame history so the next frame seeds it again.
func (t *Transient) Reset() {
	t.prev = nil
}
