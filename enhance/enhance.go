package enhance

import (
	"errors"
	"fmt"
	"math"
)

// Enhancer transforms one frame of spectral magnitudes and phases in place.
// Both slices have frameSize/2+1 bins. Implementations that keep history
// across frames clear it via Reset.
type Enhancer interface {
	Process(magnitudes, phases []float64) error
	Reset()
}

// Setting selects an enhancer kind by name plus optional parameter overrides.
// Unknown parameter keys are ignored; missing keys fall back to the kind's
// defaults.
type Setting struct {
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params,omitempty"`
}

// num returns the named parameter, or def when absent.
func (s Setting) num(key string, def float64) float64 {
	v, ok := s.Params[key]
	if !ok {
		return def
	}

	return v
}

// Registered enhancer kind names.
const (
	KindHarmonic  = "harmonic"
	KindWidener   = "widener"
	KindExciter   = "exciter"
	KindTransient = "transient"
)

// ErrUnknownKind is returned when a setting names an unregistered enhancer kind.
var ErrUnknownKind = errors.New("unknown enhancer kind")

type factory func(Setting) (Enhancer, error)

var factories = map[string]factory{
	KindHarmonic: func(s Setting) (Enhancer, error) {
		return NewHarmonic(s.num("boost", defaultHarmonicBoost), s.num("decay", defaultHarmonicDecay))
	},
	KindWidener: func(s Setting) (Enhancer, error) {
		return NewWidener(s.num("width", defaultWidenerWidth))
	},
	KindExciter: func(s Setting) (Enhancer, error) {
		return NewExciter(s.num("drive", defaultExciterDrive))
	},
	KindTransient: func(s Setting) (Enhancer, error) {
		return NewTransient(s.num("sensitivity", defaultTransientSensitivity), s.num("attack", defaultTransientAttack))
	},
}

var kindOrder = []string{KindHarmonic, KindWidener, KindExciter, KindTransient}

var descriptions = map[string]string{
	KindHarmonic:  "boosts overtones of the strongest low-frequency partial",
	KindWidener:   "adds a progressive phase offset for a wider image",
	KindExciter:   "saturates the spectrum and lifts the upper mids",
	KindTransient: "sharpens note attacks detected via spectral flux",
}

// New builds a single enhancer from its setting. Parameter values are
// validated by the kind's constructor.
func New(s Setting) (Enhancer, error) {
	build, ok := factories[s.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, s.Name)
	}

	return build(s)
}

// Kinds lists the registered kind names in canonical order.
func Kinds() []string {
	out := make([]string, len(kindOrder))
	copy(out, kindOrder)

	return out
}

// DefaultParams returns the default parameter map for the named kind.
func DefaultParams(name string) (map[string]float64, error) {
	switch name {
	case KindHarmonic:
		return map[string]float64{"boost": defaultHarmonicBoost, "decay": defaultHarmonicDecay}, nil
	case KindWidener:
		return map[string]float64{"width": defaultWidenerWidth}, nil
	case KindExciter:
		return map[string]float64{"drive": defaultExciterDrive}, nil
	case KindTransient:
		return map[string]float64{"sensitivity": defaultTransientSensitivity, "attack": defaultTransientAttack}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, name)
	}
}

// Describe returns a one-line summary of the named kind, or "" when unknown.
func Describe(name string) string {
	return descriptions[name]
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
