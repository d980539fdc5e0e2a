package upscale

import (
	"fmt"

	"github.com/cwbudde/algo-upscale/enhance"
)

// Default enhancement parameters.
const (
	DefaultIntensity      = 1.5
	DefaultHarmonicsBoost = 0.3
	DefaultNoiseReduction = 0.2
	DefaultDynamicBoost   = 1.2
	DefaultFrameSize      = 2048
	DefaultHopLength      = 1024
)

// Params holds all pipeline parameters. The zero value is not valid; start
// from NewDefaultParams and override fields as needed.
type Params struct {
	// Intensity scales every magnitude bin (1.0 = unchanged).
	Intensity float64
	// HarmonicsBoost sets the strength of the lower-spectrum tilt (0 = off).
	HarmonicsBoost float64
	// NoiseReduction sets the strength of the noise gate (0 = off).
	NoiseReduction float64
	// DynamicBoost scales magnitude deviations from the frame mean
	// (1.0 = unchanged).
	DynamicBoost float64
	// ClarityEnhance toggles the fixed presence-band lift.
	ClarityEnhance bool

	// FrameSize is the FFT frame length; power of two, >= 64.
	FrameSize int
	// HopLength is the step between frames in [1, FrameSize]. The overlap
	// divisor FrameSize/HopLength is exact for the default 50% overlap.
	HopLength int

	// Enhancers configures the chained enhancers applied after the built-in
	// stages, instantiated fresh per channel.
	Enhancers []enhance.Setting
}

// NewDefaultParams returns the default configuration with an empty chain.
func NewDefaultParams() Params {
	return Params{
		Intensity:      DefaultIntensity,
		HarmonicsBoost: DefaultHarmonicsBoost,
		NoiseReduction: DefaultNoiseReduction,
		DynamicBoost:   DefaultDynamicBoost,
		ClarityEnhance: true,
		FrameSize:      DefaultFrameSize,
		HopLength:      DefaultHopLength,
	}
}

// Validate rejects parameter combinations before any processing begins.
func (p Params) Validate() error {
	if p.FrameSize < minFrameSize || !isPowerOfTwo(p.FrameSize) {
		return fmt.Errorf("upscale: frame size must be power-of-two and >= %d: %d",
			minFrameSize, p.FrameSize)
	}

	if p.HopLength < 1 || p.HopLength > p.FrameSize {
		return fmt.Errorf("upscale: hop length must be in [1, %d]: %d", p.FrameSize, p.HopLength)
	}

	if !isFinite(p.Intensity) || p.Intensity <= 0 {
		return fmt.Errorf("upscale: intensity must be > 0: %v", p.Intensity)
	}

	if !isFinite(p.HarmonicsBoost) || p.HarmonicsBoost < 0 {
		return fmt.Errorf("upscale: harmonics boost must be >= 0: %v", p.HarmonicsBoost)
	}

	if !isFinite(p.NoiseReduction) || p.NoiseReduction < 0 {
		return fmt.Errorf("upscale: noise reduction must be >= 0: %v", p.NoiseReduction)
	}

	if !isFinite(p.DynamicBoost) || p.DynamicBoost <= 0 {
		return fmt.Errorf("upscale: dynamic boost must be > 0: %v", p.DynamicBoost)
	}

	return nil
}

// clone copies the params including the enhancer settings and their
// parameter maps, so callers cannot alias internal state.
func (p Params) clone() Params {
	out := p
	if len(p.Enhancers) > 0 {
		out.Enhancers = make([]enhance.Setting, len(p.Enhancers))
		for i, s := range p.Enhancers {
			out.Enhancers[i] = enhance.Setting{Name: s.Name}
			if len(s.Params) > 0 {
				out.Enhancers[i].Params = make(map[string]float64, len(s.Params))
				for k, v := range s.Params {
					out.Enhancers[i].Params[k] = v
				}
			}
		}
	}

	return out
}
