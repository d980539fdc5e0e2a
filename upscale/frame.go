package upscale

import (
	"github.com/cwbudde/algo-upscale/enhance"
)

// Built-in stage policy. The divisors select spectrum regions by fraction of
// the bin count; they are fixed for output compatibility across runs.
const (
	// Noise floor is estimated over the top fifth of the spectrum, where
	// musical energy is sparse; the gate threshold grows three-fold per unit
	// of reduction strength.
	noiseFloorRegionDiv = 5
	noiseGateGrowth     = 3.0

	// Harmonic tilt covers the lower half of the spectrum and fades from the
	// full boost at DC to a tenth of it at the midpoint.
	harmonicRegionDiv = 2
	harmonicTiltFloor = 0.1

	// Clarity lifts the presence band between an eighth and a third of the
	// spectrum by a fixed gain.
	clarityBandLoDiv = 8
	clarityBandHiDiv = 3
	clarityGain      = 1.2
)

// FrameProcessor applies one full enhancement pass to a single frame: the
// built-in stages in fixed order, then the enhancer chain, then synthesis
// back to the time domain.
type FrameProcessor struct {
	params    Params
	chain     *enhance.Chain
	transform *FrameTransform
}

// NewFrameProcessor validates the parameters and builds the per-frame
// pipeline. A nil chain means no chained enhancers.
func NewFrameProcessor(params Params, chain *enhance.Chain) (*FrameProcessor, error) {
	err := params.Validate()
	if err != nil {
		return nil, err
	}

	transform, err := NewFrameTransform(params.FrameSize)
	if err != nil {
		return nil, err
	}

	return &FrameProcessor{
		params:    params,
		chain:     chain,
		transform: transform,
	}, nil
}

// ProcessFrame enhances one frame and returns the reconstructed samples.
// Stage order is fixed: noise floor, harmonic tilt, intensity, dynamic
// range, clarity, enhancer chain. A failing enhancer aborts the frame; the
// error propagates to the caller and invalidates the whole run.
func (p *FrameProcessor) ProcessFrame(frame []float64) ([]float64, error) {
	spec, err := p.transform.Analyze(frame)
	if err != nil {
		return nil, err
	}

	magnitudes := spec.Magnitude
	phases := spec.Phase

	if p.params.NoiseReduction > 0 {
		reduceNoiseFloor(magnitudes, p.params.NoiseReduction)
	}

	if p.params.HarmonicsBoost > 0 {
		tiltHarmonicRegion(magnitudes, p.params.HarmonicsBoost)
	}

	for i := range magnitudes {
		magnitudes[i] *= p.params.Intensity
	}

	if p.params.DynamicBoost != 1.0 {
		scaleDynamicRange(magnitudes, p.params.DynamicBoost)
	}

	if p.params.ClarityEnhance {
		liftClarityBand(magnitudes)
	}

	if p.chain != nil {
		err := p.chain.Process(magnitudes, phases)
		if err != nil {
			return nil, err
		}
	}

	return p.transform.Synthesize(Spectrum{Magnitude: magnitudes, Phase: phases})
}

// reduceNoiseFloor zeroes every bin whose magnitude does not exceed the gate
// threshold derived from the high-frequency noise floor estimate.
func reduceNoiseFloor(magnitudes []float64, strength float64) {
	n := len(magnitudes)

	region := n / noiseFloorRegionDiv
	if region == 0 {
		return
	}

	sum := 0.0
	for _, m := range magnitudes[n-region:] {
		sum += m
	}

	gate := sum / float64(region) * (1 + noiseGateGrowth*strength)

	for i, m := range magnitudes {
		if m <= gate {
			magnitudes[i] = 0
		}
	}
}

// tiltHarmonicRegion multiplies the lower half of the spectrum by a gain that
// decays linearly from 1+boost at bin 0 to 1+harmonicTiltFloor*boost at the
// last bin of the region (inclusive ramp).
func tiltHarmonicRegion(magnitudes []float64, boost float64) {
	region := len(magnitudes) / harmonicRegionDiv
	if region == 0 {
		return
	}

	if region == 1 {
		magnitudes[0] *= 1 + boost

		return
	}

	step := (harmonicTiltFloor - 1.0) / float64(region-1)
	for i := 0; i < region; i++ {
		curve := 1.0 + step*float64(i)
		magnitudes[i] *= 1 + curve*boost
	}
}

// scaleDynamicRange re-centers magnitudes around the frame mean and scales
// the deviations. Factors above one expand the range, below one compress it.
// Results clamp at zero so magnitudes stay valid.
func scaleDynamicRange(magnitudes []float64, factor float64) {
	if len(magnitudes) == 0 {
		return
	}

	sum := 0.0
	for _, m := range magnitudes {
		sum += m
	}
	mean := sum / float64(len(magnitudes))

	for i, m := range magnitudes {
		v := mean + (m-mean)*factor
		if v < 0 {
			v = 0
		}

		magnitudes[i] = v
	}
}

// liftClarityBand applies the fixed clarity gain to the presence band.
func liftClarityBand(magnitudes []float64) {
	n := len(magnitudes)
	for i := n / clarityBandLoDiv; i < n/clarityBandHiDiv; i++ {
		magnitudes[i] *= clarityGain
	}
}
