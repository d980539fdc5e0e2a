package upscale

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/signal"
	"github.com/cwbudde/algo-dsp/dsp/window"
	"github.com/cwbudde/algo-upscale/enhance"
)

// Output peak after normalization, leaving headroom below clipping.
const peakTarget = 0.95

// ChannelUpscaler runs the framing state machine over one channel: reflect
// padding, the hop loop with windowed overlap-add, overlap normalization,
// unpadding and peak normalization. Each channel needs its own instance
// because the enhancer chain may carry cross-frame state.
type ChannelUpscaler struct {
	params    Params
	processor *FrameProcessor
	coeffs    []float64

	// Progress, when set, is called after each frame with the fraction of
	// the channel finished so far, in [0, 1). It must not touch the audio.
	Progress func(frac float64)
}

// NewChannelUpscaler validates params and builds the per-frame processor.
// The chain is owned by this channel; pass nil for no chained enhancers.
func NewChannelUpscaler(params Params, chain *enhance.Chain) (*ChannelUpscaler, error) {
	processor, err := NewFrameProcessor(params, chain)
	if err != nil {
		return nil, err
	}

	// Periodic Hann satisfies the constant-overlap-add property exactly at
	// the default 50% overlap.
	coeffs := window.Generate(window.TypeHann, params.FrameSize, window.WithPeriodic())
	if len(coeffs) != params.FrameSize {
		return nil, fmt.Errorf("upscale: window generation failed for size %d", params.FrameSize)
	}

	return &ChannelUpscaler{
		params:    params,
		processor: processor,
		coeffs:    coeffs,
	}, nil
}

// ProcessChannel enhances one channel and returns a newly allocated slice of
// the same length, peak-normalized to 0.95. Empty input returns nil.
func (c *ChannelUpscaler) ProcessChannel(samples []float64) ([]float64, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	frameSize := c.params.FrameSize
	hop := c.params.HopLength

	padded := reflectPad(samples, frameSize)
	acc := make([]float64, len(padded))

	span := len(padded) - frameSize
	for offset := 0; offset < span; offset += hop {
		enhanced, err := c.processor.ProcessFrame(padded[offset : offset+frameSize])
		if err != nil {
			return nil, err
		}

		for i, v := range enhanced {
			acc[offset+i] += v * c.coeffs[i]
		}

		if c.Progress != nil {
			c.Progress(float64(offset) / float64(span))
		}
	}

	// Each sample accumulates frameSize/hop overlapping windows. The integer
	// divisor is exact for the default hop = frameSize/2 and approximate for
	// other ratios; peak normalization below absorbs the absolute scale.
	overlap := float64(frameSize / hop)
	for i := range acc {
		acc[i] /= overlap
	}

	out := acc[frameSize : len(acc)-frameSize]

	normalized, err := signal.Normalize(out, peakTarget)
	if err != nil {
		return nil, fmt.Errorf("upscale: peak normalization failed: %w", err)
	}

	return normalized, nil
}

// reflectPad mirrors the signal around both edges without repeating the edge
// sample. Inputs shorter than the pad fold back and forth across the
// reflection period.
func reflectPad(samples []float64, pad int) []float64 {
	n := len(samples)
	if n == 1 {
		out := make([]float64, 1+2*pad)
		for i := range out {
			out[i] = samples[0]
		}

		return out
	}

	out := make([]float64, n+2*pad)
	period := 2 * (n - 1)

	for i := range out {
		v := i - pad
		v = ((v % period) + period) % period
		if v >= n {
			v = period - v
		}

		out[i] = samples[v]
	}

	return out
}
