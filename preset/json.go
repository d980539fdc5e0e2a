package preset

import (
	"fmt"

	"github.com/cwbudde/algo-upscale/enhance"
	"github.com/cwbudde/algo-upscale/upscale"
)

// File is the on-disk preset schema. Pointer fields distinguish "absent"
// from an explicit zero; absent fields keep the destination value when the
// preset is applied.
type File struct {
	Intensity      *float64          `json:"intensity,omitempty"`
	HarmonicsBoost *float64          `json:"harmonics_boost,omitempty"`
	NoiseReduction *float64          `json:"noise_reduction,omitempty"`
	DynamicBoost   *float64          `json:"dynamic_boost,omitempty"`
	ClarityEnhance *bool             `json:"clarity_enhance,omitempty"`
	FrameSize      *int              `json:"frame_size,omitempty"`
	HopLength      *int              `json:"hop_length,omitempty"`
	Enhancers      []enhance.Setting `json:"enhancers,omitempty"`
}

// Apply overlays the preset onto dst, validating each present field.
func Apply(dst *upscale.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}
	if f.Intensity != nil {
		if *f.Intensity <= 0 {
			return fmt.Errorf("intensity must be > 0")
		}
		dst.Intensity = *f.Intensity
	}
	if f.HarmonicsBoost != nil {
		if *f.HarmonicsBoost < 0 {
			return fmt.Errorf("harmonics_boost must be >= 0")
		}
		dst.HarmonicsBoost = *f.HarmonicsBoost
	}
	if f.NoiseReduction != nil {
		if *f.NoiseReduction < 0 {
			return fmt.Errorf("noise_reduction must be >= 0")
		}
		dst.NoiseReduction = *f.NoiseReduction
	}
	if f.DynamicBoost != nil {
		if *f.DynamicBoost <= 0 {
			return fmt.Errorf("dynamic_boost must be > 0")
		}
		dst.DynamicBoost = *f.DynamicBoost
	}
	if f.ClarityEnhance != nil {
		dst.ClarityEnhance = *f.ClarityEnhance
	}
	if f.FrameSize != nil {
		if *f.FrameSize <= 0 {
			return fmt.Errorf("frame_size must be > 0")
		}
		dst.FrameSize = *f.FrameSize
	}
	if f.HopLength != nil {
		if *f.HopLength <= 0 {
			return fmt.Errorf("hop_length must be > 0")
		}
		dst.HopLength = *f.HopLength
	}
	if f.Enhancers != nil {
		dst.Enhancers = cloneSettings(f.Enhancers)
	}
	return nil
}

// FromParams captures the full parameter set as a preset file.
func FromParams(p upscale.Params) *File {
	intensity := p.Intensity
	harmonics := p.HarmonicsBoost
	noise := p.NoiseReduction
	dynamic := p.DynamicBoost
	clarity := p.ClarityEnhance
	frame := p.FrameSize
	hop := p.HopLength
	return &File{
		Intensity:      &intensity,
		HarmonicsBoost: &harmonics,
		NoiseReduction: &noise,
		DynamicBoost:   &dynamic,
		ClarityEnhance: &clarity,
		FrameSize:      &frame,
		HopLength:      &hop,
		Enhancers:      cloneSettings(p.Enhancers),
	}
}

// ToParams applies the preset on top of the defaults.
func ToParams(f *File) (upscale.Params, error) {
	params := upscale.NewDefaultParams()
	if err := Apply(&params, f); err != nil {
		return upscale.Params{}, err
	}
	return params, nil
}

// Instantiate builds an upscaler from the preset, embedded enhancer
// settings included.
func Instantiate(f *File) (*upscale.AudioUpscaler, error) {
	params, err := ToParams(f)
	if err != nil {
		return nil, err
	}
	return upscale.New(params)
}

func cloneSettings(settings []enhance.Setting) []enhance.Setting {
	if settings == nil {
		return nil
	}
	out := make([]enhance.Setting, len(settings))
	for i, s := range settings {
		out[i] = enhance.Setting{Name: s.Name}
		if s.Params != nil {
			out[i].Params = make(map[string]float64, len(s.Params))
			for k, v := range s.Params {
				out[i].Params[k] = v
			}
		}
	}
	return out
}
