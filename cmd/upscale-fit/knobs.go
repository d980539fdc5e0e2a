package main

import (
	"math"

	"github.com/cwbudde/algo-upscale/upscale"
)

type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

type candidate struct {
	Vals []float64
}

// initCandidate builds the knob table and seeds the first candidate from the
// base parameters, clamped into the search ranges. Frame size and hop stay
// fixed; the search covers only the enhancement strengths.
func initCandidate(base upscale.Params) ([]knobDef, candidate) {
	defs := []knobDef{
		{Name: "intensity", Min: 0.5, Max: 3.0},
		{Name: "harmonics", Min: 0.0, Max: 1.0},
		{Name: "noise_reduction", Min: 0.0, Max: 1.0},
		{Name: "dynamic_boost", Min: 0.5, Max: 2.5},
	}
	vals := []float64{
		base.Intensity,
		base.HarmonicsBoost,
		base.NoiseReduction,
		base.DynamicBoost,
	}
	for i := range vals {
		vals[i] = clamp(vals[i], defs[i].Min, defs[i].Max)
		if defs[i].IsInt {
			vals[i] = math.Round(vals[i])
		}
	}
	return defs, candidate{Vals: vals}
}

// applyCandidate copies the base parameters and overlays the knob values.
func applyCandidate(base upscale.Params, defs []knobDef, c candidate) upscale.Params {
	p := base
	for i, def := range defs {
		v := c.Vals[i]
		switch def.Name {
		case "intensity":
			p.Intensity = v
		case "harmonics":
			p.HarmonicsBoost = v
		case "noise_reduction":
			p.NoiseReduction = v
		case "dynamic_boost":
			p.DynamicBoost = v
		}
	}
	return p
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		v := defs[i].Min + x*(defs[i].Max-defs[i].Min)
		if defs[i].IsInt {
			v = math.Round(v)
		}
		vals[i] = v
	}
	return candidate{Vals: vals}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
