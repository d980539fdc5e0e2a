package analysis

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// Band is one region of the frequency axis in the spectral difference report.
type Band struct {
	Name string  `json:"name"`
	LoHz float64 `json:"lo_hz"`
	HiHz float64 `json:"hi_hz"`
}

// Bands returns the fixed band table used by BandDifference.
func Bands() []Band {
	return []Band{
		{Name: "sub-bass", LoHz: 20, HiHz: 100},
		{Name: "bass", LoHz: 100, HiHz: 300},
		{Name: "low-mid", LoHz: 300, HiHz: 1000},
		{Name: "mid", LoHz: 1000, HiHz: 3000},
		{Name: "hi-mid", LoHz: 3000, HiHz: 6000},
		{Name: "high", LoHz: 6000, HiHz: 12000},
		{Name: "air", LoHz: 12000, HiHz: 20000},
	}
}

// BandDiff summarizes how one frequency band changed from the original
// signal to the enhanced one.
type BandDiff struct {
	Band
	OriginalDB float64 `json:"original_db"`
	EnhancedDB float64 `json:"enhanced_db"`
	DeltaDB    float64 `json:"delta_db"`
	RMSEDB     float64 `json:"rmse_db"`
	Bins       int     `json:"bins"`
}

// BandDifference runs an STFT over both signals, averages the per-bin
// magnitudes across frames and aggregates the averages into the fixed band
// table. Bands that fall entirely above Nyquist are omitted. DeltaDB above
// zero means the enhanced signal carries more energy in that band.
func BandDifference(original, enhanced []float64, sampleRate, fftSize, hop int) ([]BandDiff, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("analysis: sample rate must be > 0: %d", sampleRate)
	}
	if fftSize < 64 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("analysis: fft size must be power-of-two and >= 64: %d", fftSize)
	}
	if hop < 1 || hop > fftSize {
		return nil, fmt.Errorf("analysis: hop must be in [1, %d]: %d", fftSize, hop)
	}

	n := len(original)
	if len(enhanced) < n {
		n = len(enhanced)
	}
	if n == 0 {
		return nil, fmt.Errorf("analysis: signals must not be empty")
	}

	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("analysis: fft plan: %w", err)
	}
	forward := func(dst []complex128, src []float64) {
		plan.Forward(dst, src)
	}

	avgOrig, _ := averageSpectrum(forward, original[:n], fftSize, hop)
	avgEnh, _ := averageSpectrum(forward, enhanced[:n], fftSize, hop)

	binHz := float64(sampleRate) / float64(fftSize)
	nBins := fftSize / 2

	var out []BandDiff
	for _, b := range Bands() {
		loK := int(b.LoHz / binHz)
		hiK := int(b.HiHz / binHz)
		if loK < 1 {
			loK = 1
		}
		if hiK >= nBins {
			hiK = nBins - 1
		}
		if loK > hiK {
			continue
		}

		var sumSq, origPow, enhPow float64
		cnt := 0
		for k := loK; k <= hiK; k++ {
			d := linToDB(avgEnh[k]) - linToDB(avgOrig[k])
			sumSq += d * d
			origPow += avgOrig[k] * avgOrig[k]
			enhPow += avgEnh[k] * avgEnh[k]
			cnt++
		}

		diff := BandDiff{
			Band:       b,
			OriginalDB: powerDB(origPow / float64(cnt)),
			EnhancedDB: powerDB(enhPow / float64(cnt)),
			RMSEDB:     math.Sqrt(sumSq / float64(cnt)),
			Bins:       cnt,
		}
		diff.DeltaDB = diff.EnhancedDB - diff.OriginalDB
		out = append(out, diff)
	}
	return out, nil
}

func powerDB(p float64) float64 {
	if p < 1e-24 {
		p = 1e-24
	}
	return 10.0 * math.Log10(p)
}
