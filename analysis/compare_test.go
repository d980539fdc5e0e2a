package analysis

import (
	"math"
	"math/rand"
	"testing"
)

func TestCompareIdenticalSignalsHasLowScore(t *testing.T) {
	sr := 48000
	x := decaySine(sr, 440.0, 1.5, 0.7)
	m := Compare(x, x, sr)
	if m.Score > 0.05 {
		t.Fatalf("expected very low score for identical signals, got %f", m.Score)
	}
	if m.Similarity < 0.85 {
		t.Fatalf("expected high similarity for identical signals, got %f", m.Similarity)
	}
	if m.WaveformCorrelation < 0.99 {
		t.Fatalf("expected near-perfect correlation, got %f", m.WaveformCorrelation)
	}
}

func TestCompareDifferentSignalsHasHigherScore(t *testing.T) {
	sr := 48000
	a := decaySine(sr, 261.63, 1.8, 0.8)
	b := decaySine(sr, 330.0, 0.8, 0.25)
	m := Compare(a, b, sr)
	if m.Score < 0.25 {
		t.Fatalf("expected higher score for different signals, got %f", m.Score)
	}
	if m.Similarity > 0.5 {
		t.Fatalf("expected low similarity for different signals, got %f", m.Similarity)
	}
}

func TestCompareAlignsShiftedSignal(t *testing.T) {
	sr := 48000
	x := decaySine(sr, 440.0, 1.5, 0.7)
	shifted := x[480:]
	m := Compare(x, shifted, sr)
	if m.Score > 0.05 {
		t.Fatalf("expected low score after alignment, got %f", m.Score)
	}
	if m.LagSamples <= 0 {
		t.Fatalf("expected positive lag estimate, got %d", m.LagSamples)
	}
}

func TestCompareSilentSignalsScoreWorst(t *testing.T) {
	sr := 48000
	x := make([]float64, sr)
	m := Compare(x, x, sr)
	if m.Score != 1.0 {
		t.Fatalf("expected worst score for silence, got %f", m.Score)
	}
	if m.Similarity != 0.0 {
		t.Fatalf("expected zero similarity for silence, got %f", m.Similarity)
	}
}

func TestCompareEmptyInputScoresWorst(t *testing.T) {
	m := Compare(nil, nil, 48000)
	if m.Score != 1.0 || m.Similarity != 0.0 {
		t.Fatalf("expected worst metrics for empty input, got score=%f similarity=%f", m.Score, m.Similarity)
	}
}

func TestEstimateLagFindsPositiveShift(t *testing.T) {
	const (
		n      = 8192
		shift  = 237
		maxLag = 600
	)
	ref := randomSignal(n, 7)
	cand := make([]float64, n)
	copy(cand, ref[shift:])

	got := estimateLag(ref, cand, maxLag)
	if got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func TestEstimateLagFindsNegativeShift(t *testing.T) {
	const (
		n      = 8192
		shift  = -191
		maxLag = 600
	)
	ref := randomSignal(n, 11)
	cand := make([]float64, n)
	copy(cand[-shift:], ref)

	got := estimateLag(ref, cand, maxLag)
	if got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func TestDominantComponentPicksLargestContribution(t *testing.T) {
	m := Metrics{TimeNorm: 0.1, EnvelopeNorm: 0.2, SpectralNorm: 0.9, CorrelationNorm: 0.3}
	if got := dominantComponent(m); got != "spectral" {
		t.Fatalf("dominantComponent() = %q, want %q", got, "spectral")
	}
}

func decaySine(sr int, freq float64, durationSec float64, decaySec float64) []float64 {
	n := int(float64(sr) * durationSec)
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sr)
		env := math.Exp(-t / decaySec)
		out[i] = env * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func randomSignal(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}
