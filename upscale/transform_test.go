package upscale

import (
	"math"
	"testing"
)

func TestFrameTransformRoundTrip(t *testing.T) {
	const frameSize = 256

	ft, err := NewFrameTransform(frameSize)
	if err != nil {
		t.Fatalf("NewFrameTransform: %v", err)
	}

	frame := make([]float64, frameSize)
	for i := range frame {
		x := float64(i) / frameSize
		frame[i] = 0.5*math.Sin(2*math.Pi*5*x) + 0.25*math.Sin(2*math.Pi*31*x+0.7) + 0.1*math.Cos(2*math.Pi*99*x)
	}

	spec, err := ft.Analyze(frame)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(spec.Magnitude) != frameSize/2+1 || len(spec.Phase) != frameSize/2+1 {
		t.Fatalf("bin count mismatch: %d magnitudes, %d phases", len(spec.Magnitude), len(spec.Phase))
	}

	got, err := ft.Synthesize(spec)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(got) != frameSize {
		t.Fatalf("frame length mismatch: %d", len(got))
	}
	for i := range got {
		if math.Abs(got[i]-frame[i]) > 1e-9 {
			t.Fatalf("sample %d: got=%g want=%g", i, got[i], frame[i])
		}
	}
}

func TestAnalyzeLocatesToneBin(t *testing.T) {
	const frameSize = 512
	const toneBin = 20

	ft, err := NewFrameTransform(frameSize)
	if err != nil {
		t.Fatalf("NewFrameTransform: %v", err)
	}

	frame := make([]float64, frameSize)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * toneBin * float64(i) / frameSize)
	}

	spec, err := ft.Analyze(frame)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	peak := 0
	for i := 1; i < len(spec.Magnitude); i++ {
		if spec.Magnitude[i] > spec.Magnitude[peak] {
			peak = i
		}
	}
	if peak != toneBin {
		t.Fatalf("peak bin mismatch: got=%d want=%d", peak, toneBin)
	}
}

func TestNewFrameTransformRejectsBadSizes(t *testing.T) {
	for _, size := range []int{0, -1, 32, 100, 1000} {
		if _, err := NewFrameTransform(size); err == nil {
			t.Fatalf("size %d: expected error", size)
		}
	}
}

func TestAnalyzeRejectsWrongLength(t *testing.T) {
	ft, err := NewFrameTransform(128)
	if err != nil {
		t.Fatalf("NewFrameTransform: %v", err)
	}
	if _, err := ft.Analyze(make([]float64, 64)); err == nil {
		t.Fatalf("expected error for short frame")
	}
}

func TestSynthesizeRejectsWrongBinCount(t *testing.T) {
	ft, err := NewFrameTransform(128)
	if err != nil {
		t.Fatalf("NewFrameTransform: %v", err)
	}
	spec := Spectrum{Magnitude: make([]float64, 10), Phase: make([]float64, 10)}
	if _, err := ft.Synthesize(spec); err == nil {
		t.Fatalf("expected error for wrong bin count")
	}
}
