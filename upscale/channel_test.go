package upscale

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

func testSignal(t *testing.T, freq float64, samples int) []float64 {
	t.Helper()

	gen := signal.NewGenerator(core.WithSampleRate(22050))
	out, err := gen.Sine(freq, 0.5, samples)
	if err != nil {
		t.Fatalf("generate sine: %v", err)
	}

	return out
}

func TestReflectPad(t *testing.T) {
	got := reflectPad([]float64{1, 2, 3, 4}, 3)
	want := []float64{4, 3, 2, 1, 2, 3, 4, 3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got=%g want=%g", i, got[i], want[i])
		}
	}
}

func TestReflectPadShortInput(t *testing.T) {
	// Inputs shorter than the pad keep folding across the reflection period.
	got := reflectPad([]float64{1, 2}, 5)
	want := []float64{2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got=%g want=%g", i, got[i], want[i])
		}
	}
}

func TestReflectPadSingleSample(t *testing.T) {
	got := reflectPad([]float64{0.25}, 4)
	if len(got) != 9 {
		t.Fatalf("length mismatch: %d", len(got))
	}
	for i, v := range got {
		if v != 0.25 {
			t.Fatalf("index %d: got=%g want=0.25", i, v)
		}
	}
}

func TestProcessChannelNoopPreservesShape(t *testing.T) {
	// With every stage neutral the pipeline reduces to windowed
	// analysis/synthesis, so the output is the input rescaled to the peak
	// target.
	in := testSignal(t, 440, 3000)

	cu, err := NewChannelUpscaler(noopParams(256, 128), nil)
	if err != nil {
		t.Fatalf("NewChannelUpscaler: %v", err)
	}
	out, err := cu.ProcessChannel(in)
	if err != nil {
		t.Fatalf("ProcessChannel: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length mismatch: got=%d want=%d", len(out), len(in))
	}

	peak := 0.0
	for _, v := range in {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	scale := peakTarget / peak

	for i := range out {
		if math.Abs(out[i]-in[i]*scale) > 1e-9 {
			t.Fatalf("sample %d: got=%g want=%g", i, out[i], in[i]*scale)
		}
	}
}

func TestProcessChannelEmptyInput(t *testing.T) {
	cu, err := NewChannelUpscaler(NewDefaultParams(), nil)
	if err != nil {
		t.Fatalf("NewChannelUpscaler: %v", err)
	}
	out, err := cu.ProcessChannel(nil)
	if err != nil {
		t.Fatalf("ProcessChannel: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil output for empty input, got %d samples", len(out))
	}
}

func TestProcessChannelSilence(t *testing.T) {
	cu, err := NewChannelUpscaler(NewDefaultParams(), nil)
	if err != nil {
		t.Fatalf("NewChannelUpscaler: %v", err)
	}
	out, err := cu.ProcessChannel(make([]float64, 4096))
	if err != nil {
		t.Fatalf("ProcessChannel: %v", err)
	}
	if len(out) != 4096 {
		t.Fatalf("length mismatch: %d", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d: expected silence, got %g", i, v)
		}
	}
}

func TestProcessChannelNormalizesPeak(t *testing.T) {
	params := NewDefaultParams()
	params.FrameSize = 512
	params.HopLength = 256

	cu, err := NewChannelUpscaler(params, nil)
	if err != nil {
		t.Fatalf("NewChannelUpscaler: %v", err)
	}
	out, err := cu.ProcessChannel(testSignal(t, 440, 5000))
	if err != nil {
		t.Fatalf("ProcessChannel: %v", err)
	}

	peak := 0.0
	for _, v := range out {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-peakTarget) > 1e-9 {
		t.Fatalf("peak mismatch: got=%g want=%g", peak, peakTarget)
	}
}

func TestProcessChannelUnevenHop(t *testing.T) {
	// Hops that do not divide the frame size still produce full-length,
	// bounded output via the integer overlap divisor.
	params := NewDefaultParams()
	params.FrameSize = 512
	params.HopLength = 200

	cu, err := NewChannelUpscaler(params, nil)
	if err != nil {
		t.Fatalf("NewChannelUpscaler: %v", err)
	}
	in := testSignal(t, 330, 4000)
	out, err := cu.ProcessChannel(in)
	if err != nil {
		t.Fatalf("ProcessChannel: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length mismatch: got=%d want=%d", len(out), len(in))
	}
	for i, v := range out {
		if math.Abs(v) > peakTarget+1e-9 {
			t.Fatalf("sample %d exceeds peak target: %g", i, v)
		}
	}
}

func TestProcessChannelProgress(t *testing.T) {
	params := noopParams(256, 128)

	cu, err := NewChannelUpscaler(params, nil)
	if err != nil {
		t.Fatalf("NewChannelUpscaler: %v", err)
	}

	var fractions []float64
	cu.Progress = func(frac float64) {
		fractions = append(fractions, frac)
	}

	if _, err := cu.ProcessChannel(testSignal(t, 440, 2000)); err != nil {
		t.Fatalf("ProcessChannel: %v", err)
	}

	if len(fractions) == 0 {
		t.Fatalf("progress callback never invoked")
	}
	if fractions[0] != 0 {
		t.Fatalf("first fraction must be 0: %g", fractions[0])
	}
	for i, f := range fractions {
		if f < 0 || f >= 1 {
			t.Fatalf("fraction %d out of [0,1): %g", i, f)
		}
		if i > 0 && f < fractions[i-1] {
			t.Fatalf("fractions not monotonic at %d: %g < %g", i, f, fractions[i-1])
		}
	}
}
