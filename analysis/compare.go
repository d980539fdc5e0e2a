package analysis

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Weights of the normalized sub-metrics in the combined score.
const (
	WeightTime        = 0.25
	WeightEnvelope    = 0.25
	WeightSpectral    = 0.35
	WeightCorrelation = 0.15
)

// Metrics contains distance and similarity measurements between an enhanced
// signal and the original it was derived from.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	OriginalFrames int `json:"original_frames"`
	EnhancedFrames int `json:"enhanced_frames"`
	AlignedFrames  int `json:"aligned_frames"`
	LagSamples     int `json:"lag_samples"`

	TimeRMSE            float64 `json:"time_rmse"`
	EnvelopeRMSEDB      float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB      float64 `json:"spectral_rmse_db"`
	WaveformCorrelation float64 `json:"waveform_correlation"`

	TimeNorm        float64 `json:"time_norm"`
	EnvelopeNorm    float64 `json:"envelope_norm"`
	SpectralNorm    float64 `json:"spectral_norm"`
	CorrelationNorm float64 `json:"correlation_norm"`
	Dominant        string  `json:"dominant"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare returns objective distance metrics and a combined score in [0,1]
// (0 best). Both signals are RMS-normalized before measuring, so the
// enhancement pipeline's peak normalization does not dominate the result.
func Compare(original []float64, enhanced []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:     sampleRate,
		OriginalFrames: len(original),
		EnhancedFrames: len(enhanced),
	}
	if sampleRate <= 0 || len(original) == 0 || len(enhanced) == 0 {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}

	orig := trimLeadingSilence(original, 1e-6)
	enh := trimLeadingSilence(enhanced, 1e-6)
	if len(orig) == 0 || len(enh) == 0 {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}

	orig = normalizeRMS(orig, 0.1)
	enh = normalizeRMS(enh, 0.1)

	// The pipeline preserves timing, so a short lag window covers decoder
	// padding and trim differences.
	maxLag := sampleRate / 20
	if maxLag < 1 {
		maxLag = 1
	}
	if maxLag > len(orig)-1 {
		maxLag = len(orig) - 1
	}
	if maxLag > len(enh)-1 {
		maxLag = len(enh) - 1
	}
	if maxLag < 1 {
		maxLag = 1
	}
	lag := estimateLag(orig, enh, maxLag)
	m.LagSamples = lag

	origA, enhA := alignByLag(orig, enh, lag)
	n := len(origA)
	if len(enhA) < n {
		n = len(enhA)
	}
	if n < 256 {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}
	maxFrames := sampleRate * 12
	if maxFrames > 0 && n > maxFrames {
		n = maxFrames
	}
	origA = origA[:n]
	enhA = enhA[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(origA, enhA)

	corr := stat.Correlation(origA, enhA, nil)
	if math.IsNaN(corr) {
		corr = 0
	}
	m.WaveformCorrelation = corr

	origEnv := rmsEnvelope(origA, 256, 128)
	enhEnv := rmsEnvelope(enhA, 256, 128)
	envN := len(origEnv)
	if len(enhEnv) < envN {
		envN = len(enhEnv)
	}
	if envN > 0 {
		envDiff := make([]float64, envN)
		for i := 0; i < envN; i++ {
			o := linToDB(origEnv[i])
			e := linToDB(enhEnv[i])
			envDiff[i] = o - e
		}
		m.EnvelopeRMSEDB = rms(envDiff)
	}

	m.SpectralRMSEDB = spectralRMSEDB(origA, enhA)

	// Normalize sub-metrics and combine.
	m.TimeNorm = clamp01(m.TimeRMSE / 0.25)
	m.EnvelopeNorm = clamp01(m.EnvelopeRMSEDB / 30.0)
	m.SpectralNorm = clamp01(m.SpectralRMSEDB / 30.0)
	m.CorrelationNorm = clamp01(1.0 - m.WaveformCorrelation)
	m.Score = clamp01(WeightTime*m.TimeNorm +
		WeightEnvelope*m.EnvelopeNorm +
		WeightSpectral*m.SpectralNorm +
		WeightCorrelation*m.CorrelationNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	m.Dominant = dominantComponent(m)

	return m
}

func dominantComponent(m Metrics) string {
	name := "time"
	best := WeightTime * m.TimeNorm
	if c := WeightEnvelope * m.EnvelopeNorm; c > best {
		name, best = "envelope", c
	}
	if c := WeightSpectral * m.SpectralNorm; c > best {
		name, best = "spectral", c
	}
	if c := WeightCorrelation * m.CorrelationNorm; c > best {
		name = "correlation"
	}
	return name
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i := 0; i < len(x); i++ {
		if math.Abs(x[i]) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	if len(x) == 0 {
		return x
	}
	r := rms(x)
	if r <= 1e-12 {
		return append([]float64(nil), x...)
	}
	g := target / r
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

func estimateLag(orig []float64, enh []float64, maxLag int) int {
	if len(orig) == 0 || len(enh) == 0 {
		return 0
	}
	step := 2
	if len(orig) > 200000 || len(enh) > 200000 {
		step = 4
	}
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		s := dotAtLag(orig, enh, lag, step)
		if s > best {
			best = s
			bestLag = lag
		}
	}
	return bestLag
}

func dotAtLag(a []float64, b []float64, lag int, step int) float64 {
	var ai, bi int
	if lag >= 0 {
		ai = lag
		bi = 0
	} else {
		ai = 0
		bi = -lag
	}
	n := len(a) - ai
	if len(b)-bi < n {
		n = len(b) - bi
	}
	if n <= 0 {
		return 0
	}
	if step <= 1 {
		return floats.Dot(a[ai:ai+n], b[bi:bi+n])
	}
	var sum float64
	for i := 0; i < n; i += step {
		sum += a[ai+i] * b[bi+i]
	}
	return sum
}

func alignByLag(orig []float64, enh []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(orig) {
			return nil, nil
		}
		return orig[lag:], enh
	}
	o := -lag
	if o >= len(enh) {
		return nil, nil
	}
	return orig, enh[o:]
}

func rmse(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, 2) / math.Sqrt(float64(len(x)))
}

func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = rms(x[start : start+frame])
	}
	return out
}

// spectralRMSEDB compares the average magnitude spectra of both signals over
// an STFT and returns the RMS of the per-bin dB differences. Signals shorter
// than 512 samples score 0 (too little material to judge).
func spectralRMSEDB(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 512 {
		return 0
	}

	fftSize := 4096
	for fftSize > n {
		fftSize /= 2
	}
	hop := fftSize / 2

	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return 0
	}
	forward := func(dst []complex128, src []float64) {
		plan.Forward(dst, src)
	}

	avgA, _ := averageSpectrum(forward, a[:n], fftSize, hop)
	avgB, _ := averageSpectrum(forward, b[:n], fftSize, hop)

	bins := fftSize / 2
	var sum float64
	for k := 1; k < bins; k++ {
		d := linToDB(avgA[k]) - linToDB(avgB[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

// averageSpectrum accumulates per-bin magnitudes over Hann-windowed frames
// and returns the per-frame average. Inputs shorter than one frame are
// windowed in place and zero-padded.
func averageSpectrum(forward func([]complex128, []float64), x []float64, fftSize, hop int) ([]float64, int) {
	spec := make([]complex128, fftSize/2+1)
	buf := make([]float64, fftSize)
	avg := make([]float64, fftSize/2+1)
	hann := window.Generate(window.TypeHann, fftSize)

	frames := 0
	for pos := 0; pos+fftSize <= len(x); pos += hop {
		for i := 0; i < fftSize; i++ {
			buf[i] = x[pos+i] * hann[i]
		}
		forward(spec, buf)
		for k := range spec {
			avg[k] += magnitude(spec[k])
		}
		frames++
	}

	if frames == 0 {
		for i := 0; i < len(x) && i < fftSize; i++ {
			buf[i] = x[i] * hann[i]
		}
		forward(spec, buf)
		for k := range spec {
			avg[k] = magnitude(spec[k])
		}
		return avg, 1
	}

	scale := 1.0 / float64(frames)
	for k := range avg {
		avg[k] *= scale
	}
	return avg, frames
}

func magnitude(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
