package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Summary holds basic level statistics for one waveform.
type Summary struct {
	Frames          int     `json:"frames"`
	SampleRate      int     `json:"sample_rate"`
	DurationSeconds float64 `json:"duration_seconds"`
	Peak            float64 `json:"peak"`
	PeakDB          float64 `json:"peak_db"`
	RMS             float64 `json:"rms"`
	RMSDB           float64 `json:"rms_db"`
}

// Summarize computes level statistics for x. A zero or negative sample rate
// leaves DurationSeconds at zero.
func Summarize(x []float64, sampleRate int) Summary {
	s := Summary{Frames: len(x), SampleRate: sampleRate}
	if len(x) == 0 {
		s.PeakDB = linToDB(0)
		s.RMSDB = linToDB(0)
		return s
	}
	if sampleRate > 0 {
		s.DurationSeconds = float64(len(x)) / float64(sampleRate)
	}
	s.Peak = floats.Norm(x, math.Inf(1))
	s.RMS = rms(x)
	s.PeakDB = linToDB(s.Peak)
	s.RMSDB = linToDB(s.RMS)
	return s
}
