package upscale

import (
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/algo-upscale/enhance"
	"github.com/cwbudde/algo-upscale/internal/wavio"
)

// ProcessingStats records one file-processing run. Immutable after creation.
type ProcessingStats struct {
	InputPath         string  `json:"input_file"`
	OutputPath        string  `json:"output_file"`
	SampleRate        int     `json:"sample_rate"`
	Channels          int     `json:"channels"`
	FrameSize         int     `json:"frame_size"`
	HopLength         int     `json:"hop_length"`
	DurationSeconds   float64 `json:"duration_seconds"`
	ProcessingSeconds float64 `json:"processing_seconds"`
	// Throughput is audio duration divided by processing time; values above
	// one mean faster than realtime.
	Throughput float64 `json:"throughput_multiplier"`
}

// AudioUpscaler dispatches the pipeline over mono or stereo audio. Channels
// process concurrently, each with a freshly built enhancer chain so that no
// cross-frame enhancer state is shared between them.
type AudioUpscaler struct {
	params   Params
	progress func(float64)
}

// New validates the parameters, including the enhancer settings, and returns
// the upscaler.
func New(params Params) (*AudioUpscaler, error) {
	err := params.Validate()
	if err != nil {
		return nil, err
	}

	// Surface invalid enhancer parameters now rather than mid-run.
	_, err = enhance.NewChain(params.Enhancers)
	if err != nil {
		return nil, err
	}

	return &AudioUpscaler{params: params.clone()}, nil
}

// Params returns a copy of the configuration.
func (u *AudioUpscaler) Params() Params {
	return u.params.clone()
}

// SetProgress registers a per-frame progress callback. For stereo input the
// callback receives per-channel fractions and may be invoked concurrently
// from both channel goroutines.
func (u *AudioUpscaler) SetProgress(fn func(frac float64)) {
	u.progress = fn
}

// Process enhances each channel independently and returns newly allocated
// output with the channel order preserved. One or two channels are accepted.
func (u *AudioUpscaler) Process(channels [][]float64) ([][]float64, error) {
	if len(channels) == 0 || len(channels) > 2 {
		return nil, fmt.Errorf("upscale: expected 1 or 2 channels: %d", len(channels))
	}

	out := make([][]float64, len(channels))
	errs := make([]error, len(channels))

	var wg sync.WaitGroup
	for i := range channels {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			cu, err := u.newChannelUpscaler()
			if err != nil {
				errs[idx] = err

				return
			}

			out[idx], errs[idx] = cu.ProcessChannel(channels[idx])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// ProcessFile decodes a WAV file, enhances it and writes the result. The
// returned stats include the measured wall time and throughput multiplier.
func (u *AudioUpscaler) ProcessFile(inputPath, outputPath string) (*ProcessingStats, error) {
	start := time.Now()

	channels, sampleRate, err := wavio.ReadWAV(inputPath)
	if err != nil {
		return nil, fmt.Errorf("upscale: failed to read %s: %w", inputPath, err)
	}

	enhanced, err := u.Process(channels)
	if err != nil {
		return nil, err
	}

	err = wavio.WriteWAV(outputPath, enhanced, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("upscale: failed to write %s: %w", outputPath, err)
	}

	elapsed := time.Since(start).Seconds()
	duration := float64(len(channels[0])) / float64(sampleRate)

	stats := &ProcessingStats{
		InputPath:         inputPath,
		OutputPath:        outputPath,
		SampleRate:        sampleRate,
		Channels:          len(channels),
		FrameSize:         u.params.FrameSize,
		HopLength:         u.params.HopLength,
		DurationSeconds:   duration,
		ProcessingSeconds: elapsed,
	}
	if elapsed > 0 {
		stats.Throughput = duration / elapsed
	}

	return stats, nil
}

// newChannelUpscaler builds one channel runner with its own enhancer chain.
func (u *AudioUpscaler) newChannelUpscaler() (*ChannelUpscaler, error) {
	chain, err := enhance.NewChain(u.params.Enhancers)
	if err != nil {
		return nil, err
	}

	cu, err := NewChannelUpscaler(u.params, chain)
	if err != nil {
		return nil, err
	}

	cu.Progress = u.progress

	return cu, nil
}
