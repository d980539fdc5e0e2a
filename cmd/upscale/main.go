package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cwbudde/algo-upscale/enhance"
	"github.com/cwbudde/algo-upscale/internal/wavio"
	"github.com/cwbudde/algo-upscale/preset"
	"github.com/cwbudde/algo-upscale/upscale"
)

func main() {
	input := flag.String("input", "", "Input WAV path")
	output := flag.String("output", "", "Output WAV path")
	intensity := flag.Float64("intensity", upscale.DefaultIntensity, "Magnitude scaling factor (> 0)")
	harmonics := flag.Float64("harmonics", upscale.DefaultHarmonicsBoost, "Low-spectrum harmonic boost (>= 0)")
	noiseReduction := flag.Float64("noise-reduction", upscale.DefaultNoiseReduction, "Noise gate strength (>= 0)")
	dynamicBoost := flag.Float64("dynamic-boost", upscale.DefaultDynamicBoost, "Dynamic range expansion factor (> 0)")
	clarity := flag.Bool("clarity", true, "Lift the presence band")
	frameSize := flag.Int("frame-size", upscale.DefaultFrameSize, "FFT frame size (power of two, >= 64)")
	hop := flag.Int("hop", upscale.DefaultHopLength, "Hop length between frames")
	enhancers := flag.String("enhancers", "", "Comma-separated enhancer chain (see -list-enhancers)")
	presetName := flag.String("preset", "", "Load parameters from a stored preset")
	savePreset := flag.String("save-preset", "", "Save the resulting parameters under this preset name")
	presetDir := flag.String("preset-dir", "", "Preset directory (default ~/.algo-upscale/presets)")
	rate := flag.Int("rate", 0, "Resample output to this rate in Hz (0 = keep input rate)")
	listEnhancers := flag.Bool("list-enhancers", false, "List available enhancer kinds and exit")
	jsonOut := flag.Bool("json", false, "Print processing stats as JSON")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	flag.Parse()

	if *listEnhancers {
		printEnhancers()
		return
	}
	if *input == "" || *output == "" {
		die("both -input and -output are required")
	}

	store := preset.NewStore(*presetDir)

	params := upscale.NewDefaultParams()
	if *presetName != "" {
		f, err := store.Load(*presetName)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		if err := preset.Apply(&params, f); err != nil {
			die("invalid preset %q: %v", *presetName, err)
		}
	}

	// Flags given explicitly on the command line override preset values.
	var enhancerErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "intensity":
			params.Intensity = *intensity
		case "harmonics":
			params.HarmonicsBoost = *harmonics
		case "noise-reduction":
			params.NoiseReduction = *noiseReduction
		case "dynamic-boost":
			params.DynamicBoost = *dynamicBoost
		case "clarity":
			params.ClarityEnhance = *clarity
		case "frame-size":
			params.FrameSize = *frameSize
		case "hop":
			params.HopLength = *hop
		case "enhancers":
			params.Enhancers, enhancerErr = parseEnhancers(*enhancers)
		}
	})
	if enhancerErr != nil {
		die("invalid -enhancers: %v", enhancerErr)
	}

	if *savePreset != "" {
		path, err := store.Save(*savePreset, preset.FromParams(params))
		if err != nil {
			die("failed to save preset: %v", err)
		}
		if !*quiet && !*jsonOut {
			fmt.Printf("Saved preset %q to %s\n", *savePreset, path)
		}
	}

	u, err := upscale.New(params)
	if err != nil {
		die("%v", err)
	}

	if !*quiet && !*jsonOut {
		// Stereo input reports per-channel progress concurrently; print each
		// decile once, tracking the farthest channel.
		var mu sync.Mutex
		lastStep := 0
		u.SetProgress(func(frac float64) {
			step := int(frac * 10)
			mu.Lock()
			if step > lastStep {
				lastStep = step
				fmt.Printf("Processing: %d%%\n", step*10)
			}
			mu.Unlock()
		})
	}

	var stats *upscale.ProcessingStats
	if *rate > 0 {
		stats, err = processWithResample(u, *input, *output, *rate)
	} else {
		stats, err = u.ProcessFile(*input, *output)
	}
	if err != nil {
		die("%v", err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}
	if !*quiet {
		fmt.Printf("Wrote %s (%d Hz, %d channel(s))\n", stats.OutputPath, stats.SampleRate, stats.Channels)
		fmt.Printf("Audio duration: %.2f seconds\n", stats.DurationSeconds)
		fmt.Printf("Total processing time: %.2f seconds\n", stats.ProcessingSeconds)
		fmt.Printf("Processing speed: %.2fx realtime\n", stats.Throughput)
	}
}

// processWithResample mirrors AudioUpscaler.ProcessFile but resamples the
// enhanced channels to the requested rate before encoding.
func processWithResample(u *upscale.AudioUpscaler, inputPath, outputPath string, rate int) (*upscale.ProcessingStats, error) {
	start := time.Now()

	channels, sampleRate, err := wavio.ReadWAV(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	enhanced, err := u.Process(channels)
	if err != nil {
		return nil, err
	}

	for i := range enhanced {
		enhanced[i], err = wavio.ResampleIfNeeded(enhanced[i], sampleRate, rate)
		if err != nil {
			return nil, fmt.Errorf("failed to resample: %w", err)
		}
	}

	if err := wavio.WriteWAV(outputPath, enhanced, rate); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	elapsed := time.Since(start).Seconds()
	duration := float64(len(channels[0])) / float64(sampleRate)

	p := u.Params()
	stats := &upscale.ProcessingStats{
		InputPath:         inputPath,
		OutputPath:        outputPath,
		SampleRate:        rate,
		Channels:          len(enhanced),
		FrameSize:         p.FrameSize,
		HopLength:         p.HopLength,
		DurationSeconds:   duration,
		ProcessingSeconds: elapsed,
	}
	if elapsed > 0 {
		stats.Throughput = duration / elapsed
	}
	return stats, nil
}

func parseEnhancers(list string) ([]enhance.Setting, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var settings []enhance.Setting
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := enhance.DefaultParams(name); err != nil {
			return nil, err
		}
		settings = append(settings, enhance.Setting{Name: name})
	}
	return settings, nil
}

func printEnhancers() {
	fmt.Println("Available enhancers:")
	for _, kind := range enhance.Kinds() {
		fmt.Printf("  %-10s %s\n", kind, enhance.Describe(kind))
		defaults, err := enhance.DefaultParams(kind)
		if err != nil {
			continue
		}
		keys := make([]string, 0, len(defaults))
		for k := range defaults {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("             %s=%.2f\n", k, defaults[k])
		}
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
