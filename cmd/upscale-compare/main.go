package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-upscale/analysis"
	"github.com/cwbudde/algo-upscale/internal/wavio"
)

type report struct {
	Original analysis.Summary    `json:"original"`
	Enhanced analysis.Summary    `json:"enhanced"`
	Metrics  analysis.Metrics    `json:"metrics"`
	Bands    []analysis.BandDiff `json:"bands,omitempty"`
}

func main() {
	originalPath := flag.String("original", "", "Original WAV path")
	enhancedPath := flag.String("enhanced", "", "Enhanced WAV path")
	fftSize := flag.Int("frame-size", 4096, "STFT frame size for band analysis")
	hop := flag.Int("hop", 2048, "STFT hop length for band analysis")
	showBands := flag.Bool("bands", true, "Print the per-band spectral difference table")
	jsonOut := flag.Bool("json", false, "Print the full report as JSON")
	flag.Parse()

	if *originalPath == "" || *enhancedPath == "" {
		die("both -original and -enhanced are required")
	}

	orig, origSR, err := wavio.ReadWAVMono(*originalPath)
	if err != nil {
		die("failed to read original: %v", err)
	}
	enh, enhSR, err := wavio.ReadWAVMono(*enhancedPath)
	if err != nil {
		die("failed to read enhanced: %v", err)
	}

	// Bring both to the higher rate so neither signal loses bandwidth.
	sr := origSR
	if enhSR > sr {
		sr = enhSR
	}
	orig, err = wavio.ResampleIfNeeded(orig, origSR, sr)
	if err != nil {
		die("failed to resample original: %v", err)
	}
	enh, err = wavio.ResampleIfNeeded(enh, enhSR, sr)
	if err != nil {
		die("failed to resample enhanced: %v", err)
	}

	rep := report{
		Original: analysis.Summarize(orig, sr),
		Enhanced: analysis.Summarize(enh, sr),
		Metrics:  analysis.Compare(orig, enh, sr),
	}
	if *showBands {
		rep.Bands, err = analysis.BandDifference(orig, enh, sr, *fftSize, *hop)
		if err != nil {
			die("band analysis failed: %v", err)
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	printSummary("Original", *originalPath, rep.Original)
	printSummary("Enhanced", *enhancedPath, rep.Enhanced)
	fmt.Println()

	if *showBands {
		fmt.Printf("--- Spectral difference (%d-point STFT, hop %d) ---\n", *fftSize, *hop)
		for _, b := range rep.Bands {
			marker := ""
			if b.RMSEDB > 15 {
				marker = " <<<"
			}
			if b.RMSEDB > 25 {
				marker = " <<< !!!"
			}
			name := fmt.Sprintf("%s (%s)", b.Name, hzRange(b.LoHz, b.HiHz))
			fmt.Printf("  %-22s RMSE=%5.1fdB  orig=%6.1fdB  enh=%6.1fdB  diff=%+5.1fdB%s\n",
				name, b.RMSEDB, b.OriginalDB, b.EnhancedDB, b.DeltaDB, marker)
		}
		fmt.Println()
	}

	m := rep.Metrics
	fmt.Printf("Aligned frames:  %d\n", m.AlignedFrames)
	fmt.Printf("Lag:             %d samples (%.3f ms)\n", m.LagSamples, 1000.0*float64(m.LagSamples)/float64(sr))
	fmt.Println()
	fmt.Printf("Component        Raw          Norm   Weight  Contribution\n")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	printComp := func(name string, raw string, norm, weight float64, dominant bool) {
		contrib := norm * weight
		marker := ""
		if dominant {
			marker = " ◄"
		}
		fmt.Printf("%-16s %-12s %5.1f%%  ×%.2f   → %.4f%s\n", name, raw, norm*100, weight, contrib, marker)
	}
	printComp("Time RMSE", fmt.Sprintf("%.6f", m.TimeRMSE), m.TimeNorm, analysis.WeightTime, m.Dominant == "time")
	printComp("Envelope RMSE", fmt.Sprintf("%.1f dB", m.EnvelopeRMSEDB), m.EnvelopeNorm, analysis.WeightEnvelope, m.Dominant == "envelope")
	printComp("Spectral RMSE", fmt.Sprintf("%.1f dB", m.SpectralRMSEDB), m.SpectralNorm, analysis.WeightSpectral, m.Dominant == "spectral")
	printComp("Correlation", fmt.Sprintf("%.4f", m.WaveformCorrelation), m.CorrelationNorm, analysis.WeightCorrelation, m.Dominant == "correlation")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	fmt.Printf("Score:           %.4f  (0 best, 1 worst)\n", m.Score)
	fmt.Printf("Similarity:      %.2f%%\n", m.Similarity*100.0)
	fmt.Printf("Dominant factor: %s\n", m.Dominant)
}

func printSummary(label, path string, s analysis.Summary) {
	fmt.Printf("%s: %s\n", label, path)
	fmt.Printf("  %d frames @ %d Hz (%.2fs)  peak=%.4f (%.1f dB)  rms=%.4f (%.1f dB)\n",
		s.Frames, s.SampleRate, s.DurationSeconds, s.Peak, s.PeakDB, s.RMS, s.RMSDB)
}

func hzRange(lo, hi float64) string {
	return fmt.Sprintf("%s-%sHz", hzLabel(lo), hzLabel(hi))
}

func hzLabel(hz float64) string {
	if hz >= 1000 {
		if math.Mod(hz, 1000) == 0 {
			return fmt.Sprintf("%.0fk", hz/1000)
		}
		return fmt.Sprintf("%.1fk", hz/1000)
	}
	return fmt.Sprintf("%.0f", hz)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
