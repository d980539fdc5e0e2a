package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/algo-upscale/analysis"
	"github.com/cwbudde/algo-upscale/internal/wavio"
	"github.com/cwbudde/algo-upscale/preset"
	"github.com/cwbudde/algo-upscale/upscale"
	"github.com/cwbudde/mayfly"
)

type runReport struct {
	InputPath      string             `json:"input_path"`
	ReferencePath  string             `json:"reference_path"`
	SampleRate     int                `json:"sample_rate"`
	ElapsedSeconds float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	MayflyVariant  string             `json:"mayfly_variant"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
	SavedPreset    string             `json:"saved_preset,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "WAV file to enhance during the search")
	referencePath := flag.String("reference", "", "Target WAV the enhanced output should approach")
	variant := flag.String("variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	pop := flag.Int("pop", 6, "Male and female population size per mayfly round")
	maxEvals := flag.Int("max-evals", 200, "Maximum objective evaluations")
	timeBudget := flag.Float64("time-budget", 120.0, "Optimization time budget in seconds")
	seed := flag.Int64("seed", 1, "Random seed")
	maxSeconds := flag.Float64("max-seconds", 10.0, "Truncate both signals to this many seconds (0 = full length)")
	reportEvery := flag.Int("report-every", 10, "Print progress every N evaluations")
	savePreset := flag.String("save-preset", "", "Save the best parameters under this preset name")
	presetDir := flag.String("preset-dir", "", "Preset directory (default ~/.algo-upscale/presets)")
	jsonOut := flag.Bool("json", false, "Print the final report as JSON")
	flag.Parse()

	if *inputPath == "" || *referencePath == "" {
		die("both -input and -reference are required")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *pop < 2 {
		*pop = 2
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}

	input, sr, err := wavio.ReadWAVMono(*inputPath)
	if err != nil {
		die("failed to read input: %v", err)
	}
	ref, refSR, err := wavio.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err = wavio.ResampleIfNeeded(ref, refSR, sr)
	if err != nil {
		die("failed to resample reference: %v", err)
	}
	if *maxSeconds > 0 {
		limit := int(*maxSeconds * float64(sr))
		if limit > 0 && len(input) > limit {
			input = input[:limit]
		}
		if limit > 0 && len(ref) > limit {
			ref = ref[:limit]
		}
	}

	base := upscale.NewDefaultParams()
	defs, initial := initCandidate(base)

	verbose := !*jsonOut

	evaluate := func(c candidate) (analysis.Metrics, error) {
		u, err := upscale.New(applyCandidate(base, defs, c))
		if err != nil {
			return analysis.Metrics{}, err
		}
		out, err := u.Process([][]float64{input})
		if err != nil {
			return analysis.Metrics{}, err
		}
		return analysis.Compare(ref, out[0], sr), nil
	}

	start := time.Now()
	deadline := start.Add(time.Duration(*timeBudget * float64(time.Second)))
	evals := 0
	improves := 0

	best := initial
	bestM, err := evaluate(best)
	if err != nil {
		die("initial evaluation failed: %v", err)
	}
	evals++
	if verbose {
		fmt.Printf("Start score=%.4f similarity=%.2f%%\n", bestM.Score, bestM.Similarity*100.0)
	}

	// Short rounds so the deadline and eval budget are rechecked often; each
	// round reseeds the optimizer.
	const roundIters = 4
	round := 0
	for evals < *maxEvals && time.Now().Before(deadline) {
		round++
		cfg, err := newMayflyConfig(strings.ToLower(*variant), *pop, len(defs), roundIters)
		if err != nil {
			die("invalid mayfly variant: %v", err)
		}
		cfg.Rand = rand.New(rand.NewSource(*seed + int64(round)*7919))

		cfg.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= *maxEvals || time.Now().After(deadline) {
				return bestM.Score + 1.0
			}
			cand := fromNormalized(pos, defs)
			m, err := evaluate(cand)
			evals++
			if err != nil {
				return bestM.Score + 0.8
			}
			if m.Score < bestM.Score {
				best = cand
				bestM = m
				improves++
				if verbose {
					fmt.Printf("Improved #%d eval=%d score=%.4f sim=%.2f%%\n", improves, evals, bestM.Score, bestM.Similarity*100.0)
				}
			}
			if verbose && evals%*reportEvery == 0 {
				fmt.Printf("Progress round=%d eval=%d elapsed=%.1fs best=%.4f\n", round, evals, time.Since(start).Seconds(), bestM.Score)
			}
			return m.Score
		}

		if _, err := runMayfly(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
			continue
		}
	}

	elapsed := time.Since(start).Seconds()
	bestParams := applyCandidate(base, defs, best)

	savedPath := ""
	if *savePreset != "" {
		store := preset.NewStore(*presetDir)
		savedPath, err = store.Save(*savePreset, preset.FromParams(bestParams))
		if err != nil {
			die("failed to save preset: %v", err)
		}
	}

	if *jsonOut {
		knobs := make(map[string]float64, len(defs))
		for i, d := range defs {
			knobs[d.Name] = best.Vals[i]
		}
		rep := runReport{
			InputPath:      *inputPath,
			ReferencePath:  *referencePath,
			SampleRate:     sr,
			ElapsedSeconds: elapsed,
			Evaluations:    evals,
			MayflyVariant:  strings.ToLower(*variant),
			BestScore:      bestM.Score,
			BestSimilarity: bestM.Similarity,
			BestMetrics:    bestM,
			BestKnobs:      knobs,
			SavedPreset:    savedPath,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n",
		evals, elapsed, bestM.Score, bestM.Similarity*100.0, strings.ToLower(*variant))
	fmt.Println("Best parameters:")
	for i, d := range defs {
		fmt.Printf("  %-16s %.4f\n", d.Name, best.Vals[i])
	}
	if savedPath != "" {
		fmt.Printf("Saved preset %q to %s\n", *savePreset, savedPath)
	}
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	// Mayfly's implementation assumes NC/2 parent pairs are available from both
	// male and female populations.
	cfg.NC = 2 * pop
	// Keep at least one mutation to avoid stalling on small populations.
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
