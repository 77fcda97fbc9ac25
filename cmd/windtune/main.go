package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/quality"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval              int     `csv:"eval"`
	Fitness           float64 `csv:"fitness"`
	Decay             float64 `csv:"decay"`
	Diffusion         float64 `csv:"diffusion"`
	AdvectionStrength float64 `csv:"advection_strength"`
	InjectionRadius   float64 `csv:"injection_radius"`
	InjectionStrength float64 `csv:"injection_strength"`
	MeanPeak          float64 `csv:"mean_peak"`
	MeanHalfLife      float64 `csv:"mean_half_life"`
	MeanCoverage      float64 `csv:"mean_coverage"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// tierResolutions returns the distinct sim resolutions of the tier table.
func tierResolutions(cfg *config.Config) ([]int, error) {
	table, err := quality.NewTable(cfg.Quality)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var out []int
	for _, p := range table {
		if !seen[p.SimResolution] {
			seen[p.SimResolution] = true
			out = append(out, p.SimResolution)
		}
	}
	sort.Ints(out)
	return out, nil
}

func meanWake(wakes []Wake) (peak, half, cover float64) {
	if len(wakes) == 0 {
		return 0, 0, 0
	}
	for _, w := range wakes {
		peak += w.Peak
		half += w.HalfLife
		cover += w.Coverage
	}
	n := float64(len(wakes))
	return peak / n, half / n, cover / n
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	targetPeak := flag.Float64("target-peak", 1.0, "Target peak wind magnitude at stroke release")
	targetHalfLife := flag.Float64("target-half-life", 0.6, "Target wake half-life in seconds")
	targetCoverage := flag.Float64("target-coverage", 0.05, "Target fraction of the field stirred by one stroke")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	resolutions, err := tierResolutions(baseCfg)
	if err != nil {
		log.Fatalf("failed to read tier table: %v", err)
	}

	params := NewParamVector(baseCfg)
	targets := Targets{Peak: *targetPeak, HalfLife: *targetHalfLife, Coverage: *targetCoverage}
	evaluator := NewEvaluator(params, baseCfg, resolutions, targets)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; each one is already parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	headerWritten := false

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		peak, half, cover := meanWake(evaluator.LastWakes())
		rec := []evalRecord{{
			Eval:              evalCount,
			Fitness:           fitness,
			Decay:             clamped[0],
			Diffusion:         clamped[1],
			AdvectionStrength: clamped[2],
			InjectionRadius:   clamped[3],
			InjectionStrength: clamped[4],
			MeanPeak:          peak,
			MeanHalfLife:      half,
			MeanCoverage:      cover,
		}}
		if headerWritten {
			err = gocsv.MarshalWithoutHeaders(rec, logFile)
		} else {
			err = gocsv.Marshal(rec, logFile)
			headerWritten = true
		}
		if err != nil {
			log.Printf("failed to write log row: %v", err)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: fitness=%.4f peak=%.3f half-life=%.2fs coverage=%.3f (best=%.4f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, fitness, peak, half, cover, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES wind tuning with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Resolutions per evaluation: %v\n", resolutions)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
