// Package main replays recorded calibration frames through the tier
// selection benchmark, for tuning breakpoints offline.
package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/telemetry"
)

func main() {
	framesPath := flag.String("frames", "", "Path to frames.csv written by a calibration run")
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	cores := flag.Int("cores", runtime.NumCPU(), "Logical core count to apply hardware caps for")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *framesPath == "" {
		slog.Error("-frames is required")
		os.Exit(1)
	}

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	samples, err := telemetry.ReadFrames(*framesPath)
	if err != nil {
		slog.Error("failed to read frames", "error", err)
		os.Exit(1)
	}

	bench, err := telemetry.NewBenchmark(cfg.Perf.Benchmark)
	if err != nil {
		slog.Error("failed to create benchmark", "error", err)
		os.Exit(1)
	}

	used := 0
	for _, s := range samples {
		used++
		if bench.Record(time.Duration(s.FrameMS * float64(time.Millisecond))) {
			break
		}
	}

	res := bench.Result(*cores)
	slog.Info("benchmark replay",
		"frames", len(samples),
		"consumed", used,
		"complete", bench.Done(),
		"cores", *cores,
		"result", res,
	)
}
