package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Grass layout seed (0 = config grass.seed)")
	tier := flag.String("tier", "", "Starting quality tier (empty = viewport heuristic)")
	noBenchmark := flag.Bool("no-benchmark", false, "Skip calibration and start monitoring immediately")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Meadow")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(rl.KeyEscape)

	scene, err := game.NewScene(game.Options{
		Seed:        *seed,
		InitialTier: *tier,
		NoBenchmark: *noBenchmark,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		Width:       float32(rl.GetScreenWidth()),
		Height:      float32(rl.GetScreenHeight()),
		DPR:         rl.GetWindowScaleDPI().X,
		Cores:       runtime.NumCPU(),
	})
	if err != nil {
		slog.Error("failed to create scene", "error", err)
		os.Exit(1)
	}
	defer scene.Dispose()

	scene.Mount()
	defer scene.Unmount()

	for !rl.WindowShouldClose() {
		scene.Update(float32(rl.GetTime()), rl.GetFrameTime())
		scene.Draw()

		if *maxFrames > 0 && scene.Frame() >= *maxFrames {
			slog.Info("max frames reached", "frame", scene.Frame())
			break
		}
	}
}
