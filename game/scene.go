// Package game hosts the grass scene: it owns the simulation, renderer and
// adaptive quality loop and runs them in a fixed per-frame order.
package game

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/grass"
	"github.com/pthm-cable/meadow/quality"
	"github.com/pthm-cable/meadow/renderer"
	"github.com/pthm-cable/meadow/telemetry"
	"github.com/pthm-cable/meadow/ui"
	"github.com/pthm-cable/meadow/wind"
)

// maxStepDT bounds the simulation step after a stall.
const maxStepDT = 1.0 / 20.0

// Options configures scene creation.
type Options struct {
	Seed        int64  // Layout seed (0 = config grass.seed)
	InitialTier string // Forced starting tier (empty = viewport heuristic)
	NoBenchmark bool   // Skip calibration and start monitoring immediately
	LogStats    bool   // Log perf stats every stats window
	OutputDir   string // CSV output directory (empty = disabled)

	Width, Height float32 // Logical viewport size
	DPR           float32 // Device pixel ratio
	Cores         int     // Logical core count for the calibration cap
}

// Scene is the interactive grass field.
type Scene struct {
	opts Options

	quality     *quality.Manager
	monitor     *telemetry.Monitor
	perf        *telemetry.PerfCollector
	output      *telemetry.OutputManager
	unsubscribe func()

	// Simulation
	wind    *wind.Field
	grass   *grass.Field
	plane   *grass.Plane
	pointer *grass.Pointer
	camera  *camera.Camera

	// Rendering
	windTex    *renderer.WindTexture
	grassR     *renderer.GrassRenderer
	background *renderer.BackgroundRenderer
	target     *renderer.SceneTarget

	// UI
	hud   *ui.HUD
	debug *ui.DebugPanel

	profile    quality.Profile
	hasProfile bool

	// Viewport
	width, height float32
	dpr           float32
	resize        resizeState

	scrollY float32
	brush   wind.Brush

	time         float32
	frame        int64
	lastCPU      time.Duration
	statsElapsed time.Duration
	mounted      bool
	visible      bool
	disposed     bool
}

// NewScene builds the scene. Must be called after the raylib window is
// created. The scene starts unmounted; call Mount to attach input.
func NewScene(opts Options) (*Scene, error) {
	cfg := config.Cfg()

	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = float32(cfg.Screen.Width), float32(cfg.Screen.Height)
	}
	if opts.DPR <= 0 {
		opts.DPR = 1
	}
	if opts.Cores <= 0 {
		opts.Cores = 1
	}

	table, err := quality.NewTable(cfg.Quality)
	if err != nil {
		return nil, err
	}

	initial := quality.InitialTier(opts.Width, opts.DPR, cfg.Perf.Initial)
	if opts.InitialTier != "" {
		t, err := quality.ParseTier(opts.InitialTier)
		if err != nil {
			return nil, fmt.Errorf("initial tier: %w", err)
		}
		initial = t
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Grass.Seed
	}

	s := &Scene{
		opts:    opts,
		quality: quality.NewManager(table, initial),
		perf:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:  output,
		width:   opts.Width,
		height:  opts.Height,
		dpr:     opts.DPR,
		visible: true,
	}

	monCfg := *cfg
	if opts.NoBenchmark {
		monCfg.Perf.Benchmark.Enabled = false
	}
	s.monitor, err = telemetry.NewMonitor(s.quality, &monCfg, opts.Cores)
	if err != nil {
		output.Close()
		return nil, err
	}
	s.monitor.OnChange = s.recordTierChange

	// Simulation state, sized for the largest tier up front
	start := s.quality.Current()
	s.wind = wind.NewField(start.SimResolution, wind.ParamsFromConfig(cfg.Wind), cfg.Wind.ParallelThreshold)
	s.grass = grass.NewField(table.MaxInstances(), grass.BladeSpecFromConfig(cfg.Grass),
		start.ClumpSize, float32(cfg.Grass.ClumpRadius), uint64(seed))
	s.plane = grass.NewPlane(cfg.Plane)
	s.pointer = grass.NewPointer(float32(cfg.Screen.MinPointerWidth), cfg.Derived.MaxWindOffset)
	s.camera = camera.New(float32(cfg.Camera.Height), float32(cfg.Camera.Distance),
		float32(cfg.Camera.LookAhead), float32(cfg.Camera.FovY))

	// GPU resources
	format := wind.SelectFormat(renderer.ProbeCapabilities())
	if format == wind.FormatNone {
		slog.Warn("no float texture format available, wind disabled")
	}
	s.windTex = renderer.NewWindTexture(start.SimResolution, format)
	s.grassR = renderer.NewGrassRenderer(table.MaxInstances())
	s.grassR.Init(cfg.Grass, cfg.Wind)
	s.grassR.SetWindTexture(s.windTex.Texture())
	s.background = renderer.NewBackgroundRenderer(cfg.Screen.Background)
	s.background.Init()
	s.target = renderer.NewSceneTarget()

	s.hud = ui.NewHUD()
	s.debug = ui.NewDebugPanel(float32(cfg.Wind.InjectionStrengthMax))

	s.applyViewport()
	s.unsubscribe = s.quality.Subscribe(s.applyProfile)

	slog.Info("scene created",
		"seed", seed,
		"tier", start.Tier.String(),
		"wind_format", format.String(),
		"max_instances", table.MaxInstances(),
		"max_sim_resolution", table.MaxSimResolution(),
		"viewport", fmt.Sprintf("%.0fx%.0f@%.2f", s.width, s.height, s.dpr),
	)

	s.monitor.Start()
	return s, nil
}

// applyProfile reconfigures every consumer for a new quality profile.
func (s *Scene) applyProfile(p quality.Profile) {
	first := !s.hasProfile
	s.profile = p
	s.hasProfile = true

	if s.wind.Resolution() != p.SimResolution {
		s.wind.Resize(p.SimResolution)
		s.windTex.Resize(p.SimResolution)
		s.grassR.SetWindTexture(s.windTex.Texture())
	}

	s.grass.SetCount(p.Instances)
	if s.grass.SetClumpSize(p.ClumpSize) || first {
		s.grassR.SetGeometry(s.grass.Geometry())
	}

	s.target.Resize(s.width, s.height, s.dpr, p.DPRCap)

	if !s.windEnabled() {
		s.wind.Reset()
		s.windTex.Clear()
	}

	slog.Debug("quality profile applied", "profile", p, "count", s.grass.Count())
}

// applyViewport propagates the current logical size to every consumer.
func (s *Scene) applyViewport() {
	s.camera.Resize(s.width, s.height)
	s.plane.Resize(s.width, s.height)
	s.grass.Layout(s.plane.Extent())
	s.grassR.SetInstances(s.grass.Instances())
	if s.hasProfile {
		s.target.Resize(s.width, s.height, s.dpr, s.profile.DPRCap)
	}
}

func (s *Scene) windEnabled() bool {
	return s.profile.Features.Wind && s.windTex.Format() != wind.FormatNone
}

// Mount attaches pointer input.
func (s *Scene) Mount() {
	s.mounted = true
}

// Unmount detaches pointer input. Rendering continues without a brush.
func (s *Scene) Unmount() {
	s.mounted = false
	s.pointer.Leave()
	s.brush = wind.NoBrush
}

// SetScroll sets the page scroll position in logical pixels.
func (s *Scene) SetScroll(y float32) {
	s.scrollY = y
}

// Scroll returns the page scroll position.
func (s *Scene) Scroll() float32 {
	return s.scrollY
}

// Frame returns the number of updated frames.
func (s *Scene) Frame() int64 {
	return s.frame
}

// Update advances one frame: input, brush, wind step, texture upload.
// t is the scene time in seconds and dt the frame delta.
func (s *Scene) Update(t, dt float32) {
	if s.disposed {
		return
	}
	s.time = t
	s.pollVisibility()

	interval := s.perf.RecordFrame()
	if interval > 0 && s.visible {
		s.monitor.Frame(interval, s.lastCPU)
		s.recordFrame(interval)
	}

	s.perf.StartFrame()
	s.perf.StartPhase(telemetry.PhaseInput)
	if s.mounted {
		s.handleInput()
	}
	s.applyPendingResize()

	if s.mounted {
		s.brush = s.pointer.Frame(s.camera, s.width, s.height, s.plane)
	} else {
		s.brush = wind.NoBrush
	}

	s.perf.StartPhase(telemetry.PhaseWindStep)
	if s.windEnabled() {
		if dt > maxStepDT {
			dt = maxStepDT
		}
		s.wind.Step(s.brush, dt)
	}

	s.perf.StartPhase(telemetry.PhaseWindUpload)
	if s.windEnabled() {
		s.windTex.Upload(s.wind)
	}

	s.frame++
}

// Draw renders the grass into the scene target, blits it to the window and
// draws the HUD.
func (s *Scene) Draw() {
	if s.disposed {
		return
	}

	s.perf.StartPhase(telemetry.PhaseGrassDraw)
	pw, ph := s.target.PixelSize()
	s.target.Begin()
	rl.ClearBackground(rl.Black)
	s.background.Draw(s.time, pw, ph)
	s.grassR.Draw(s.grass.Count(), s.camera, renderer.GrassUniforms{
		Time:         s.time,
		ScrollOffset: s.plane.ScrollOffset(s.scrollY),
		Extent:       s.plane.Extent(),
		Turbulence:   s.profile.Features.Turbulence,
		Glow:         s.profile.Features.Glow && s.windEnabled(),
	})
	s.target.End()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	s.perf.StartPhase(telemetry.PhaseBlit)
	s.target.Blit()

	s.perf.StartPhase(telemetry.PhaseHUD)
	s.drawUI()

	s.lastCPU = s.perf.EndFrame()
	rl.EndDrawing()
}

// Dispose releases every GPU resource and closes output files. The scene
// cannot be used afterwards.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.grassR.Unload()
	s.windTex.Unload()
	s.background.Unload()
	s.target.Unload()
	s.wind.Dispose()

	if err := s.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	slog.Info("scene disposed", "frames", s.frame)
}
