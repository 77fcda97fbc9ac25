// Package config provides configuration loading and access for the grass field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all scene configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Wind      WindConfig      `yaml:"wind"`
	Grass     GrassConfig     `yaml:"grass"`
	Camera    CameraConfig    `yaml:"camera"`
	Plane     PlaneConfig     `yaml:"plane"`
	Quality   QualityConfig   `yaml:"quality"`
	Perf      PerfConfig      `yaml:"perf"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width           int        `yaml:"width"`
	Height          int        `yaml:"height"`
	TargetFPS       int        `yaml:"target_fps"`        // 0 = uncapped (vsync only)
	ResizeDebounce  float64    `yaml:"resize_debounce"`   // Seconds of quiet before a resize is applied
	MinPointerWidth int        `yaml:"min_pointer_width"` // Pointer interaction is ignored below this width
	Background      [3]float32 `yaml:"background"`
}

// WindConfig holds velocity field parameters.
type WindConfig struct {
	Decay                float64 `yaml:"decay"`                  // Per-step magnitude multiplier [0,1]
	Diffusion            float64 `yaml:"diffusion"`              // Blend toward 4-neighbour average [0,1]
	AdvectionStrength    float64 `yaml:"advection_strength"`     // Scales the semi-Lagrangian back-trace
	InjectionRadius      float64 `yaml:"injection_radius"`       // Gaussian radius in UV units
	InjectionStrength    float64 `yaml:"injection_strength"`     // Brush impulse scale
	InjectionStrengthMax float64 `yaml:"injection_strength_max"` // Hard cap on the impulse scale
	Strength             float64 `yaml:"strength"`               // Shader scale of wind displacement
	GlowLow              float64 `yaml:"glow_low"`               // Wind magnitude where tip glow starts
	GlowHigh             float64 `yaml:"glow_high"`              // Wind magnitude of full tip glow
	ParallelThreshold    int     `yaml:"parallel_threshold"`     // Resolution at which the step uses workers
}

// GrassConfig holds blade and field appearance parameters.
type GrassConfig struct {
	BladeHeight        float64    `yaml:"blade_height"`
	BladeWidth         float64    `yaml:"blade_width"`
	Segments           int        `yaml:"segments"`
	ClumpRadius        float64    `yaml:"clump_radius"`
	MaxWindOffsetRatio float64    `yaml:"max_wind_offset_ratio"` // Brush displacement cap as a fraction of blade height
	BendDamping        float64    `yaml:"bend_damping"`
	Turbulence         float64    `yaml:"turbulence"`
	Seed               int64      `yaml:"seed"`
	BaseColor          [3]float32 `yaml:"base_color"`
	TipColor           [3]float32 `yaml:"tip_color"`
	GlowColor          [3]float32 `yaml:"glow_color"`
}

// CameraConfig holds the fixed scene camera placement.
type CameraConfig struct {
	FovY      float64 `yaml:"fovy"`
	Height    float64 `yaml:"height"`
	Distance  float64 `yaml:"distance"`
	LookAhead float64 `yaml:"look_ahead"`
}

// PlaneConfig holds ground-plane sizing and scroll mapping.
type PlaneConfig struct {
	BaseWidth   float64 `yaml:"base_width"`   // World X extent at aspect 1
	BaseDepth   float64 `yaml:"base_depth"`   // World Z extent
	AspectClamp float64 `yaml:"aspect_clamp"` // Maximum aspect used for plane scale
	ScrollSpeed float64 `yaml:"scroll_speed"` // Plane depths scrolled per viewport height
	ScrollStep  float64 `yaml:"scroll_step"`  // Pixels per wheel notch
}

// QualityConfig holds the ordered tier table.
type QualityConfig struct {
	Tiers []TierConfig `yaml:"tiers"`
}

// TierConfig describes one quality tier.
type TierConfig struct {
	Name          string  `yaml:"name"`
	Instances     int     `yaml:"instances"`
	SimResolution int     `yaml:"sim_resolution"`
	DPRCap        float64 `yaml:"dpr_cap"`
	ClumpSize     int     `yaml:"clump_size"`
	Glow          bool    `yaml:"glow"`
	Turbulence    bool    `yaml:"turbulence"`
	Wind          bool    `yaml:"wind"`
}

// PerfConfig holds adaptive quality controller parameters.
type PerfConfig struct {
	EMAAlpha           float64         `yaml:"ema_alpha"`
	LagThresholdMS     float64         `yaml:"lag_threshold_ms"`
	LagFrames          int             `yaml:"lag_frames"`
	AllowUpgrades      bool            `yaml:"allow_upgrades"`
	UpgradeThresholdMS float64         `yaml:"upgrade_threshold_ms"`
	UpgradeFrames      int             `yaml:"upgrade_frames"`
	CooldownSec        float64         `yaml:"cooldown_sec"`
	Benchmark          BenchmarkConfig `yaml:"benchmark"`
	Initial            InitialConfig   `yaml:"initial"`
}

// BenchmarkConfig holds calibration benchmark parameters.
type BenchmarkConfig struct {
	Enabled        bool               `yaml:"enabled"`
	WarmupFrames   int                `yaml:"warmup_frames"`
	DurationSec    float64            `yaml:"duration_sec"`
	MinSamples     int                `yaml:"min_samples"`
	TailPercentile float64            `yaml:"tail_percentile"`
	TailRatio      float64            `yaml:"tail_ratio"` // Tail is poor when tail > median * ratio
	Breakpoints    []BreakpointConfig `yaml:"breakpoints"`
	CoreCaps       []CoreCapConfig    `yaml:"core_caps"`
}

// BreakpointConfig maps a minimum median frame rate to a tier.
type BreakpointConfig struct {
	Tier   string  `yaml:"tier"`
	MinFPS float64 `yaml:"min_fps"`
}

// CoreCapConfig caps the selectable tier on machines with few logical cores.
type CoreCapConfig struct {
	Cores   int    `yaml:"cores"`
	MaxTier string `yaml:"max_tier"`
}

// InitialConfig holds the pre-timing tier heuristic thresholds.
type InitialConfig struct {
	SmallWidth float64 `yaml:"small_width"`
	LargeWidth float64 `yaml:"large_width"`
	HighDPR    float64 `yaml:"high_dpr"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxWindOffset    float32       // Grass.BladeHeight * Grass.MaxWindOffsetRatio
	LagThreshold     time.Duration // Perf.LagThresholdMS
	UpgradeThreshold time.Duration // Perf.UpgradeThresholdMS
	Cooldown         time.Duration // Perf.CooldownSec
	ResizeDebounce   time.Duration // Screen.ResizeDebounce
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file. Lists such as the tier
		// table are replaced wholesale.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the structural invariants the scene relies on.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Quality.Tiers) == 0 {
		errs = append(errs, errors.New("quality.tiers is empty"))
	}
	seen := make(map[string]bool, len(c.Quality.Tiers))
	for i, t := range c.Quality.Tiers {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("quality.tiers[%d]: missing name", i))
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("quality.tiers[%d]: duplicate tier %q", i, t.Name))
		}
		seen[t.Name] = true
		if t.Instances <= 0 {
			errs = append(errs, fmt.Errorf("quality.tiers[%d]: instances must be positive", i))
		}
		if t.SimResolution < 2 {
			errs = append(errs, fmt.Errorf("quality.tiers[%d]: sim_resolution must be at least 2", i))
		}
		if t.ClumpSize < 1 {
			errs = append(errs, fmt.Errorf("quality.tiers[%d]: clump_size must be at least 1", i))
		}
		if t.DPRCap <= 0 {
			errs = append(errs, fmt.Errorf("quality.tiers[%d]: dpr_cap must be positive", i))
		}
		if i > 0 && t.Instances < c.Quality.Tiers[i-1].Instances {
			errs = append(errs, fmt.Errorf("quality.tiers[%d]: instance budget decreases from %q", i, c.Quality.Tiers[i-1].Name))
		}
	}

	for i, bp := range c.Perf.Benchmark.Breakpoints {
		if !seen[bp.Tier] {
			errs = append(errs, fmt.Errorf("perf.benchmark.breakpoints[%d]: unknown tier %q", i, bp.Tier))
		}
		if i > 0 && bp.MinFPS > c.Perf.Benchmark.Breakpoints[i-1].MinFPS {
			errs = append(errs, fmt.Errorf("perf.benchmark.breakpoints[%d]: breakpoints must be ordered highest first", i))
		}
	}
	for i, cc := range c.Perf.Benchmark.CoreCaps {
		if !seen[cc.MaxTier] {
			errs = append(errs, fmt.Errorf("perf.benchmark.core_caps[%d]: unknown tier %q", i, cc.MaxTier))
		}
	}

	if c.Grass.Segments < 1 {
		errs = append(errs, errors.New("grass.segments must be at least 1"))
	}
	if c.Plane.AspectClamp <= 0 {
		errs = append(errs, errors.New("plane.aspect_clamp must be positive"))
	}
	if c.Perf.EMAAlpha <= 0 || c.Perf.EMAAlpha > 1 {
		errs = append(errs, errors.New("perf.ema_alpha must be in (0, 1]"))
	}

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MaxWindOffset = float32(c.Grass.BladeHeight * c.Grass.MaxWindOffsetRatio)
	c.Derived.LagThreshold = msDuration(c.Perf.LagThresholdMS)
	c.Derived.UpgradeThreshold = msDuration(c.Perf.UpgradeThresholdMS)
	c.Derived.Cooldown = secDuration(c.Perf.CooldownSec)
	c.Derived.ResizeDebounce = secDuration(c.Screen.ResizeDebounce)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func secDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
