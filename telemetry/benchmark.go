package telemetry

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/quality"
)

type breakpoint struct {
	tier   quality.Tier
	minFPS float64
}

type coreCap struct {
	cores int
	max   quality.Tier
}

// Benchmark collects frame intervals during calibration and maps them to a
// starting tier.
type Benchmark struct {
	warmup         int
	duration       time.Duration
	minSamples     int
	tailPercentile float64
	tailRatio      float64
	breakpoints    []breakpoint // highest fps first
	caps           []coreCap

	seen    int
	elapsed time.Duration
	samples []float64 // milliseconds
	done    bool
}

// NewBenchmark creates a benchmark from configuration.
func NewBenchmark(cfg config.BenchmarkConfig) (*Benchmark, error) {
	b := &Benchmark{
		warmup:         cfg.WarmupFrames,
		duration:       time.Duration(cfg.DurationSec * float64(time.Second)),
		minSamples:     cfg.MinSamples,
		tailPercentile: cfg.TailPercentile,
		tailRatio:      cfg.TailRatio,
	}
	for _, bp := range cfg.Breakpoints {
		t, err := quality.ParseTier(bp.Tier)
		if err != nil {
			return nil, fmt.Errorf("benchmark breakpoint: %w", err)
		}
		b.breakpoints = append(b.breakpoints, breakpoint{tier: t, minFPS: bp.MinFPS})
	}
	sort.SliceStable(b.breakpoints, func(i, j int) bool {
		return b.breakpoints[i].minFPS > b.breakpoints[j].minFPS
	})
	for _, cc := range cfg.CoreCaps {
		t, err := quality.ParseTier(cc.MaxTier)
		if err != nil {
			return nil, fmt.Errorf("benchmark core cap: %w", err)
		}
		b.caps = append(b.caps, coreCap{cores: cc.Cores, max: t})
	}
	return b, nil
}

// Record adds one frame interval. Warmup frames are discarded. It returns
// true once the recording window has elapsed.
func (b *Benchmark) Record(interval time.Duration) (done bool) {
	if b.done {
		return true
	}
	b.seen++
	if b.seen <= b.warmup {
		return false
	}
	b.samples = append(b.samples, float64(interval)/float64(time.Millisecond))
	b.elapsed += interval
	if b.elapsed >= b.duration {
		b.done = true
	}
	return b.done
}

// Done reports whether recording has finished.
func (b *Benchmark) Done() bool {
	return b.done
}

// Samples returns the number of recorded (post-warmup) intervals.
func (b *Benchmark) Samples() int {
	return len(b.samples)
}

// Reset discards all samples so calibration can run again.
func (b *Benchmark) Reset() {
	b.seen = 0
	b.elapsed = 0
	b.samples = b.samples[:0]
	b.done = false
}

// BenchmarkResult is the outcome of one calibration run.
type BenchmarkResult struct {
	Tier        quality.Tier
	Samples     int
	MedianMS    float64
	TailMS      float64
	MedianFPS   float64
	CoreCapped  bool
	TailPenalty bool
	Fallback    bool // too few samples, default tier used
}

// LogValue implements slog.LogValuer for structured logging.
func (r BenchmarkResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("tier", r.Tier.String()),
		slog.Int("samples", r.Samples),
		slog.Float64("median_ms", r.MedianMS),
		slog.Float64("tail_ms", r.TailMS),
		slog.Float64("median_fps", r.MedianFPS),
		slog.Bool("core_capped", r.CoreCapped),
		slog.Bool("tail_penalty", r.TailPenalty),
		slog.Bool("fallback", r.Fallback),
	)
}

// Result selects a tier from the recorded samples for a machine with the
// given number of logical cores.
func (b *Benchmark) Result(cores int) BenchmarkResult {
	return b.selectTier(b.samples, cores)
}

func (b *Benchmark) selectTier(samplesMS []float64, cores int) BenchmarkResult {
	res := BenchmarkResult{Samples: len(samplesMS)}
	if len(samplesMS) < b.minSamples || len(samplesMS) == 0 {
		res.Tier = quality.TierMedium
		res.Fallback = true
		return res
	}

	sorted := make([]float64, len(samplesMS))
	copy(sorted, samplesMS)
	sort.Float64s(sorted)

	res.MedianMS = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	res.TailMS = stat.Quantile(b.tailPercentile, stat.Empirical, sorted, nil)
	if res.MedianMS > 0 {
		res.MedianFPS = 1000 / res.MedianMS
	} else {
		res.MedianFPS = math.Inf(1)
	}

	tier := quality.TierMinimal
	for _, bp := range b.breakpoints {
		if res.MedianFPS >= bp.minFPS {
			tier = bp.tier
			break
		}
	}

	for _, c := range b.caps {
		if cores > 0 && cores <= c.cores && tier > c.max {
			tier = c.max
			res.CoreCapped = true
		}
	}

	if b.tailRatio > 0 && res.TailMS > res.MedianMS*b.tailRatio && tier > quality.TierMinimal {
		tier--
		res.TailPenalty = true
	}

	res.Tier = tier
	return res
}
