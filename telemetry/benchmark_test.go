package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/quality"
)

func testBenchmark(t *testing.T) *Benchmark {
	t.Helper()
	b, err := NewBenchmark(config.Default().Perf.Benchmark)
	if err != nil {
		t.Fatalf("NewBenchmark error: %v", err)
	}
	return b
}

// repeatMS returns n copies of ms.
func repeatMS(n int, ms float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = ms
	}
	return out
}

func TestBenchmarkTailPenalty(t *testing.T) {
	b := testBenchmark(t)

	// Median 40ms (25 fps => low), p90 70ms > 40*1.5 => one step down
	samples := append(repeatMS(80, 40), repeatMS(20, 70)...)
	res := b.selectTier(samples, 8)

	if res.MedianMS != 40 || res.TailMS != 70 {
		t.Fatalf("median %v tail %v, want 40 and 70", res.MedianMS, res.TailMS)
	}
	if !res.TailPenalty {
		t.Error("expected tail penalty")
	}
	if res.Tier != quality.TierMinimal {
		t.Errorf("tier = %v, want minimal", res.Tier)
	}
}

func TestBenchmarkBreakpoints(t *testing.T) {
	b := testBenchmark(t)
	tests := []struct {
		name string
		ms   float64
		want quality.Tier
	}{
		{"120 fps", 1000.0 / 120, quality.TierUltra},
		{"50 fps", 20, quality.TierHigh},
		{"30 fps", 1000.0 / 30, quality.TierMedium},
		{"22 fps", 1000.0 / 22, quality.TierLow},
		{"10 fps", 100, quality.TierMinimal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := b.selectTier(repeatMS(60, tt.ms), 16)
			if res.Tier != tt.want {
				t.Errorf("tier = %v, want %v", res.Tier, tt.want)
			}
			if res.TailPenalty || res.CoreCapped {
				t.Errorf("unexpected penalty or cap: %+v", res)
			}
		})
	}
}

func TestBenchmarkCoreCaps(t *testing.T) {
	b := testBenchmark(t)
	fast := repeatMS(60, 1000.0/120)

	tests := []struct {
		cores int
		want  quality.Tier
	}{
		{2, quality.TierLow},
		{4, quality.TierHigh},
		{8, quality.TierUltra},
	}
	for _, tt := range tests {
		res := b.selectTier(fast, tt.cores)
		if res.Tier != tt.want {
			t.Errorf("%d cores: tier = %v, want %v", tt.cores, res.Tier, tt.want)
		}
		if res.CoreCapped != (tt.want != quality.TierUltra) {
			t.Errorf("%d cores: CoreCapped = %v", tt.cores, res.CoreCapped)
		}
	}
}

func TestBenchmarkTooFewSamples(t *testing.T) {
	b := testBenchmark(t)
	res := b.selectTier(repeatMS(5, 5), 8)
	if !res.Fallback || res.Tier != quality.TierMedium {
		t.Errorf("expected medium fallback, got %+v", res)
	}
}

func TestBenchmarkRecord(t *testing.T) {
	cfg := config.Default().Perf.Benchmark
	cfg.WarmupFrames = 3
	cfg.DurationSec = 0.1
	b, err := NewBenchmark(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if b.Record(time.Second) {
			t.Fatal("warmup frame completed the benchmark")
		}
	}
	if b.Samples() != 0 {
		t.Fatalf("warmup frames recorded: %d", b.Samples())
	}

	frames := 0
	for !b.Record(10 * time.Millisecond) {
		frames++
		if frames > 100 {
			t.Fatal("benchmark never finished")
		}
	}
	if b.Samples() != 10 {
		t.Errorf("recorded %d samples, want 10", b.Samples())
	}

	// Finished benchmarks ignore further frames
	b.Record(10 * time.Millisecond)
	if b.Samples() != 10 {
		t.Errorf("recorded after done: %d", b.Samples())
	}

	b.Reset()
	if b.Done() || b.Samples() != 0 {
		t.Error("Reset did not clear the benchmark")
	}
}

func TestNewBenchmarkUnknownTier(t *testing.T) {
	cfg := config.Default().Perf.Benchmark
	cfg.Breakpoints = []config.BreakpointConfig{{Tier: "turbo", MinFPS: 90}}
	if _, err := NewBenchmark(cfg); err == nil {
		t.Error("expected error for unknown breakpoint tier")
	}
}
