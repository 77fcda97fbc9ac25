package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestDurationsMS(t *testing.T) {
	got := DurationsMS([]time.Duration{20 * time.Millisecond, 5 * time.Millisecond, 1500 * time.Microsecond})
	want := []float64{1.5, 5, 20}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("DurationsMS[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEMA(t *testing.T) {
	e := EMA{Alpha: 0.5}
	if e.Primed() {
		t.Error("new EMA should not be primed")
	}

	if got := e.Add(10 * time.Millisecond); got != 10*time.Millisecond {
		t.Errorf("first sample should seed the average, got %v", got)
	}
	if got := e.Add(20 * time.Millisecond); got != 15*time.Millisecond {
		t.Errorf("second sample average %v, want 15ms", got)
	}

	e.Reset()
	if e.Primed() || e.Value() != 0 {
		t.Error("Reset should clear the average")
	}
}
