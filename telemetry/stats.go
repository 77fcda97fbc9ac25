package telemetry

import (
	"sort"
	"time"
)

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// DurationsMS converts durations to sorted milliseconds.
func DurationsMS(ds []time.Duration) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = float64(d) / float64(time.Millisecond)
	}
	sort.Float64s(out)
	return out
}

// EMA is an exponential moving average of durations. The first sample
// seeds the average.
type EMA struct {
	Alpha  float64
	value  float64
	primed bool
}

// Add folds a sample into the average and returns the new value.
func (e *EMA) Add(d time.Duration) time.Duration {
	x := float64(d)
	if !e.primed {
		e.value = x
		e.primed = true
	} else {
		e.value = e.Alpha*x + (1-e.Alpha)*e.value
	}
	return time.Duration(e.value)
}

// Value returns the current average, zero before any sample.
func (e *EMA) Value() time.Duration {
	return time.Duration(e.value)
}

// Primed reports whether at least one sample has been added.
func (e *EMA) Primed() bool {
	return e.primed
}

// Reset discards all history.
func (e *EMA) Reset() {
	e.value = 0
	e.primed = false
}
