package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/wind"
)

const (
	stepDT        = 1.0 / 60.0
	strokeSteps   = 30  // Steps the brush spends crossing the field
	maxDecaySteps = 600 // Half-life is capped at ten seconds
	coverageFrac  = 0.25
)

// Targets are the desired wake properties.
type Targets struct {
	Peak     float64 // Peak magnitude at release
	HalfLife float64 // Seconds for the peak to halve after release
	Coverage float64 // Fraction of cells above coverageFrac of the peak
}

// Wake is what one scripted stroke produced.
type Wake struct {
	Resolution int
	Peak       float64
	HalfLife   float64
	Coverage   float64
}

// measureWake drags a brush left to right across the middle of a fresh
// field, then lets the wake decay.
func measureWake(p wind.Params, res int, dirScale float32) Wake {
	f := wind.NewField(res, p, 0)
	defer f.Dispose()

	for i := 0; i < strokeSteps; i++ {
		t := float32(i) / float32(strokeSteps-1)
		f.Step(wind.Brush{
			UV:     [2]float32{0.2 + 0.6*t, 0.5},
			Dir:    [2]float32{dirScale, 0},
			Active: true,
		}, stepDT)
	}

	peak, _, _ := f.Peak()
	w := Wake{
		Resolution: res,
		Peak:       float64(peak),
		Coverage:   coverage(f.Current(), peak*coverageFrac),
	}
	if peak <= 0 {
		return w
	}

	for n := 1; n <= maxDecaySteps; n++ {
		f.Step(wind.NoBrush, stepDT)
		if m, _, _ := f.Peak(); m <= peak/2 {
			w.HalfLife = float64(n) * stepDT
			return w
		}
	}
	w.HalfLife = maxDecaySteps * stepDT
	return w
}

// coverage is the fraction of cells whose magnitude exceeds threshold.
func coverage(v []float32, threshold float32) float64 {
	cells := len(v) / 2
	if cells == 0 {
		return 0
	}
	t2 := threshold * threshold
	n := 0
	for i := 0; i < cells; i++ {
		x, y := v[2*i], v[2*i+1]
		if x*x+y*y > t2 {
			n++
		}
	}
	return float64(n) / float64(cells)
}

// Evaluator scores wind parameters over a set of sim resolutions.
type Evaluator struct {
	params      *ParamVector
	baseConfig  *config.Config
	resolutions []int
	targets     Targets
	dirScale    float32

	mu        sync.Mutex
	lastWakes []Wake
}

// NewEvaluator creates a new evaluator. The stroke moves at half the
// pointer displacement cap every step.
func NewEvaluator(params *ParamVector, baseCfg *config.Config, resolutions []int, targets Targets) *Evaluator {
	return &Evaluator{
		params:      params,
		baseConfig:  baseCfg,
		resolutions: resolutions,
		targets:     targets,
		dirScale:    baseCfg.Derived.MaxWindOffset * 0.5,
	}
}

// LastWakes returns the wakes measured by the most recent Evaluate call.
func (e *Evaluator) LastWakes() []Wake {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastWakes
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Resolutions run in parallel.
func (e *Evaluator) Evaluate(x []float64) float64 {
	cfg := *e.baseConfig
	e.params.ApplyToConfig(&cfg, x)
	p := wind.ParamsFromConfig(cfg.Wind)

	wakes := make([]Wake, len(e.resolutions))
	var wg sync.WaitGroup
	for i, res := range e.resolutions {
		wg.Add(1)
		go func(idx, r int) {
			defer wg.Done()
			wakes[idx] = measureWake(p, r, e.dirScale)
		}(i, res)
	}
	wg.Wait()

	e.mu.Lock()
	e.lastWakes = wakes
	e.mu.Unlock()

	return score(wakes, e.targets)
}

// score is the mean squared relative error against the targets plus the
// squared coefficient of variation of each metric across resolutions, so a
// tier change does not change how the wind feels.
func score(wakes []Wake, t Targets) float64 {
	if len(wakes) == 0 {
		return math.Inf(1)
	}

	peaks := make([]float64, len(wakes))
	halves := make([]float64, len(wakes))
	covers := make([]float64, len(wakes))
	var err float64
	for i, w := range wakes {
		err += relSq(w.Peak, t.Peak) + relSq(w.HalfLife, t.HalfLife) + relSq(w.Coverage, t.Coverage)
		peaks[i] = w.Peak
		halves[i] = w.HalfLife
		covers[i] = w.Coverage
	}
	err /= float64(len(wakes))

	return err + cvSq(peaks) + cvSq(halves) + cvSq(covers)
}

func relSq(v, target float64) float64 {
	if target <= 0 {
		return v * v
	}
	d := (v - target) / target
	return d * d
}

// cvSq is the squared coefficient of variation, zero for a single value.
func cvSq(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if mean == 0 {
		return 0
	}
	c := std / mean
	return c * c
}
