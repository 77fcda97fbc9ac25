package telemetry

import (
	"log/slog"
	"sort"
	"time"
)

// Phase names for one rendered frame.
const (
	PhaseInput      = "input"
	PhaseWindStep   = "wind_step"
	PhaseWindUpload = "wind_upload"
	PhaseGrassDraw  = "grass_draw"
	PhaseBlit       = "blit"
	PhaseHUD        = "hud"
)

// framePhases is the fixed order used for logging and CSV columns.
var framePhases = []string{
	PhaseInput, PhaseWindStep, PhaseWindUpload, PhaseGrassDraw, PhaseBlit, PhaseHUD,
}

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration // CPU time between StartFrame and EndFrame
	Phases        map[string]time.Duration
}

// PerfCollector tracks frame cost over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Wall-clock interval between consecutive RecordFrame calls
	lastFrameTime time.Time
	frameInterval time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to aggregate over (e.g., 120 for 2 seconds at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing the CPU work of a frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration, len(framePhases))
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame finishes timing the current frame, records the sample and
// returns the frame's CPU time.
func (p *PerfCollector) EndFrame() time.Duration {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Phases:        p.currentPhases,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	return sample.FrameDuration
}

// RecordFrame marks a frame boundary and returns the interval since the
// previous one (zero on the first call).
func (p *PerfCollector) RecordFrame() time.Duration {
	return p.RecordFrameAt(time.Now())
}

// RecordFrameAt is RecordFrame with an explicit timestamp.
func (p *PerfCollector) RecordFrameAt(now time.Time) time.Duration {
	var d time.Duration
	if !p.lastFrameTime.IsZero() {
		d = now.Sub(p.lastFrameTime)
		p.frameInterval = d
	}
	p.lastFrameTime = now
	return d
}

// ResetInterval forgets the last frame boundary so the next interval is not
// inflated by a pause (window hidden, minimized).
func (p *PerfCollector) ResetInterval() {
	p.lastFrameTime = time.Time{}
	p.frameInterval = 0
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Frame CPU cost
	AvgFrameDuration time.Duration
	MinFrameDuration time.Duration
	MaxFrameDuration time.Duration
	P95FrameDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total frame time
	PhasePct map[string]float64

	// Wall-clock pacing
	FrameInterval time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameInterval > 0 {
		fps = float64(time.Second) / float64(p.frameInterval)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameInterval: p.frameInterval,
			FPS:           fps,
		}
	}

	var total time.Duration
	var minFrame, maxFrame time.Duration
	phaseSum := make(map[string]time.Duration)
	costs := make([]float64, 0, p.sampleCount)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.FrameDuration
		costs = append(costs, float64(s.FrameDuration))

		if i == 0 || s.FrameDuration < minFrame {
			minFrame = s.FrameDuration
		}
		if s.FrameDuration > maxFrame {
			maxFrame = s.FrameDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)
	sort.Float64s(costs)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	return PerfStats{
		AvgFrameDuration: avg,
		MinFrameDuration: minFrame,
		MaxFrameDuration: maxFrame,
		P95FrameDuration: time.Duration(Percentile(costs, 0.95)),
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		FrameInterval:    p.frameInterval,
		FPS:              fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgFrameDuration.Microseconds(),
		"p95_frame_us", s.P95FrameDuration.Microseconds(),
		"max_frame_us", s.MaxFrameDuration.Microseconds(),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range framePhases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrameDuration.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrameDuration.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrameDuration.Microseconds()),
		slog.Int64("p95_frame_us", s.P95FrameDuration.Microseconds()),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Frame         int64   `csv:"frame"`
	Tier          string  `csv:"tier"`
	AvgFrameUS    int64   `csv:"avg_frame_us"`
	MinFrameUS    int64   `csv:"min_frame_us"`
	MaxFrameUS    int64   `csv:"max_frame_us"`
	P95FrameUS    int64   `csv:"p95_frame_us"`
	FPS           float64 `csv:"fps"`
	InputPct      float64 `csv:"input_pct"`
	WindStepPct   float64 `csv:"wind_step_pct"`
	WindUploadPct float64 `csv:"wind_upload_pct"`
	GrassDrawPct  float64 `csv:"grass_draw_pct"`
	BlitPct       float64 `csv:"blit_pct"`
	HUDPct        float64 `csv:"hud_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(frame int64, tier string) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:         frame,
		Tier:          tier,
		AvgFrameUS:    s.AvgFrameDuration.Microseconds(),
		MinFrameUS:    s.MinFrameDuration.Microseconds(),
		MaxFrameUS:    s.MaxFrameDuration.Microseconds(),
		P95FrameUS:    s.P95FrameDuration.Microseconds(),
		FPS:           s.FPS,
		InputPct:      s.PhasePct[PhaseInput],
		WindStepPct:   s.PhasePct[PhaseWindStep],
		WindUploadPct: s.PhasePct[PhaseWindUpload],
		GrassDrawPct:  s.PhasePct[PhaseGrassDraw],
		BlitPct:       s.PhasePct[PhaseBlit],
		HUDPct:        s.PhasePct[PhaseHUD],
	}
}
