package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/quality"
)

// Controller is the part of the quality manager the monitor drives.
type Controller interface {
	SetTier(t quality.Tier)
	Adjust(direction int) bool
	Current() quality.Profile
	Peek(direction int) (quality.Profile, bool)
}

// MonitorPhase is the state of the adaptive loop.
type MonitorPhase int

const (
	PhaseIdle MonitorPhase = iota
	PhaseCalibrating
	PhaseMonitoring
	PhaseSuspended
)

func (p MonitorPhase) String() string {
	switch p {
	case PhaseCalibrating:
		return "calibrating"
	case PhaseMonitoring:
		return "monitoring"
	case PhaseSuspended:
		return "suspended"
	default:
		return "idle"
	}
}

// Reasons recorded with tier changes.
const (
	ReasonCalibration = "calibration"
	ReasonLag         = "lag"
	ReasonHeadroom    = "headroom"
	ReasonManual      = "manual" // debug panel
)

// TierChange records one tier move and why it happened.
type TierChange struct {
	Frame      int64   `csv:"frame"`
	From       string  `csv:"from"`
	To         string  `csv:"to"`
	Reason     string  `csv:"reason"`
	IntervalMS float64 `csv:"ema_interval_ms"`
	CPUMS      float64 `csv:"ema_cpu_ms"`
}

// MonitorSnapshot is a read-only view for the HUD and logging.
type MonitorSnapshot struct {
	Phase         MonitorPhase
	EMAInterval   time.Duration
	EMACPU        time.Duration
	LagRun        int
	UpgradeRun    int
	Cooldown      time.Duration
	Adjustments   int
	AllowUpgrades bool
	Calibration   *BenchmarkResult
}

// LogValue implements slog.LogValuer for structured logging.
func (s MonitorSnapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("phase", s.Phase.String()),
		slog.Float64("ema_interval_ms", float64(s.EMAInterval)/float64(time.Millisecond)),
		slog.Float64("ema_cpu_ms", float64(s.EMACPU)/float64(time.Millisecond)),
		slog.Int("lag_run", s.LagRun),
		slog.Int("upgrade_run", s.UpgradeRun),
		slog.Int("adjustments", s.Adjustments),
	}
	if s.Calibration != nil {
		attrs = append(attrs, slog.Any("calibration", *s.Calibration))
	}
	return slog.GroupValue(attrs...)
}

// Monitor measures frame cost and asks the controller for tier changes.
// It never touches the simulator or renderer directly.
type Monitor struct {
	ctrl  Controller
	bench *Benchmark
	cores int

	benchEnabled     bool
	lagThreshold     time.Duration
	lagFrames        int
	allowUpgrades    bool
	upgradeThreshold time.Duration
	upgradeFrames    int
	cooldown         time.Duration

	phase     MonitorPhase
	resume    MonitorPhase // phase to return to after suspension
	interval  EMA
	cpu       EMA
	lagRun    int
	upRun     int
	coolLeft  time.Duration
	frame     int64
	adjusts   int
	lastCalib *BenchmarkResult

	// Tier last seen on the controller. The floor and ceiling marks hold
	// while it stays put.
	tier    quality.Tier
	floored bool
	ceiled  bool

	// OnChange is called after every tier change the monitor causes.
	OnChange func(TierChange)
}

// NewMonitor creates an idle monitor. cores is the logical core count used
// to cap the calibration result.
func NewMonitor(ctrl Controller, cfg *config.Config, cores int) (*Monitor, error) {
	bench, err := NewBenchmark(cfg.Perf.Benchmark)
	if err != nil {
		return nil, err
	}
	return &Monitor{
		ctrl:             ctrl,
		bench:            bench,
		cores:            cores,
		benchEnabled:     cfg.Perf.Benchmark.Enabled,
		lagThreshold:     cfg.Derived.LagThreshold,
		lagFrames:        cfg.Perf.LagFrames,
		allowUpgrades:    cfg.Perf.AllowUpgrades,
		upgradeThreshold: cfg.Derived.UpgradeThreshold,
		upgradeFrames:    cfg.Perf.UpgradeFrames,
		cooldown:         cfg.Derived.Cooldown,
		interval:         EMA{Alpha: cfg.Perf.EMAAlpha},
		cpu:              EMA{Alpha: cfg.Perf.EMAAlpha},
		tier:             ctrl.Current().Tier,
	}, nil
}

// Start begins calibration, or monitoring directly when the benchmark is
// disabled.
func (m *Monitor) Start() {
	if m.benchEnabled {
		m.Calibrate()
		return
	}
	m.enter(PhaseMonitoring)
}

// Calibrate (re)starts the calibration benchmark.
func (m *Monitor) Calibrate() {
	m.bench.Reset()
	m.enter(PhaseCalibrating)
}

// Phase returns the current phase.
func (m *Monitor) Phase() MonitorPhase {
	return m.phase
}

// SetAllowUpgrades toggles upward tier moves.
func (m *Monitor) SetAllowUpgrades(allow bool) {
	m.allowUpgrades = allow
	m.upRun = 0
}

// AllowUpgrades reports whether upward tier moves are enabled.
func (m *Monitor) AllowUpgrades() bool {
	return m.allowUpgrades
}

// SetVisible suspends the loop while hidden and resumes with fresh
// statistics when visible again.
func (m *Monitor) SetVisible(visible bool) {
	if !visible {
		if m.phase != PhaseSuspended {
			m.resume = m.phase
			m.phase = PhaseSuspended
			slog.Debug("perf monitor suspended", "resume", m.resume.String())
		}
		return
	}
	if m.phase != PhaseSuspended {
		return
	}
	if m.resume == PhaseCalibrating {
		// Partial samples span the pause
		m.bench.Reset()
	}
	m.enter(m.resume)
	slog.Debug("perf monitor resumed", "phase", m.phase.String())
}

// Frame feeds one frame's wall-clock interval and CPU time.
func (m *Monitor) Frame(interval, cpu time.Duration) {
	m.frame++
	switch m.phase {
	case PhaseCalibrating:
		if m.bench.Record(interval) {
			m.finishCalibration()
		}
	case PhaseMonitoring:
		m.monitor(interval, cpu)
	}
}

func (m *Monitor) finishCalibration() {
	res := m.bench.Result(m.cores)
	m.lastCalib = &res
	from := m.ctrl.Current().Tier
	m.ctrl.SetTier(res.Tier)
	m.syncTier()
	slog.Info("calibration complete", "result", res)
	if from != res.Tier {
		m.emit(from, res.Tier, ReasonCalibration)
	}
	m.enter(PhaseMonitoring)
	m.coolLeft = m.cooldown
}

func (m *Monitor) monitor(interval, cpu time.Duration) {
	// Moved by someone else, e.g. the debug panel
	if m.syncTier() {
		m.settle()
		return
	}
	if m.coolLeft > 0 {
		m.coolLeft -= interval
		return
	}

	avg := m.interval.Add(interval)
	m.cpu.Add(cpu)

	if avg > m.lagThreshold {
		m.lagRun++
	} else {
		m.lagRun = 0
	}
	if m.lagRun >= m.lagFrames && !m.floored {
		from := m.ctrl.Current().Tier
		if !m.ctrl.Adjust(-1) {
			m.floored = true
			m.lagRun = 0
			return
		}
		m.syncTier()
		m.emit(from, m.tier, ReasonLag)
		m.settle()
		return
	}

	if !m.allowUpgrades || m.ceiled {
		return
	}
	if avg <= m.upgradeThreshold {
		m.upRun++
	} else {
		m.upRun = 0
	}
	if m.upRun >= m.upgradeFrames {
		cur := m.ctrl.Current()
		next, ok := m.ctrl.Peek(+1)
		// Only cheap moves: a geometry rebuild would itself cause a hitch
		if ok && !quality.RequiresRebuild(cur, next) && m.ctrl.Adjust(+1) {
			m.syncTier()
			m.emit(cur.Tier, next.Tier, ReasonHeadroom)
			m.settle()
			return
		}
		m.ceiled = true
		m.upRun = 0
	}
}

// syncTier records the controller's current tier and reports whether it
// moved. A move clears the floor and ceiling marks.
func (m *Monitor) syncTier() bool {
	t := m.ctrl.Current().Tier
	if t == m.tier {
		return false
	}
	m.tier = t
	m.floored = false
	m.ceiled = false
	return true
}

// settle resets statistics and starts the cooldown after a tier change.
func (m *Monitor) settle() {
	m.resetStats()
	m.coolLeft = m.cooldown
}

func (m *Monitor) enter(p MonitorPhase) {
	m.phase = p
	m.resetStats()
	m.coolLeft = 0
}

func (m *Monitor) resetStats() {
	m.interval.Reset()
	m.cpu.Reset()
	m.lagRun = 0
	m.upRun = 0
}

func (m *Monitor) emit(from, to quality.Tier, reason string) {
	m.adjusts++
	change := TierChange{
		Frame:      m.frame,
		From:       from.String(),
		To:         to.String(),
		Reason:     reason,
		IntervalMS: float64(m.interval.Value()) / float64(time.Millisecond),
		CPUMS:      float64(m.cpu.Value()) / float64(time.Millisecond),
	}
	slog.Info("quality tier change", "from", change.From, "to", change.To, "reason", reason, "ema_interval_ms", change.IntervalMS)
	if m.OnChange != nil {
		m.OnChange(change)
	}
}

// Snapshot returns the current monitor state.
func (m *Monitor) Snapshot() MonitorSnapshot {
	return MonitorSnapshot{
		Phase:         m.phase,
		EMAInterval:   m.interval.Value(),
		EMACPU:        m.cpu.Value(),
		LagRun:        m.lagRun,
		UpgradeRun:    m.upRun,
		Cooldown:      m.coolLeft,
		Adjustments:   m.adjusts,
		AllowUpgrades: m.allowUpgrades,
		Calibration:   m.lastCalib,
	}
}
