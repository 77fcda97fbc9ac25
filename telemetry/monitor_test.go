package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/quality"
)

func newTestMonitor(t *testing.T, start quality.Tier, mutate func(*config.Config)) (*Monitor, *quality.Manager, *[]TierChange) {
	t.Helper()
	cfg := config.Default()
	cfg.Perf.Benchmark.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	table, err := quality.NewTable(cfg.Quality)
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	mgr := quality.NewManager(table, start)

	m, err := NewMonitor(mgr, cfg, 8)
	if err != nil {
		t.Fatalf("NewMonitor error: %v", err)
	}
	var changes []TierChange
	m.OnChange = func(c TierChange) { changes = append(changes, c) }
	return m, mgr, &changes
}

func feed(m *Monitor, n int, interval time.Duration) {
	for i := 0; i < n; i++ {
		m.Frame(interval, interval/2)
	}
}

func TestMonitorStartsIdle(t *testing.T) {
	m, mgr, _ := newTestMonitor(t, quality.TierHigh, nil)
	feed(m, 500, 100*time.Millisecond)
	if m.Phase() != PhaseIdle || mgr.Tier() != quality.TierHigh {
		t.Errorf("idle monitor acted: phase %v tier %v", m.Phase(), mgr.Tier())
	}
}

func TestMonitorLagDowngradeWithCooldown(t *testing.T) {
	m, mgr, changes := newTestMonitor(t, quality.TierHigh, nil)
	m.Start()
	if m.Phase() != PhaseMonitoring {
		t.Fatalf("phase %v, want monitoring", m.Phase())
	}

	const slow = 40 * time.Millisecond

	feed(m, 89, slow)
	if mgr.Tier() != quality.TierHigh {
		t.Fatalf("downgraded after 89 lagging frames")
	}
	feed(m, 1, slow)
	if mgr.Tier() != quality.TierMedium {
		t.Fatalf("tier %v after 90 lagging frames, want medium", mgr.Tier())
	}

	// 3s cooldown at 40ms per frame, then a fresh 90-frame run
	feed(m, 75+89, slow)
	if mgr.Tier() != quality.TierMedium {
		t.Fatalf("downgraded during cooldown or short run: %v", mgr.Tier())
	}
	feed(m, 1, slow)
	if mgr.Tier() != quality.TierLow {
		t.Fatalf("tier %v, want low after second lag run", mgr.Tier())
	}

	if len(*changes) != 2 {
		t.Fatalf("recorded %d changes, want 2", len(*changes))
	}
	for _, c := range *changes {
		if c.Reason != ReasonLag {
			t.Errorf("reason %q, want lag", c.Reason)
		}
	}
	if (*changes)[0].From != "high" || (*changes)[0].To != "medium" {
		t.Errorf("first change %+v", (*changes)[0])
	}
}

// countingController records how often the monitor asks for a move.
type countingController struct {
	*quality.Manager
	adjusts  int
	refusals int
	peeks    int
}

func (c *countingController) Peek(direction int) (quality.Profile, bool) {
	c.peeks++
	return c.Manager.Peek(direction)
}

func (c *countingController) Adjust(direction int) bool {
	c.adjusts++
	ok := c.Manager.Adjust(direction)
	if !ok {
		c.refusals++
	}
	return ok
}

func TestMonitorNoDowngradeBelowMinimal(t *testing.T) {
	cfg := config.Default()
	cfg.Perf.Benchmark.Enabled = false
	table, err := quality.NewTable(cfg.Quality)
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	ctrl := &countingController{Manager: quality.NewManager(table, quality.TierMinimal)}
	m, err := NewMonitor(ctrl, cfg, 8)
	if err != nil {
		t.Fatalf("NewMonitor error: %v", err)
	}
	var changes []TierChange
	m.OnChange = func(c TierChange) { changes = append(changes, c) }

	m.Start()
	feed(m, 2000, 100*time.Millisecond)
	if ctrl.Tier() != quality.TierMinimal {
		t.Errorf("tier %v, want minimal", ctrl.Tier())
	}
	if len(changes) != 0 {
		t.Errorf("boundary adjustments recorded: %v", changes)
	}
	if ctrl.adjusts != 1 || ctrl.refusals != 1 {
		t.Errorf("Adjust called %d times (%d refused), want one refused request", ctrl.adjusts, ctrl.refusals)
	}

	// Leaving the floor re-arms downgrades
	ctrl.SetTier(quality.TierLow)
	feed(m, 1+75+90, 40*time.Millisecond)
	if ctrl.Tier() != quality.TierMinimal {
		t.Errorf("tier %v after lag at low, want minimal", ctrl.Tier())
	}
}

func TestMonitorNoRepeatedUpgradeAtCeiling(t *testing.T) {
	cfg := config.Default()
	cfg.Perf.Benchmark.Enabled = false
	table, err := quality.NewTable(cfg.Quality)
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	ctrl := &countingController{Manager: quality.NewManager(table, quality.TierUltra)}
	m, err := NewMonitor(ctrl, cfg, 8)
	if err != nil {
		t.Fatalf("NewMonitor error: %v", err)
	}
	m.Start()
	feed(m, 3000, 5*time.Millisecond)
	if ctrl.Tier() != quality.TierUltra || ctrl.adjusts != 0 {
		t.Errorf("tier %v, %d adjust calls at the top tier", ctrl.Tier(), ctrl.adjusts)
	}
	if ctrl.peeks != 1 {
		t.Errorf("upgrade checked %d times at the top tier, want 1", ctrl.peeks)
	}
}

func TestMonitorSettlesAfterExternalTierChange(t *testing.T) {
	m, mgr, changes := newTestMonitor(t, quality.TierHigh, nil)
	m.Start()

	const slow = 40 * time.Millisecond

	feed(m, 80, slow)
	if m.Snapshot().LagRun != 80 {
		t.Fatalf("lag run %d, want 80", m.Snapshot().LagRun)
	}

	// Manual move mid-run
	if !mgr.Adjust(+1) {
		t.Fatal("manual upgrade refused")
	}
	feed(m, 1, slow)
	snap := m.Snapshot()
	if snap.LagRun != 0 || snap.EMAInterval != 0 || snap.Cooldown <= 0 {
		t.Fatalf("statistics not reset after tier change: %+v", snap)
	}

	// The old run does not carry over: cooldown, then a full 90-frame run
	feed(m, 75+89, slow)
	if mgr.Tier() != quality.TierUltra {
		t.Fatalf("tier %v, downgraded before a fresh lag run", mgr.Tier())
	}
	feed(m, 1, slow)
	if mgr.Tier() != quality.TierHigh {
		t.Errorf("tier %v, want high after a full lag run", mgr.Tier())
	}
	if len(*changes) != 1 || (*changes)[0].Reason != ReasonLag {
		t.Errorf("changes %+v", *changes)
	}
}

func TestMonitorGatedUpgrade(t *testing.T) {
	m, mgr, changes := newTestMonitor(t, quality.TierLow, nil)
	m.Start()

	const fast = 10 * time.Millisecond

	// low -> medium keeps the clump size, so it is allowed
	feed(m, 299, fast)
	if mgr.Tier() != quality.TierLow {
		t.Fatal("upgraded before the upgrade run completed")
	}
	feed(m, 1, fast)
	if mgr.Tier() != quality.TierMedium {
		t.Fatalf("tier %v, want medium", mgr.Tier())
	}

	// medium -> high rebuilds geometry, so it is never requested
	feed(m, 5000, fast)
	if mgr.Tier() != quality.TierMedium {
		t.Errorf("tier %v, upgrade across a rebuild should be refused", mgr.Tier())
	}
	if len(*changes) != 1 || (*changes)[0].Reason != ReasonHeadroom {
		t.Errorf("changes %+v", *changes)
	}
}

func TestMonitorUpgradesDisabled(t *testing.T) {
	m, mgr, _ := newTestMonitor(t, quality.TierLow, func(c *config.Config) {
		c.Perf.AllowUpgrades = false
	})
	m.Start()
	feed(m, 1000, 5*time.Millisecond)
	if mgr.Tier() != quality.TierLow {
		t.Errorf("tier %v, upgrades are disabled", mgr.Tier())
	}

	m.SetAllowUpgrades(true)
	feed(m, 300, 5*time.Millisecond)
	if mgr.Tier() != quality.TierMedium {
		t.Errorf("tier %v after enabling upgrades, want medium", mgr.Tier())
	}
}

func TestMonitorCalibration(t *testing.T) {
	m, mgr, changes := newTestMonitor(t, quality.TierMedium, func(c *config.Config) {
		c.Perf.Benchmark.Enabled = true
	})
	m.Start()
	if m.Phase() != PhaseCalibrating {
		t.Fatalf("phase %v, want calibrating", m.Phase())
	}

	for i := 0; m.Phase() == PhaseCalibrating; i++ {
		if i > 1000 {
			t.Fatal("calibration never finished")
		}
		m.Frame(8*time.Millisecond, 4*time.Millisecond)
	}

	if m.Phase() != PhaseMonitoring {
		t.Errorf("phase %v after calibration", m.Phase())
	}
	if mgr.Tier() != quality.TierUltra {
		t.Errorf("tier %v, want ultra at 125 fps on 8 cores", mgr.Tier())
	}
	snap := m.Snapshot()
	if snap.Calibration == nil || snap.Calibration.Tier != quality.TierUltra {
		t.Errorf("snapshot calibration %+v", snap.Calibration)
	}
	if len(*changes) != 1 || (*changes)[0].Reason != ReasonCalibration {
		t.Errorf("changes %+v", *changes)
	}
}

func TestMonitorSuspendedWhileHidden(t *testing.T) {
	m, mgr, _ := newTestMonitor(t, quality.TierHigh, nil)
	m.Start()

	feed(m, 50, 40*time.Millisecond)
	m.SetVisible(false)
	if m.Phase() != PhaseSuspended {
		t.Fatalf("phase %v, want suspended", m.Phase())
	}
	feed(m, 500, 200*time.Millisecond)
	if mgr.Tier() != quality.TierHigh {
		t.Fatalf("tier changed while hidden: %v", mgr.Tier())
	}

	m.SetVisible(true)
	snap := m.Snapshot()
	if snap.Phase != PhaseMonitoring {
		t.Errorf("phase %v after resume, want monitoring", snap.Phase)
	}
	if snap.LagRun != 0 || snap.EMAInterval != 0 {
		t.Errorf("statistics not reset on resume: %+v", snap)
	}

	// The 50 pre-hide frames no longer count toward the lag run
	feed(m, 89, 40*time.Millisecond)
	if mgr.Tier() != quality.TierHigh {
		t.Errorf("downgraded with only 89 post-resume frames")
	}
}

func TestMonitorHiddenDuringCalibration(t *testing.T) {
	m, _, _ := newTestMonitor(t, quality.TierMedium, func(c *config.Config) {
		c.Perf.Benchmark.Enabled = true
	})
	m.Start()
	feed(m, 40, 8*time.Millisecond)

	m.SetVisible(false)
	m.SetVisible(true)
	if m.Phase() != PhaseCalibrating {
		t.Fatalf("phase %v, want calibrating", m.Phase())
	}
	if m.bench.Samples() != 0 {
		t.Errorf("calibration kept %d samples across a pause", m.bench.Samples())
	}
}
