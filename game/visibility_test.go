package game

import (
	"testing"
	"time"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/quality"
	"github.com/pthm-cable/meadow/telemetry"
)

func newVisibilityScene(t *testing.T) *Scene {
	t.Helper()
	cfg := config.Default()
	cfg.Perf.Benchmark.Enabled = false
	table, err := quality.NewTable(cfg.Quality)
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	m, err := telemetry.NewMonitor(quality.NewManager(table, quality.TierHigh), cfg, 8)
	if err != nil {
		t.Fatalf("NewMonitor error: %v", err)
	}
	m.Start()
	return &Scene{
		monitor: m,
		perf:    telemetry.NewPerfCollector(16),
		visible: true,
	}
}

func TestUnmountedSceneSuspendsWhenHidden(t *testing.T) {
	s := newVisibilityScene(t)
	if s.mounted {
		t.Fatal("scene should start unmounted")
	}
	s.perf.RecordFrameAt(time.Now().Add(-time.Second))

	s.setVisible(false)
	if s.monitor.Phase() != telemetry.PhaseSuspended {
		t.Fatalf("phase %v while hidden, want suspended", s.monitor.Phase())
	}

	s.setVisible(true)
	if s.monitor.Phase() != telemetry.PhaseMonitoring {
		t.Errorf("phase %v after return, want monitoring", s.monitor.Phase())
	}
	if d := s.perf.RecordFrameAt(time.Now()); d != 0 {
		t.Errorf("first interval after return = %v, want 0", d)
	}
}

func TestSetVisibleUnchangedIsNoop(t *testing.T) {
	s := newVisibilityScene(t)
	s.setVisible(true)
	if s.monitor.Phase() != telemetry.PhaseMonitoring {
		t.Errorf("phase %v, want monitoring", s.monitor.Phase())
	}
}
