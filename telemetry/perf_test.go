package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseWindStep)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseGrassDraw)
		time.Sleep(200 * time.Microsecond)
		if cpu := pc.EndFrame(); cpu <= 0 {
			t.Errorf("EndFrame returned %v", cpu)
		}
	}

	stats := pc.Stats()

	if stats.AvgFrameDuration <= 0 {
		t.Error("expected positive average frame duration")
	}
	if _, ok := stats.PhaseAvg[PhaseWindStep]; !ok {
		t.Error("expected wind_step phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseGrassDraw]; !ok {
		t.Error("expected grass_draw phase to be tracked")
	}
	if stats.P95FrameDuration < stats.MinFrameDuration || stats.P95FrameDuration > stats.MaxFrameDuration {
		t.Errorf("p95 %v outside [%v, %v]", stats.P95FrameDuration, stats.MinFrameDuration, stats.MaxFrameDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseWindStep)
		pc.EndFrame()
	}

	if pc.sampleCount != 5 {
		t.Errorf("sample count %d, want window size 5", pc.sampleCount)
	}
	if stats := pc.Stats(); stats.AvgFrameDuration < 0 {
		t.Error("negative average frame duration")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgFrameDuration != 0 {
		t.Error("expected zero avg frame duration for empty collector")
	}
	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameInterval(t *testing.T) {
	pc := NewPerfCollector(10)
	base := time.Unix(1000, 0)

	if d := pc.RecordFrameAt(base); d != 0 {
		t.Errorf("first interval %v, want 0", d)
	}
	if d := pc.RecordFrameAt(base.Add(16 * time.Millisecond)); d != 16*time.Millisecond {
		t.Errorf("interval %v, want 16ms", d)
	}

	stats := pc.Stats()
	if stats.FPS < 62 || stats.FPS > 63 {
		t.Errorf("expected ~62.5 FPS with 16ms frames, got %v", stats.FPS)
	}

	pc.ResetInterval()
	if d := pc.RecordFrameAt(base.Add(10 * time.Second)); d != 0 {
		t.Errorf("interval after reset %v, want 0", d)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	s := PerfStats{
		AvgFrameDuration: 4 * time.Millisecond,
		PhasePct:         map[string]float64{PhaseWindStep: 25, PhaseGrassDraw: 50},
	}
	row := s.ToCSV(120, "high")
	if row.Frame != 120 || row.Tier != "high" || row.AvgFrameUS != 4000 {
		t.Errorf("unexpected row %+v", row)
	}
	if row.WindStepPct != 25 || row.GrassDrawPct != 50 || row.BlitPct != 0 {
		t.Errorf("phase columns %+v", row)
	}
}
