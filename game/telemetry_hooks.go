package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/telemetry"
)

// recordFrame writes calibration frames and flushes perf stats once per
// stats window.
func (s *Scene) recordFrame(interval time.Duration) {
	if s.monitor.Phase() == telemetry.PhaseCalibrating {
		sample := telemetry.FrameSample{
			Frame:   s.frame,
			FrameMS: float64(interval) / float64(time.Millisecond),
			CPUMS:   float64(s.lastCPU) / float64(time.Millisecond),
		}
		if err := s.output.WriteFrame(sample); err != nil {
			slog.Error("failed to write frame", "error", err)
		}
	}

	s.statsElapsed += interval
	window := time.Duration(config.Cfg().Telemetry.StatsWindow * float64(time.Second))
	if window <= 0 || s.statsElapsed < window {
		return
	}
	s.statsElapsed = 0
	s.flushTelemetry()
}

// flushTelemetry logs and writes the current perf window.
func (s *Scene) flushTelemetry() {
	stats := s.perf.Stats()
	tier := s.profile.Tier.String()

	if s.opts.LogStats {
		stats.LogStats()
		slog.Info("monitor", "tier", tier, "state", s.monitor.Snapshot())
	}

	if err := s.output.WritePerf(stats, s.frame, tier); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// recordTierChange persists a tier change.
func (s *Scene) recordTierChange(c telemetry.TierChange) {
	if err := s.output.WriteTierChange(c); err != nil {
		slog.Error("failed to write tier change", "error", err)
	}
}
