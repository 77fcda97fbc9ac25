package game

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/telemetry"
	"github.com/pthm-cable/meadow/ui"
)

const controlsText = "Wheel/arrows: scroll | F1: debug | F11: fullscreen"

// drawUI renders the HUD and the debug panel, then applies panel actions.
func (s *Scene) drawUI() {
	snap := s.monitor.Snapshot()
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	s.hud.Draw(ui.HUDData{
		Tier:          s.profile.Tier.String(),
		Instances:     s.grass.Count(),
		MaxInstances:  s.grass.Max(),
		ClumpSize:     s.grass.ClumpSize(),
		SimResolution: s.wind.Resolution(),
		WindFormat:    s.windTex.Format().String(),
		RenderScale:   s.target.Scale(),
		FPS:           rl.GetFPS(),
		FrameMS:       durationMS(snap.EMAInterval),
		CPUMS:         durationMS(snap.EMACPU),
		Phase:         snap.Phase.String(),
		Adjustments:   snap.Adjustments,
		ScreenWidth:   sw,
		ScreenHeight:  sh,
	})
	s.hud.DrawControls(sh, controlsText)

	if !s.debug.Visible() {
		return
	}

	perf := config.Cfg().Perf
	_, canDown := s.quality.Peek(-1)
	_, canUp := s.quality.Peek(+1)
	act := s.debug.Draw(ui.DebugState{
		Tier:            s.profile.Tier.String(),
		CanDowngrade:    canDown,
		CanUpgrade:      canUp,
		AllowUpgrades:   snap.AllowUpgrades,
		Phase:           snap.Phase.String(),
		LagProgress:     runProgress(snap.LagRun, perf.LagFrames),
		UpgradeProgress: runProgress(snap.UpgradeRun, perf.UpgradeFrames),
		Injection:       s.wind.Params().InjectionStrength,
		ScreenWidth:     sw,
	})
	s.applyDebugActions(act)
}

// applyDebugActions performs the requests made through the debug panel.
func (s *Scene) applyDebugActions(act ui.DebugActions) {
	if act.TierDelta != 0 {
		from := s.profile.Tier
		if s.quality.Adjust(act.TierDelta) {
			s.recordTierChange(telemetry.TierChange{
				Frame:  s.frame,
				From:   from.String(),
				To:     s.profile.Tier.String(),
				Reason: telemetry.ReasonManual,
			})
		}
	}
	if act.Recalibrate {
		slog.Info("recalibration requested")
		s.monitor.Calibrate()
	}
	if act.ToggleUpgrades {
		s.monitor.SetAllowUpgrades(!s.monitor.AllowUpgrades())
		slog.Info("quality upgrades toggled", "allowed", s.monitor.AllowUpgrades())
	}
	if act.InjectionChanged {
		p := s.wind.Params()
		p.InjectionStrength = act.Injection
		s.wind.SetParams(p)
	}
}

func runProgress(run, limit int) float32 {
	if limit <= 0 {
		return 0
	}
	return float32(run) / float32(limit)
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
