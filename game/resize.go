package game

import (
	"log/slog"

	"github.com/pthm-cable/meadow/config"
)

// resizeState holds a viewport change waiting for the debounce window.
type resizeState struct {
	pending bool
	w, h    float32
	due     float32 // Scene time at which the resize is applied
}

// Resize schedules a viewport change. Bursts of calls collapse into one
// applied resize once no new call has arrived for the debounce interval.
func (s *Scene) Resize(w, h float32) {
	if w <= 0 || h <= 0 {
		return
	}
	s.resize = resizeState{
		pending: true,
		w:       w,
		h:       h,
		due:     s.time + float32(config.Cfg().Derived.ResizeDebounce.Seconds()),
	}
}

// applyPendingResize applies a scheduled resize once it is due.
func (s *Scene) applyPendingResize() {
	if !s.resize.pending || s.time < s.resize.due {
		return
	}
	s.resize.pending = false
	s.width, s.height = s.resize.w, s.resize.h
	s.applyViewport()

	slog.Debug("viewport resized",
		"width", s.width,
		"height", s.height,
		"dpr", s.dpr,
		"extent_x", s.plane.Extent().X,
		"extent_z", s.plane.Extent().Z,
	)
}
