package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/config"
)

// handleInput polls window, keyboard, wheel and pointer state. Everything it
// writes is read later in the same frame.
func (s *Scene) handleInput() {
	if rl.IsKeyPressed(rl.KeyF1) {
		s.debug.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	s.handleWindowResize()
	s.handleScroll()
	s.handlePointer()
}

// pollVisibility reads window visibility. It runs every frame, mounted or
// not, before the monitor sees the frame.
func (s *Scene) pollVisibility() {
	s.setVisible(!rl.IsWindowMinimized() && !rl.IsWindowHidden())
}

// setVisible suspends the adaptive loop while the window is hidden.
func (s *Scene) setVisible(visible bool) {
	if visible == s.visible {
		return
	}
	s.visible = visible
	s.monitor.SetVisible(visible)
	if visible {
		// The clock kept running while hidden
		s.perf.ResetInterval()
	}
}

// handleWindowResize forwards window size and DPI changes to the debounced
// resize entry point.
func (s *Scene) handleWindowResize() {
	dpi := rl.GetWindowScaleDPI().X
	if dpi > 0 && dpi != s.dpr {
		s.dpr = dpi
		w, h := s.width, s.height
		if s.resize.pending {
			w, h = s.resize.w, s.resize.h
		}
		s.Resize(w, h)
	}
	if !rl.IsWindowResized() {
		return
	}
	s.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
}

// handleScroll maps the wheel and paging keys onto the scroll position.
func (s *Scene) handleScroll() {
	step := float32(config.Cfg().Plane.ScrollStep)

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		s.SetScroll(s.scrollY - wheel*step)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		s.SetScroll(s.scrollY + step*0.25)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		s.SetScroll(s.scrollY - step*0.25)
	}
	if rl.IsKeyPressed(rl.KeyPageDown) {
		s.SetScroll(s.scrollY + s.height)
	}
	if rl.IsKeyPressed(rl.KeyPageUp) {
		s.SetScroll(s.scrollY - s.height)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		s.SetScroll(0)
	}
}

// handlePointer records touch or mouse position for the brush.
func (s *Scene) handlePointer() {
	var x, y float32
	switch {
	case rl.GetTouchPointCount() > 0:
		p := rl.GetTouchPosition(0)
		x, y = p.X, p.Y
	case rl.IsCursorOnScreen():
		p := rl.GetMousePosition()
		x, y = p.X, p.Y
	default:
		s.pointer.Leave()
		return
	}

	// Pointer over the debug panel drives widgets, not wind
	if s.debug.Visible() && s.debug.Contains(x, y) {
		s.pointer.Leave()
		return
	}
	s.pointer.Move(x, y)
}
