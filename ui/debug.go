package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	debugPanelWidth  = 260
	debugPanelHeight = 236
)

// DebugState is what the debug panel displays.
type DebugState struct {
	Tier            string
	CanDowngrade    bool
	CanUpgrade      bool
	AllowUpgrades   bool
	Phase           string
	LagProgress     float32 // Lag run as a fraction of the trigger length
	UpgradeProgress float32
	Injection       float32
	ScreenWidth     int32
}

// DebugActions are the requests made through the panel this frame.
type DebugActions struct {
	TierDelta        int
	Recalibrate      bool
	ToggleUpgrades   bool
	Injection        float32
	InjectionChanged bool
}

// DebugPanel is the quality and wind tuning panel toggled with F1.
type DebugPanel struct {
	renderer     *Renderer
	injectionMax float32
	bounds       rl.Rectangle
	visible      bool
}

// NewDebugPanel creates a hidden panel whose injection slider spans
// [0, injectionMax].
func NewDebugPanel(injectionMax float32) *DebugPanel {
	if injectionMax <= 0 {
		injectionMax = 1
	}
	return &DebugPanel{
		renderer:     NewRenderer(),
		injectionMax: injectionMax,
	}
}

// Toggle shows or hides the panel.
func (p *DebugPanel) Toggle() {
	p.visible = !p.visible
}

// Visible reports whether the panel is shown.
func (p *DebugPanel) Visible() bool {
	return p.visible
}

// Contains reports whether a screen point is over the panel.
func (p *DebugPanel) Contains(x, y float32) bool {
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, p.bounds)
}

// Draw renders the panel anchored top-right and returns the actions taken.
func (p *DebugPanel) Draw(s DebugState) DebugActions {
	var act DebugActions
	if !p.visible {
		return act
	}

	r := p.renderer
	pad := float32(r.Theme.Padding)
	p.bounds = rl.Rectangle{
		X:      float32(s.ScreenWidth) - debugPanelWidth - 10,
		Y:      10,
		Width:  debugPanelWidth,
		Height: debugPanelHeight,
	}
	x := p.bounds.X + pad
	y := p.bounds.Y + pad
	inner := p.bounds.Width - 2*pad

	r.DrawPanel(int32(p.bounds.X), int32(p.bounds.Y), int32(p.bounds.Width), int32(p.bounds.Height))
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Quality"))
	y = float32(r.DrawLabelValue(int32(x), int32(y), "Tier", s.Tier))
	y = float32(r.DrawLabelValue(int32(x), int32(y), "Phase", s.Phase))
	y = float32(r.DrawBar(int32(x), int32(y), "Lag run", s.LagProgress, int32(inner)))
	y = float32(r.DrawBar(int32(x), int32(y), "Upgrade run", s.UpgradeProgress, int32(inner)))
	y += 4

	half := (inner - pad) / 2
	if !s.CanDowngrade {
		gui.Disable()
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, "Tier -") {
		act.TierDelta = -1
	}
	gui.Enable()
	if !s.CanUpgrade {
		gui.Disable()
	}
	if gui.Button(rl.Rectangle{X: x + half + pad, Y: y, Width: half, Height: 24}, "Tier +") {
		act.TierDelta = +1
	}
	gui.Enable()
	y += 30

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, "Recalibrate") {
		act.Recalibrate = true
	}
	upgrades := "Upgrades: off"
	if s.AllowUpgrades {
		upgrades = "Upgrades: on"
	}
	if gui.Button(rl.Rectangle{X: x + half + pad, Y: y, Width: half, Height: 24}, upgrades) {
		act.ToggleUpgrades = true
	}
	y += 34

	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Wind"))
	rl.DrawText("Injection strength", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += float32(r.Theme.LineHeight)
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: inner - 40, Height: 16},
		"", "",
		s.Injection, 0, p.injectionMax,
	)
	rl.DrawText(fmt.Sprintf("%.2f", s.Injection), int32(x+inner-34), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
	if v != s.Injection {
		act.Injection = v
		act.InjectionChanged = true
	}

	return act
}
