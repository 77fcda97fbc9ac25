package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Tier          string
	Instances     int
	MaxInstances  int
	ClumpSize     int
	SimResolution int
	WindFormat    string
	RenderScale   float32
	FPS           int32
	FrameMS       float64 // Smoothed wall-clock interval
	CPUMS         float64 // Smoothed CPU time
	Phase         string
	Adjustments   int
	ScreenWidth   int32
	ScreenHeight  int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	t := h.renderer.Theme

	rl.DrawText(fmt.Sprintf("Tier: %s", data.Tier), 10, 10, 20, t.ValueColor)

	rl.DrawText(
		fmt.Sprintf("Instances: %d/%d x%d | Sim: %d² %s | Scale: %.2f",
			data.Instances, data.MaxInstances, data.ClumpSize, data.SimResolution, data.WindFormat, data.RenderScale),
		10, 35, 16, t.LabelColor,
	)

	rl.DrawText(
		fmt.Sprintf("FPS: %d | Frame: %.2f ms | CPU: %.2f ms", data.FPS, data.FrameMS, data.CPUMS),
		10, 55, 16, t.LabelColor,
	)

	status := fmt.Sprintf("%s (%d changes)", data.Phase, data.Adjustments)
	color := t.SectionHeader
	if data.Phase != "monitoring" {
		color = t.WarnColor
	}
	rl.DrawText(status, 10, 75, 16, color)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
