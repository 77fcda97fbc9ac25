package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// SceneTarget is the off-screen buffer the scene renders into. Its size is
// the logical viewport times the capped pixel ratio, so lowering the cap
// cuts fragment work without changing the window.
type SceneTarget struct {
	target   rl.RenderTexture2D
	loaded   bool
	logicalW float32
	logicalH float32
	scale    float32
	pixelW   int32
	pixelH   int32
}

// NewSceneTarget creates an unloaded target; call Resize before use.
func NewSceneTarget() *SceneTarget {
	return &SceneTarget{scale: 1}
}

// EffectiveScale is min(dpr, dprCap), floored at a small positive value.
func EffectiveScale(dpr, dprCap float32) float32 {
	s := dpr
	if dprCap > 0 && dprCap < s {
		s = dprCap
	}
	if s < 0.25 {
		s = 0.25
	}
	return s
}

// Resize reallocates the target when its pixel size changes.
func (t *SceneTarget) Resize(logicalW, logicalH, dpr, dprCap float32) {
	scale := EffectiveScale(dpr, dprCap)
	pw := int32(logicalW*scale + 0.5)
	ph := int32(logicalH*scale + 0.5)
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}

	t.logicalW, t.logicalH, t.scale = logicalW, logicalH, scale
	if t.loaded && pw == t.pixelW && ph == t.pixelH {
		return
	}
	if t.loaded {
		rl.UnloadRenderTexture(t.target)
	}
	t.target = rl.LoadRenderTexture(pw, ph)
	rl.SetTextureFilter(t.target.Texture, rl.FilterBilinear)
	t.pixelW, t.pixelH = pw, ph
	t.loaded = true
}

// Scale returns the effective pixel ratio.
func (t *SceneTarget) Scale() float32 {
	return t.scale
}

// PixelSize returns the render target size in pixels.
func (t *SceneTarget) PixelSize() (int32, int32) {
	return t.pixelW, t.pixelH
}

// Begin starts rendering into the target.
func (t *SceneTarget) Begin() {
	rl.BeginTextureMode(t.target)
}

// End finishes rendering into the target.
func (t *SceneTarget) End() {
	rl.EndTextureMode()
}

// Blit draws the target over the whole logical viewport.
func (t *SceneTarget) Blit() {
	if !t.loaded {
		return
	}
	// Negative height flips the render texture upright
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(t.pixelW), Height: -float32(t.pixelH)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: t.logicalW, Height: t.logicalH}
	rl.DrawTexturePro(t.target.Texture, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees the render texture.
func (t *SceneTarget) Unload() {
	if !t.loaded {
		return
	}
	rl.UnloadRenderTexture(t.target)
	t.loaded = false
}
