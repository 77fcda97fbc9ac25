package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

// BackgroundRenderer fills the scene target with a soft sky gradient behind
// the grass.
type BackgroundRenderer struct {
	shader        rl.Shader
	timeLoc       int32
	resolutionLoc int32
	baseColorLoc  int32

	baseColor   [3]float32
	scratch     []float32
	initialized bool
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(baseColor [3]float32) *BackgroundRenderer {
	return &BackgroundRenderer{
		baseColor: baseColor,
		scratch:   make([]float32, 2),
	}
}

// Init initializes the renderer (must be called after raylib window is created).
func (b *BackgroundRenderer) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory("", backgroundFS)
	b.timeLoc = rl.GetShaderLocation(b.shader, "time")
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.baseColorLoc = rl.GetShaderLocation(b.shader, "baseColor")

	// Set static uniforms
	rl.SetShaderValue(b.shader, b.baseColorLoc, b.baseColor[:], rl.ShaderUniformVec3)

	b.initialized = true
}

// Draw renders the background over a target of the given pixel size.
func (b *BackgroundRenderer) Draw(time float32, width, height int32) {
	if !b.initialized {
		b.Init()
	}

	rl.BeginShaderMode(b.shader)

	b.scratch[0] = time
	rl.SetShaderValue(b.shader, b.timeLoc, b.scratch[:1], rl.ShaderUniformFloat)
	b.scratch[0], b.scratch[1] = float32(width), float32(height)
	rl.SetShaderValue(b.shader, b.resolutionLoc, b.scratch, rl.ShaderUniformVec2)

	// Draw fullscreen quad
	rl.DrawRectangle(0, 0, width, height, rl.White)

	rl.EndShaderMode()
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
