package renderer

import (
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/grass"
)

// GrassUniforms are the per-frame shader inputs.
type GrassUniforms struct {
	Time         float32
	ScrollOffset float32
	Extent       grass.Extent
	Turbulence   bool
	Glow         bool
}

// GrassRenderer draws the instanced grass field.
type GrassRenderer struct {
	shader   rl.Shader
	material rl.Material
	mesh     rl.Mesh
	hasMesh  bool

	transforms []rl.Matrix

	// Uniform locations
	timeLoc         int32
	scrollLoc       int32
	extentLoc       int32
	bladeHeightLoc  int32
	windStrengthLoc int32
	bendDampingLoc  int32
	turbulenceLoc   int32
	glowLowLoc      int32
	glowHighLoc     int32
	glowEnabledLoc  int32

	// Owned scratch buffers reused by every Draw
	scalar []float32
	vec2   []float32

	turbulence  float32
	initialized bool
}

// NewGrassRenderer creates a renderer with room for maxInstances instances.
func NewGrassRenderer(maxInstances int) *GrassRenderer {
	return &GrassRenderer{
		transforms: make([]rl.Matrix, maxInstances),
		scalar:     make([]float32, 1),
		vec2:       make([]float32, 2),
	}
}

// Init loads the shader and material (must be called after raylib window is created).
func (r *GrassRenderer) Init(gc config.GrassConfig, wc config.WindConfig) {
	if r.initialized {
		return
	}

	r.shader = rl.LoadShaderFromMemory(grassVS, grassFS)
	r.shader.UpdateLocation(rl.ShaderLocMatrixModel, rl.GetShaderLocationAttrib(r.shader, "instanceTransform"))

	r.timeLoc = rl.GetShaderLocation(r.shader, "time")
	r.scrollLoc = rl.GetShaderLocation(r.shader, "scrollOffset")
	r.extentLoc = rl.GetShaderLocation(r.shader, "extent")
	r.bladeHeightLoc = rl.GetShaderLocation(r.shader, "bladeHeight")
	r.windStrengthLoc = rl.GetShaderLocation(r.shader, "windStrength")
	r.bendDampingLoc = rl.GetShaderLocation(r.shader, "bendDamping")
	r.turbulenceLoc = rl.GetShaderLocation(r.shader, "turbulence")
	r.glowLowLoc = rl.GetShaderLocation(r.shader, "glowLow")
	r.glowHighLoc = rl.GetShaderLocation(r.shader, "glowHigh")
	r.glowEnabledLoc = rl.GetShaderLocation(r.shader, "glowEnabled")

	// Static uniforms
	r.setFloat(r.bladeHeightLoc, float32(gc.BladeHeight))
	r.setFloat(r.windStrengthLoc, float32(wc.Strength))
	r.setFloat(r.bendDampingLoc, float32(gc.BendDamping))
	r.setFloat(r.glowLowLoc, float32(wc.GlowLow))
	r.setFloat(r.glowHighLoc, float32(wc.GlowHigh))
	rl.SetShaderValue(r.shader, rl.GetShaderLocation(r.shader, "baseColor"), gc.BaseColor[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(r.shader, rl.GetShaderLocation(r.shader, "tipColor"), gc.TipColor[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(r.shader, rl.GetShaderLocation(r.shader, "glowColor"), gc.GlowColor[:], rl.ShaderUniformVec3)
	r.turbulence = float32(gc.Turbulence)

	r.material = rl.LoadMaterialDefault()
	r.material.Shader = r.shader

	r.initialized = true
}

func (r *GrassRenderer) setFloat(loc int32, v float32) {
	r.scalar[0] = v
	rl.SetShaderValue(r.shader, loc, r.scalar, rl.ShaderUniformFloat)
}

// SetGeometry uploads clump geometry, replacing any previous mesh.
func (r *GrassRenderer) SetGeometry(g grass.Geometry) {
	if r.hasMesh {
		rl.UnloadMesh(&r.mesh)
		r.hasMesh = false
	}

	// Mesh arrays live in C memory so UnloadMesh can free them
	mesh := rl.Mesh{
		VertexCount:   int32(g.VertexCount()),
		TriangleCount: int32(g.IndexCount() / 3),
	}
	mesh.Vertices = copyFloats(g.Positions)
	mesh.Texcoords = copyFloats(g.TexCoords)
	mesh.Texcoords2 = copyFloats(g.Offsets)
	mesh.Indices = copyIndices(g.Indices)

	rl.UploadMesh(&mesh, false)
	r.mesh = mesh
	r.hasMesh = true
}

func copyFloats(src []float32) *float32 {
	if len(src) == 0 {
		return nil
	}
	p := (*float32)(rl.MemAlloc(uint32(len(src) * 4)))
	copy(unsafe.Slice(p, len(src)), src)
	return p
}

func copyIndices(src []uint16) *uint16 {
	if len(src) == 0 {
		return nil
	}
	p := (*uint16)(rl.MemAlloc(uint32(len(src) * 2)))
	copy(unsafe.Slice(p, len(src)), src)
	return p
}

// SetInstances rebuilds the instance matrices. Called on layout only; the
// per-frame scroll happens in the vertex shader.
func (r *GrassRenderer) SetInstances(instances []grass.Instance) {
	n := len(instances)
	if n > len(r.transforms) {
		n = len(r.transforms)
	}
	for i := 0; i < n; i++ {
		inst := instances[i]
		m := rl.MatrixRotateY(inst.Yaw)
		m.M12 = inst.X
		m.M14 = inst.Z
		m.M3 = inst.Seed
		r.transforms[i] = m
	}
}

// SetWindTexture binds the wind texture sampled by the vertex shader.
func (r *GrassRenderer) SetWindTexture(tex rl.Texture2D) {
	if !r.initialized {
		return
	}
	rl.SetMaterialTexture(&r.material, rl.MapAlbedo, tex)
}

// Draw renders count instances from the given camera. Must be called
// inside a texture or drawing mode.
func (r *GrassRenderer) Draw(count int, cam *camera.Camera, u GrassUniforms) {
	if !r.initialized || !r.hasMesh || count <= 0 {
		return
	}
	if count > len(r.transforms) {
		count = len(r.transforms)
	}

	r.setFloat(r.timeLoc, u.Time)
	r.setFloat(r.scrollLoc, u.ScrollOffset)
	r.vec2[0], r.vec2[1] = u.Extent.X, u.Extent.Z
	rl.SetShaderValue(r.shader, r.extentLoc, r.vec2, rl.ShaderUniformVec2)
	turb := float32(0)
	if u.Turbulence {
		turb = r.turbulence
	}
	r.setFloat(r.turbulenceLoc, turb)
	glow := float32(0)
	if u.Glow {
		glow = 1
	}
	r.setFloat(r.glowEnabledLoc, glow)

	rl.BeginMode3D(toRaylibCamera(cam))
	rl.DisableBackfaceCulling()
	rl.DrawMeshInstanced(r.mesh, r.material, r.transforms[:count], count)
	rl.EnableBackfaceCulling()
	rl.EndMode3D()
}

// Unload frees GPU resources. The wind texture is owned by WindTexture.
func (r *GrassRenderer) Unload() {
	if r.hasMesh {
		rl.UnloadMesh(&r.mesh)
		r.hasMesh = false
	}
	if r.initialized {
		r.material.GetMap(rl.MapAlbedo).Texture = rl.Texture2D{}
		// Also unloads the shader
		rl.UnloadMaterial(r.material)
		r.initialized = false
	}
}

func toRaylibCamera(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   rl.NewVector3(c.Position.X, c.Position.Y, c.Position.Z),
		Target:     rl.NewVector3(c.Target.X, c.Target.Y, c.Target.Z),
		Up:         rl.NewVector3(c.Up.X, c.Up.Y, c.Up.Z),
		Fovy:       c.FovY,
		Projection: rl.CameraPerspective,
	}
}
