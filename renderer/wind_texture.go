package renderer

import (
	"image/color"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/wind"
)

// WindTexture is the GPU mirror of the velocity field's current buffer.
// With FormatNone it holds a 1x1 zero texture so the grass shader still
// has something to sample and blades stay static.
type WindTexture struct {
	format  wind.Format
	res     int
	tex     rl.Texture2D
	staging []byte // packed texels, reused every upload
	loaded  bool
}

// NewWindTexture creates a texture for a field of the given resolution.
// Must be called after the window is created.
func NewWindTexture(res int, format wind.Format) *WindTexture {
	w := &WindTexture{format: format}
	w.load(res)
	return w
}

func (w *WindTexture) pixelFormat() rl.PixelFormat {
	switch w.format {
	case wind.FormatHalfFloatLinear, wind.FormatHalfFloatNearest:
		return rl.UncompressedR16g16b16
	default:
		return rl.UncompressedR32g32b32
	}
}

func (w *WindTexture) load(res int) {
	if w.format == wind.FormatNone {
		res = 1
	}
	w.res = res

	bpt := wind.BytesPerTexel(w.format)
	if bpt == 0 {
		bpt = wind.BytesPerTexel(wind.FormatFloat)
	}
	// UpdateTexture takes []color.RGBA, so keep the length a multiple of 4
	size := (res*res*bpt + 3) &^ 3
	w.staging = make([]byte, size)

	img := rl.NewImage(w.staging, int32(res), int32(res), 1, w.pixelFormat())
	w.tex = rl.LoadTextureFromImage(img)
	if w.format.Linear() {
		rl.SetTextureFilter(w.tex, rl.FilterBilinear)
	} else {
		rl.SetTextureFilter(w.tex, rl.FilterPoint)
	}
	rl.SetTextureWrap(w.tex, rl.WrapClamp)
	w.loaded = true
}

// Format returns the negotiated storage format.
func (w *WindTexture) Format() wind.Format {
	return w.format
}

// Resize recreates the texture for a new field resolution.
func (w *WindTexture) Resize(res int) {
	if w.format == wind.FormatNone || res == w.res {
		return
	}
	w.Unload()
	w.load(res)
}

// Upload copies the field's current buffer to the GPU. It is a no-op when
// wind is disabled or the resolutions disagree.
func (w *WindTexture) Upload(f *wind.Field) {
	if !w.loaded || w.format == wind.FormatNone || f.Resolution() != w.res {
		return
	}
	n := wind.EncodeTexels(w.staging, f.Current(), w.format)
	if n == 0 {
		return
	}
	pixels := unsafe.Slice((*color.RGBA)(unsafe.Pointer(&w.staging[0])), len(w.staging)/4)
	rl.UpdateTexture(w.tex, pixels)
}

// Clear uploads zero velocity, used when wind is switched off at runtime.
func (w *WindTexture) Clear() {
	if !w.loaded {
		return
	}
	clear(w.staging)
	pixels := unsafe.Slice((*color.RGBA)(unsafe.Pointer(&w.staging[0])), len(w.staging)/4)
	rl.UpdateTexture(w.tex, pixels)
}

// Texture returns the texture to bind for sampling.
func (w *WindTexture) Texture() rl.Texture2D {
	return w.tex
}

// Unload frees the GPU texture.
func (w *WindTexture) Unload() {
	if !w.loaded {
		return
	}
	rl.UnloadTexture(w.tex)
	w.loaded = false
}
