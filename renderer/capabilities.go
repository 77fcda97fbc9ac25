package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/wind"
)

// ProbeCapabilities reports float texture support for the active GL context.
// Must be called after the window is created.
func ProbeCapabilities() wind.Capabilities {
	return capabilitiesForGL(rl.GetVersion())
}

// capabilitiesForGL maps the rlgl backend version to texture capabilities.
// Desktop GL 3.3+ and GLES 3.0 have half-float storage and filtering in
// core; GL 2.1 relies on ARB_texture_float for 32-bit storage only. GLES 2.0
// and GL 1.1 are treated as having no usable float format.
func capabilitiesForGL(version int32) wind.Capabilities {
	switch version {
	case rl.Opengl33, rl.Opengl43:
		return wind.Capabilities{HalfFloatRenderable: true, HalfFloatLinear: true, FloatRenderable: true}
	case rl.OpenglEs30:
		return wind.Capabilities{HalfFloatRenderable: true, HalfFloatLinear: true}
	case rl.Opengl21:
		return wind.Capabilities{FloatRenderable: true}
	default:
		return wind.Capabilities{}
	}
}
