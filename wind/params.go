// Package wind simulates the interactive wind velocity field: a pair of
// small two-component grids that are advected, diffused, decayed and fed
// by a pointer brush every frame.
package wind

import "github.com/pthm-cable/meadow/config"

// minRadius floors the injection radius before it is used as a divisor.
const minRadius = 1e-4

// Params holds the per-step simulation coefficients.
type Params struct {
	Decay                float32 // Magnitude multiplier per step, clamped to [0,1]
	Diffusion            float32 // Blend toward the 4-neighbour average, clamped to [0,1]
	AdvectionStrength    float32 // Scales the back-trace distance
	InjectionRadius      float32 // Gaussian radius in UV units
	InjectionStrength    float32
	InjectionStrengthMax float32
}

// ParamsFromConfig converts the YAML wind section.
func ParamsFromConfig(cfg config.WindConfig) Params {
	return Params{
		Decay:                float32(cfg.Decay),
		Diffusion:            float32(cfg.Diffusion),
		AdvectionStrength:    float32(cfg.AdvectionStrength),
		InjectionRadius:      float32(cfg.InjectionRadius),
		InjectionStrength:    float32(cfg.InjectionStrength),
		InjectionStrengthMax: float32(cfg.InjectionStrengthMax),
	}
}

// EffectiveInjection is the impulse scale actually applied by a step.
func (p Params) EffectiveInjection() float32 {
	s := p.InjectionStrength
	if p.InjectionStrengthMax < s {
		s = p.InjectionStrengthMax
	}
	if s < 0 {
		s = 0
	}
	return s
}

// Brush is the pointer-driven injection for one step.
type Brush struct {
	UV     [2]float32 // Ground-plane UV of the brush centre
	Dir    [2]float32 // Displacement direction, already clamped by the caller
	Active bool
}

// NoBrush is the inactive brush.
var NoBrush = Brush{}

// inside reports whether the brush lies on the field.
func (b Brush) inside() bool {
	return b.Active &&
		b.UV[0] >= 0 && b.UV[0] <= 1 &&
		b.UV[1] >= 0 && b.UV[1] <= 1
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
