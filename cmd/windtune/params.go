// Package main tunes wind field coefficients with CMA-ES so a scripted
// pointer stroke produces a target wake at every tier's sim resolution.
package main

import (
	"github.com/pthm-cable/meadow/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the wind parameter set. The injection cap is not
// tuned; it bounds the strength range instead.
func NewParamVector(cfg *config.Config) *ParamVector {
	strengthMax := cfg.Wind.InjectionStrengthMax
	if strengthMax <= 0.2 {
		strengthMax = 2
	}
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "decay", Path: "wind.decay", Min: 0.85, Max: 0.995, Default: cfg.Wind.Decay},
			{Name: "diffusion", Path: "wind.diffusion", Min: 0.0, Max: 0.8, Default: cfg.Wind.Diffusion},
			{Name: "advection_strength", Path: "wind.advection_strength", Min: 0.0, Max: 2.0, Default: cfg.Wind.AdvectionStrength},
			{Name: "injection_radius", Path: "wind.injection_radius", Min: 0.01, Max: 0.15, Default: cfg.Wind.InjectionRadius},
			{Name: "injection_strength", Path: "wind.injection_strength", Min: 0.2, Max: strengthMax, Default: cfg.Wind.InjectionStrength},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to the wind section.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Wind.Decay = c[0]
	cfg.Wind.Diffusion = c[1]
	cfg.Wind.AdvectionStrength = c[2]
	cfg.Wind.InjectionRadius = c[3]
	cfg.Wind.InjectionStrength = c[4]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Wind.Decay,
		cfg.Wind.Diffusion,
		cfg.Wind.AdvectionStrength,
		cfg.Wind.InjectionRadius,
		cfg.Wind.InjectionStrength,
	}
}
