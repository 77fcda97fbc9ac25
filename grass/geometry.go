// Package grass holds the CPU side of the grass field: clump geometry,
// instance layout, the scrolling ground plane and pointer mapping.
package grass

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/meadow/config"
)

// BladeSpec describes a single tapered blade.
type BladeSpec struct {
	Height   float32
	Width    float32
	Segments int
}

// BladeSpecFromConfig converts the YAML grass section.
func BladeSpecFromConfig(cfg config.GrassConfig) BladeSpec {
	return BladeSpec{
		Height:   float32(cfg.BladeHeight),
		Width:    float32(cfg.BladeWidth),
		Segments: cfg.Segments,
	}
}

// Geometry is the vertex data of one clump, shared by every instance.
type Geometry struct {
	Positions []float32 // xyz per vertex, yaw and clump offset baked in
	TexCoords []float32 // (side, height fraction) per vertex
	Offsets   []float32 // clump offset xz per vertex
	Indices   []uint16
	ClumpSize int
}

// VertexCount returns the number of vertices.
func (g Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// IndexCount returns the number of indices.
func (g Geometry) IndexCount() int {
	return len(g.Indices)
}

// VerticesPerBlade is the vertex count of a blade with the given segments.
func VerticesPerBlade(segments int) int {
	return (segments + 1) * 2
}

// IndicesPerBlade is the index count of a blade with the given segments.
func IndicesPerBlade(segments int) int {
	return segments * 6
}

// BuildClump builds clumpSize blades as one quad strip each. Every member
// gets a random yaw and a uniform-disk offset within clumpRadius.
func BuildClump(spec BladeSpec, clumpSize int, clumpRadius float32, rng *rand.Rand) Geometry {
	if clumpSize < 1 {
		clumpSize = 1
	}
	if spec.Segments < 1 {
		spec.Segments = 1
	}
	vpb := VerticesPerBlade(spec.Segments)

	g := Geometry{
		Positions: make([]float32, 0, clumpSize*vpb*3),
		TexCoords: make([]float32, 0, clumpSize*vpb*2),
		Offsets:   make([]float32, 0, clumpSize*vpb*2),
		Indices:   make([]uint16, 0, clumpSize*IndicesPerBlade(spec.Segments)),
		ClumpSize: clumpSize,
	}

	for b := 0; b < clumpSize; b++ {
		yaw := rng.Float64() * 2 * math.Pi
		sin, cos := math.Sincos(yaw)
		s, c := float32(sin), float32(cos)

		// sqrt keeps the disk density uniform
		r := float32(math.Sqrt(rng.Float64())) * clumpRadius
		theta := rng.Float64() * 2 * math.Pi
		ox := r * float32(math.Cos(theta))
		oz := r * float32(math.Sin(theta))

		base := uint16(b * vpb)
		for seg := 0; seg <= spec.Segments; seg++ {
			h := float32(seg) / float32(spec.Segments)
			half := spec.Width * 0.5 * (1 - h)
			y := h * spec.Height

			for side := 0; side < 2; side++ {
				lx := -half
				if side == 1 {
					lx = half
				}
				// Rotate about Y: x' = x cos, z' = -x sin
				g.Positions = append(g.Positions, lx*c+ox, y, -lx*s+oz)
				g.TexCoords = append(g.TexCoords, float32(side), h)
				g.Offsets = append(g.Offsets, ox, oz)
			}

			if seg < spec.Segments {
				i0 := base + uint16(seg*2)
				g.Indices = append(g.Indices, i0, i0+1, i0+2, i0+2, i0+1, i0+3)
			}
		}
	}
	return g
}
