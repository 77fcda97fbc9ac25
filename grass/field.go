package grass

import (
	"math"
	"math/rand/v2"
)

// Instance is the per-instance data uploaded once per layout.
type Instance struct {
	X, Z float32 // Home position on the plane
	Yaw  float32
	Seed float32 // [0,1), drives lean direction and turbulence phase
}

// Field owns the instance buffer and the clump geometry. The buffer is
// allocated once for the largest tier; quality changes only move Count.
type Field struct {
	blade       BladeSpec
	clumpRadius float32
	seed        uint64

	unit      []Instance // Home positions in [-0.5, 0.5]², fixed for the field's life
	instances []Instance // unit scaled by the current extent
	count     int

	geometry   Geometry
	generation int
}

// NewField allocates maxInstances instances and builds the first clump.
func NewField(maxInstances int, blade BladeSpec, clumpSize int, clumpRadius float32, seed uint64) *Field {
	if maxInstances < 0 {
		maxInstances = 0
	}
	f := &Field{
		blade:       blade,
		clumpRadius: clumpRadius,
		seed:        seed,
		unit:        make([]Instance, maxInstances),
		instances:   make([]Instance, maxInstances),
		count:       maxInstances,
	}

	// Independent uniform samples, so any prefix is itself uniform
	rng := rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
	for i := range f.unit {
		f.unit[i] = Instance{
			X:    rng.Float32() - 0.5,
			Z:    rng.Float32() - 0.5,
			Yaw:  rng.Float32() * 2 * math.Pi,
			Seed: rng.Float32(),
		}
	}
	copy(f.instances, f.unit)

	f.build(clumpSize)
	return f
}

func (f *Field) build(clumpSize int) {
	rng := rand.New(rand.NewPCG(f.seed, uint64(clumpSize)))
	f.geometry = BuildClump(f.blade, clumpSize, f.clumpRadius, rng)
	f.generation++
}

// Geometry returns the current clump geometry.
func (f *Field) Geometry() Geometry {
	return f.geometry
}

// Generation increments every time the geometry is rebuilt.
func (f *Field) Generation() int {
	return f.generation
}

// ClumpSize returns blades per instance.
func (f *Field) ClumpSize() int {
	return f.geometry.ClumpSize
}

// SetClumpSize rebuilds the geometry when the clump size changes.
func (f *Field) SetClumpSize(n int) (rebuilt bool) {
	if n < 1 {
		n = 1
	}
	if n == f.geometry.ClumpSize {
		return false
	}
	f.build(n)
	return true
}

// SetCount sets the drawn instance count to min(n, Max()) and returns it.
// It never reallocates.
func (f *Field) SetCount(n int) int {
	if n < 0 {
		n = 0
	}
	if n > len(f.instances) {
		n = len(f.instances)
	}
	f.count = n
	return n
}

// Count returns the drawn instance count.
func (f *Field) Count() int {
	return f.count
}

// Max returns the allocated instance count.
func (f *Field) Max() int {
	return len(f.instances)
}

// Layout scales every allocated instance's home position to the extent.
// Called on build and resize only.
func (f *Field) Layout(e Extent) {
	for i, u := range f.unit {
		f.instances[i] = Instance{
			X:    u.X * e.X,
			Z:    u.Z * e.Z,
			Yaw:  u.Yaw,
			Seed: u.Seed,
		}
	}
}

// Instances returns every allocated instance. Only the first Count are drawn.
func (f *Field) Instances() []Instance {
	return f.instances
}
