package wind

import (
	"math"
)

// Field is the ping-pong velocity grid. read holds the last completed step,
// write receives the next one; the two swap after every step and are never
// the same slice.
type Field struct {
	res    int
	params Params

	read  []float32 // [x0, y0, x1, y1, ...] interleaved, row-major, row 0 at v=0
	write []float32

	// Per-step constants shared with band workers
	k kernel

	pool              *bandPool
	parallelThreshold int
	steps             uint64
}

// kernel captures the clamped coefficients for one step.
type kernel struct {
	decay     float32
	diffusion float32
	advect    float32 // AdvectionStrength * dt
	inject    float32
	invR2     float32
	brush     Brush
	hasBrush  bool
}

// NewField allocates a resolution x resolution field cleared to zero.
// parallelThreshold is the resolution at which steps are split across
// worker goroutines (0 disables workers).
func NewField(resolution int, params Params, parallelThreshold int) *Field {
	if resolution < 2 {
		resolution = 2
	}
	f := &Field{
		params:            params,
		parallelThreshold: parallelThreshold,
	}
	f.allocate(resolution)
	return f
}

func (f *Field) allocate(resolution int) {
	f.res = resolution
	f.read = make([]float32, resolution*resolution*2)
	f.write = make([]float32, resolution*resolution*2)
}

// Resolution returns the grid edge length in texels.
func (f *Field) Resolution() int {
	return f.res
}

// Params returns the active coefficients.
func (f *Field) Params() Params {
	return f.params
}

// SetParams replaces the coefficients used by subsequent steps.
func (f *Field) SetParams(p Params) {
	f.params = p
}

// Steps returns the number of completed steps.
func (f *Field) Steps() uint64 {
	return f.steps
}

// Current returns the most recently completed step. The slice is owned by
// the field and is only valid until the next Step, Resize or Dispose.
func (f *Field) Current() []float32 {
	return f.read
}

// Resize recreates both buffers at a new resolution, cleared to zero.
// It is a no-op when the resolution is unchanged.
func (f *Field) Resize(resolution int) {
	if resolution < 2 {
		resolution = 2
	}
	if resolution == f.res {
		return
	}
	f.allocate(resolution)
}

// Reset clears both buffers to zero velocity.
func (f *Field) Reset() {
	clear(f.read)
	clear(f.write)
}

// Step advances the field by dt seconds, injecting the brush if it is active
// and on the field. The result is available from Current when Step returns.
func (f *Field) Step(b Brush, dt float32) {
	if f.read == nil {
		return
	}
	if dt < 0 {
		dt = 0
	}

	p := f.params
	r := p.InjectionRadius
	if r < minRadius {
		r = minRadius
	}
	f.k = kernel{
		decay:     clamp01(p.Decay),
		diffusion: clamp01(p.Diffusion),
		advect:    p.AdvectionStrength * dt,
		inject:    p.EffectiveInjection(),
		invR2:     1 / (r * r),
		brush:     b,
		hasBrush:  b.inside(),
	}

	if f.parallelThreshold > 0 && f.res >= f.parallelThreshold {
		if f.pool == nil {
			f.pool = newBandPool(f.stepRows)
		}
		f.pool.run(f.res)
	} else {
		f.stepRows(0, f.res)
	}

	// Swap only after every row of write is complete
	f.read, f.write = f.write, f.read
	f.steps++
}

// stepRows computes rows [y0, y1) of write from read.
func (f *Field) stepRows(y0, y1 int) {
	res := f.res
	k := &f.k
	inv := 1 / float32(res)
	src := f.read
	dst := f.write

	for y := y0; y < y1; y++ {
		v := (float32(y) + 0.5) * inv
		for x := 0; x < res; x++ {
			u := (float32(x) + 0.5) * inv
			i := (y*res + x) * 2
			vx, vy := src[i], src[i+1]

			// (a) semi-Lagrangian back-trace
			ax, ay := f.bilinear(src, u-k.advect*vx, v-k.advect*vy)

			// (b) diffusion toward the 4-neighbour average
			bx, by := f.boxAverage(src, x, y)
			ox := ax + (bx-ax)*k.diffusion
			oy := ay + (by-ay)*k.diffusion

			// (c) decay
			ox *= k.decay
			oy *= k.decay

			// (d) brush injection
			if k.hasBrush {
				du := u - k.brush.UV[0]
				dv := v - k.brush.UV[1]
				w := float32(math.Exp(float64(-0.5 * (du*du + dv*dv) * k.invR2)))
				ox += k.brush.Dir[0] * k.inject * w
				oy += k.brush.Dir[1] * k.inject * w
			}

			dst[i] = ox
			dst[i+1] = oy
		}
	}
}

// boxAverage returns the clamp-to-edge mean of the four direct neighbours.
func (f *Field) boxAverage(src []float32, x, y int) (float32, float32) {
	res := f.res
	xl, xr := x-1, x+1
	yd, yu := y-1, y+1
	if xl < 0 {
		xl = 0
	}
	if xr >= res {
		xr = res - 1
	}
	if yd < 0 {
		yd = 0
	}
	if yu >= res {
		yu = res - 1
	}
	l := (y*res + xl) * 2
	r := (y*res + xr) * 2
	d := (yd*res + x) * 2
	u := (yu*res + x) * 2
	return (src[l] + src[r] + src[d] + src[u]) * 0.25,
		(src[l+1] + src[r+1] + src[d+1] + src[u+1]) * 0.25
}

// bilinear samples src at a UV position with clamp-to-edge addressing,
// matching linear texture filtering on texel centres.
func (f *Field) bilinear(src []float32, u, v float32) (float32, float32) {
	res := f.res
	fx := u*float32(res) - 0.5
	fy := v*float32(res) - 0.5

	x0f := float32(math.Floor(float64(fx)))
	y0f := float32(math.Floor(float64(fy)))
	tx := fx - x0f
	ty := fy - y0f
	x0 := clampIndex(int(x0f), res)
	y0 := clampIndex(int(y0f), res)
	x1 := clampIndex(int(x0f)+1, res)
	y1 := clampIndex(int(y0f)+1, res)

	i00 := (y0*res + x0) * 2
	i10 := (y0*res + x1) * 2
	i01 := (y1*res + x0) * 2
	i11 := (y1*res + x1) * 2

	ax := src[i00] + (src[i10]-src[i00])*tx
	bx := src[i01] + (src[i11]-src[i01])*tx
	ay := src[i00+1] + (src[i10+1]-src[i00+1])*tx
	by := src[i01+1] + (src[i11+1]-src[i01+1])*tx

	return ax + (bx-ax)*ty, ay + (by-ay)*ty
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Sample returns the bilinearly interpolated velocity of the current step.
func (f *Field) Sample(u, v float32) (float32, float32) {
	if f.read == nil {
		return 0, 0
	}
	return f.bilinear(f.read, u, v)
}

// Peak returns the largest velocity magnitude in the current step and the
// UV of the texel holding it.
func (f *Field) Peak() (mag, u, v float32) {
	if f.read == nil {
		return 0, 0, 0
	}
	res := f.res
	best := float32(-1)
	bestIdx := 0
	for i := 0; i < res*res; i++ {
		x, y := f.read[i*2], f.read[i*2+1]
		m := x*x + y*y
		if m > best {
			best = m
			bestIdx = i
		}
	}
	inv := 1 / float32(res)
	u = (float32(bestIdx%res) + 0.5) * inv
	v = (float32(bestIdx/res) + 0.5) * inv
	return float32(math.Sqrt(float64(best))), u, v
}

// Dispose stops worker goroutines and releases both buffers.
func (f *Field) Dispose() {
	if f.pool != nil {
		f.pool.stop()
		f.pool = nil
	}
	f.read = nil
	f.write = nil
}
