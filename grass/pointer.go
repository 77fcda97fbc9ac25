package grass

import (
	"math"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/wind"
)

// Pointer turns pointer positions into a wind brush. Move and Leave record
// input as it arrives; Frame resolves it once per frame.
type Pointer struct {
	minWidth  float32
	maxOffset float32

	px, py  float32
	present bool

	prevX, prevZ float32
	hasPrev      bool
}

// NewPointer creates a mapper that ignores viewports narrower than minWidth
// and clamps per-frame displacement to maxOffset world units.
func NewPointer(minWidth, maxOffset float32) *Pointer {
	return &Pointer{minWidth: minWidth, maxOffset: maxOffset}
}

// Move records the pointer position in logical pixels.
func (p *Pointer) Move(px, py float32) {
	p.px, p.py = px, py
	p.present = true
}

// Leave marks the pointer as gone.
func (p *Pointer) Leave() {
	p.present = false
	p.hasPrev = false
}

// Active reports whether a pointer position is pending.
func (p *Pointer) Active() bool {
	return p.present
}

// Frame casts the pointer onto the ground and returns the brush for this
// frame. Misses and off-plane hits give an inactive brush.
func (p *Pointer) Frame(cam *camera.Camera, w, h float32, plane *Plane) wind.Brush {
	if !p.present || w < p.minWidth {
		p.hasPrev = false
		return wind.NoBrush
	}

	nx, ny := camera.ScreenToNDC(p.px, p.py, w, h)
	hit, ok := cam.Ray(nx, ny).IntersectGround(0)
	if !ok || !plane.Extent().Contains(hit.X, hit.Z) {
		p.hasPrev = false
		return wind.NoBrush
	}

	u, v := plane.UV(hit.X, hit.Z)
	if u < 0 || u > 1 || v < 0 || v > 1 {
		p.hasPrev = false
		return wind.NoBrush
	}

	var dx, dz float32
	if p.hasPrev {
		dx, dz = ClampLength(hit.X-p.prevX, hit.Z-p.prevZ, p.maxOffset)
	}
	p.prevX, p.prevZ = hit.X, hit.Z
	p.hasPrev = true

	return wind.Brush{
		UV:     [2]float32{u, v},
		Dir:    [2]float32{dx, dz},
		Active: true,
	}
}

// ClampLength scales (x, y) down so its length is at most max.
func ClampLength(x, y, max float32) (float32, float32) {
	if max <= 0 {
		return 0, 0
	}
	l := float32(math.Hypot(float64(x), float64(y)))
	if l <= max {
		return x, y
	}
	s := max / l
	return x * s, y * s
}
