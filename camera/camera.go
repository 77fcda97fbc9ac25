// Package camera provides the perspective camera that frames the grass field
// and the ray casting used to map the pointer onto the ground plane.
package camera

import "math"

// Camera is a right-handed perspective camera with a vertical field of view.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3

	// FovY is the vertical field of view in degrees
	FovY float32

	// Aspect is viewport width / height
	Aspect float32
}

// New creates a camera above and behind the origin, looking slightly past it
// so the far edge of the field fills the top of the view.
func New(height, distance, lookAhead, fovY float32) *Camera {
	return &Camera{
		Position: Vec3{0, height, distance},
		Target:   Vec3{0, 0, -lookAhead},
		Up:       Vec3{0, 1, 0},
		FovY:     fovY,
		Aspect:   1,
	}
}

// Resize updates the aspect ratio for a viewport in logical pixels.
func (c *Camera) Resize(w, h float32) {
	if w <= 0 || h <= 0 {
		return
	}
	c.Aspect = w / h
}

// basis returns the orthonormal forward, right and up vectors.
func (c *Camera) basis() (forward, right, up Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return
}

func (c *Camera) tanHalfFov() float32 {
	return float32(math.Tan(float64(c.FovY) * math.Pi / 360))
}

// ScreenToNDC converts a pixel position to normalized device coordinates,
// x to the right and y up, both in [-1, 1] across the viewport.
func ScreenToNDC(px, py, w, h float32) (x, y float32) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return 2*px/w - 1, 1 - 2*py/h
}

// Ray returns the world-space ray through a point in NDC.
func (c *Camera) Ray(ndcX, ndcY float32) Ray {
	forward, right, up := c.basis()
	th := c.tanHalfFov()
	dir := forward.
		Add(right.Scale(ndcX * th * c.Aspect)).
		Add(up.Scale(ndcY * th)).
		Normalize()
	return Ray{Origin: c.Position, Dir: dir}
}

// WorldToNDC projects a world point. ok is false for points behind the camera.
func (c *Camera) WorldToNDC(p Vec3) (x, y float32, ok bool) {
	forward, right, up := c.basis()
	d := p.Sub(c.Position)
	z := d.Dot(forward)
	if z <= 0 {
		return 0, 0, false
	}
	th := c.tanHalfFov()
	return d.Dot(right) / (z * th * c.Aspect), d.Dot(up) / (z * th), true
}

// Ray is a half-line from Origin along the unit vector Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// IntersectGround returns where the ray crosses the horizontal plane at
// height y. ok is false when the ray is parallel to the plane or the plane
// lies behind the origin.
func (r Ray) IntersectGround(y float32) (Vec3, bool) {
	if absf(r.Dir.Y) < 1e-6 {
		return Vec3{}, false
	}
	t := (y - r.Origin.Y) / r.Dir.Y
	if t <= 0 {
		return Vec3{}, false
	}
	hit := r.At(t)
	hit.Y = y
	return hit, true
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
