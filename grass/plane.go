package grass

import (
	"math"

	"github.com/pthm-cable/meadow/config"
)

// minExtent floors plane dimensions before they are used as divisors.
const minExtent = 1e-4

// Extent is the ground-plane size in world units, centred on the origin.
type Extent struct {
	X, Z float32
}

// Contains reports whether a world point lies on the plane.
func (e Extent) Contains(x, z float32) bool {
	return x >= -e.X/2 && x <= e.X/2 && z >= -e.Z/2 && z <= e.Z/2
}

// Plane derives the ground-plane extent and scroll mapping from the viewport.
type Plane struct {
	baseWidth   float32
	baseDepth   float32
	aspectClamp float32
	scrollSpeed float32

	extent    Extent
	scale     float32 // min(aspect, aspectClamp)
	viewportH float32
}

// NewPlane creates a plane sized for a square viewport.
func NewPlane(cfg config.PlaneConfig) *Plane {
	p := &Plane{
		baseWidth:   float32(cfg.BaseWidth),
		baseDepth:   float32(cfg.BaseDepth),
		aspectClamp: float32(cfg.AspectClamp),
		scrollSpeed: float32(cfg.ScrollSpeed),
	}
	p.Resize(1, 1)
	return p
}

// Resize re-derives the extent for a viewport in logical pixels. Ultra-wide
// aspects are clamped so the plane and scroll speed stay bounded.
func (p *Plane) Resize(w, h float32) {
	if w <= 0 || h <= 0 {
		return
	}
	s := w / h
	if p.aspectClamp > 0 && s > p.aspectClamp {
		s = p.aspectClamp
	}
	p.scale = s
	p.viewportH = h
	p.extent = Extent{X: p.baseWidth * s, Z: p.baseDepth}
}

// Extent returns the current plane size.
func (p *Plane) Extent() Extent {
	return p.extent
}

// WorldPerPixel is the world Z distance scrolled per pixel of scroll.
func (p *Plane) WorldPerPixel() float32 {
	if p.viewportH <= 0 {
		return 0
	}
	return p.scrollSpeed * p.baseDepth * p.scale / p.viewportH
}

// ScrollOffset maps a scroll position in pixels to a wrapped offset in [0,1).
func (p *Plane) ScrollOffset(scrollY float32) float32 {
	z := p.extent.Z
	if z < minExtent {
		z = minExtent
	}
	return fract(scrollY * p.WorldPerPixel() / z)
}

// UV maps a world position on the plane to ground UV.
func (p *Plane) UV(x, z float32) (u, v float32) {
	ex, ez := p.extent.X, p.extent.Z
	if ex < minExtent {
		ex = minExtent
	}
	if ez < minExtent {
		ez = minExtent
	}
	return x/ex + 0.5, z/ez + 0.5
}

// WrapZ is the effective Z of an instance after scrolling, matching the
// vertex shader's wrap.
func WrapZ(homeZ, extentZ, offset float32) float32 {
	if extentZ < minExtent {
		extentZ = minExtent
	}
	return (fract(homeZ/extentZ-offset+0.5) - 0.5) * extentZ
}

// fract returns x - floor(x), always in [0,1).
func fract(x float32) float32 {
	f := x - float32(math.Floor(float64(x)))
	if f >= 1 {
		f = 0
	}
	return f
}
