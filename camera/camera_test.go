package camera

import (
	"math"
	"testing"
)

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestNew(t *testing.T) {
	cam := New(5.5, 8.5, 1.5, 42)

	if cam.Position != (Vec3{0, 5.5, 8.5}) {
		t.Errorf("expected position (0, 5.5, 8.5), got %+v", cam.Position)
	}
	if cam.Target != (Vec3{0, 0, -1.5}) {
		t.Errorf("expected target (0, 0, -1.5), got %+v", cam.Target)
	}
	if cam.Aspect != 1 {
		t.Errorf("expected aspect 1, got %f", cam.Aspect)
	}
}

func TestResize(t *testing.T) {
	cam := New(5.5, 8.5, 1.5, 42)
	cam.Resize(1920, 1080)
	if !near(cam.Aspect, 16.0/9.0, 1e-5) {
		t.Errorf("expected aspect 16/9, got %f", cam.Aspect)
	}

	// Degenerate viewport keeps the previous aspect
	cam.Resize(0, 1080)
	if !near(cam.Aspect, 16.0/9.0, 1e-5) {
		t.Errorf("zero width changed aspect to %f", cam.Aspect)
	}
}

func TestScreenToNDC(t *testing.T) {
	testCases := []struct {
		px, py float32
		x, y   float32
	}{
		{640, 360, 0, 0},   // center
		{0, 0, -1, 1},      // top-left
		{1280, 720, 1, -1}, // bottom-right
	}
	for _, tc := range testCases {
		x, y := ScreenToNDC(tc.px, tc.py, 1280, 720)
		if !near(x, tc.x, 1e-6) || !near(y, tc.y, 1e-6) {
			t.Errorf("ScreenToNDC(%v, %v) = (%v, %v), want (%v, %v)", tc.px, tc.py, x, y, tc.x, tc.y)
		}
	}
}

func TestCenterRayHitsTarget(t *testing.T) {
	cam := New(5.5, 8.5, 1.5, 42)
	cam.Resize(1280, 720)

	hit, ok := cam.Ray(0, 0).IntersectGround(0)
	if !ok {
		t.Fatal("center ray missed the ground")
	}
	if !near(hit.X, 0, 1e-4) || !near(hit.Z, -1.5, 1e-4) {
		t.Errorf("center ray hit %+v, want target (0, 0, -1.5)", hit)
	}
}

func TestRayProjectRoundtrip(t *testing.T) {
	cam := New(5.5, 8.5, 1.5, 42)
	cam.Resize(1280, 720)

	testCases := []struct{ x, y float32 }{
		{0, 0},
		{-0.8, -0.9},
		{0.6, -0.3},
	}
	for _, tc := range testCases {
		hit, ok := cam.Ray(tc.x, tc.y).IntersectGround(0)
		if !ok {
			t.Fatalf("ray (%v, %v) missed the ground", tc.x, tc.y)
		}
		x, y, ok := cam.WorldToNDC(hit)
		if !ok || !near(x, tc.x, 1e-3) || !near(y, tc.y, 1e-3) {
			t.Errorf("roundtrip failed: (%v,%v) -> %+v -> (%v,%v)", tc.x, tc.y, hit, x, y)
		}
	}
}

func TestRayAboveHorizonMisses(t *testing.T) {
	cam := New(5.5, 8.5, 1.5, 42)
	cam.Resize(1280, 720)

	// Level the camera so the upper half of the view is sky
	cam.Target = Vec3{0, 5.5, 0}
	if _, ok := cam.Ray(0, 0.5).IntersectGround(0); ok {
		t.Error("upward ray should not hit the ground")
	}
}

func TestIntersectGroundParallel(t *testing.T) {
	r := Ray{Origin: Vec3{0, 1, 0}, Dir: Vec3{1, 0, 0}}
	if _, ok := r.IntersectGround(0); ok {
		t.Error("parallel ray should not intersect")
	}
}

func TestWorldToNDCBehind(t *testing.T) {
	cam := New(5.5, 8.5, 1.5, 42)
	if _, _, ok := cam.WorldToNDC(Vec3{0, 5.5, 20}); ok {
		t.Error("point behind camera should not project")
	}
}

func TestVec3(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if x.Cross(y) != (Vec3{0, 0, 1}) {
		t.Errorf("x cross y = %+v", x.Cross(y))
	}
	if l := (Vec3{3, 4, 0}).Normalize().Length(); !near(l, 1, 1e-6) {
		t.Errorf("normalized length = %v", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to itself")
	}
}
