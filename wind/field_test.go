package wind

import (
	"math"
	"math/rand/v2"
	"testing"
)

func testParams() Params {
	return Params{
		Decay:                0.95,
		Diffusion:            0.3,
		AdvectionStrength:    0.6,
		InjectionRadius:      0.05,
		InjectionStrength:    1.4,
		InjectionStrengthMax: 2.0,
	}
}

func fillRandom(f *Field, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	for i := range f.read {
		f.read[i] = rng.Float32()*2 - 1
	}
}

func maxMagnitude(buf []float32) float32 {
	var best float32
	for i := 0; i+1 < len(buf); i += 2 {
		m := float32(math.Hypot(float64(buf[i]), float64(buf[i+1])))
		if m > best {
			best = m
		}
	}
	return best
}

func TestNewFieldZeroed(t *testing.T) {
	f := NewField(32, testParams(), 0)
	if f.Resolution() != 32 {
		t.Fatalf("Resolution = %d, want 32", f.Resolution())
	}
	if len(f.Current()) != 32*32*2 {
		t.Fatalf("len(Current) = %d", len(f.Current()))
	}
	if m := maxMagnitude(f.Current()); m != 0 {
		t.Errorf("new field max magnitude = %v, want 0", m)
	}
}

func TestStepDecaysWithoutBrush(t *testing.T) {
	f := NewField(48, testParams(), 0)
	fillRandom(f, 1)

	prev := maxMagnitude(f.Current())
	for i := 0; i < 50; i++ {
		f.Step(NoBrush, 1.0/60)
		cur := maxMagnitude(f.Current())
		if cur >= prev {
			t.Fatalf("step %d: max magnitude %v did not drop below %v", i, cur, prev)
		}
		prev = cur
	}
}

func TestStepSwapsBuffers(t *testing.T) {
	f := NewField(16, testParams(), 0)
	before := &f.Current()[0]
	f.Step(NoBrush, 1.0/60)
	after := &f.Current()[0]
	if before == after {
		t.Error("Current returned the same buffer after a step")
	}
	if &f.read[0] == &f.write[0] {
		t.Error("read and write alias the same buffer")
	}
	if f.Steps() != 1 {
		t.Errorf("Steps = %d, want 1", f.Steps())
	}
}

func TestInjectionBounded(t *testing.T) {
	tests := []struct {
		name     string
		strength float32
		max      float32
		want     float32
	}{
		{"below cap", 1.0, 2.0, 1.0},
		{"above cap", 5.0, 2.0, 2.0},
		{"at cap", 2.0, 2.0, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{
				Decay:                1,
				Diffusion:            0,
				AdvectionStrength:    0,
				InjectionRadius:      0.05,
				InjectionStrength:    tt.strength,
				InjectionStrengthMax: tt.max,
			}
			f := NewField(64, p, 0)
			f.Step(Brush{UV: [2]float32{0.5, 0.5}, Dir: [2]float32{1, 0}, Active: true}, 1.0/60)

			peak, _, _ := f.Peak()
			if peak > tt.want+1e-5 {
				t.Errorf("peak %v exceeds effective strength %v", peak, tt.want)
			}
			if peak < 0.9*tt.want {
				t.Errorf("peak %v unexpectedly small for strength %v", peak, tt.want)
			}
		})
	}
}

func TestBrushKeepsLocalMaximum(t *testing.T) {
	p := Params{
		Decay:                0.9,
		Diffusion:            0.2,
		AdvectionStrength:    0.02,
		InjectionRadius:      0.05,
		InjectionStrength:    1.0,
		InjectionStrengthMax: 2.0,
	}
	f := NewField(64, p, 0)
	b := Brush{UV: [2]float32{0.5, 0.5}, Dir: [2]float32{1, 0}, Active: true}
	for i := 0; i < 30; i++ {
		f.Step(b, 1.0/60)
	}

	peak, u, v := f.Peak()
	if peak <= 0 {
		t.Fatal("no velocity after repeated injection")
	}
	if math.Abs(float64(u-0.5)) > 0.1 || math.Abs(float64(v-0.5)) > 0.1 {
		t.Errorf("peak at (%v, %v), want near (0.5, 0.5)", u, v)
	}

	cx, cy := f.Sample(0.5, 0.5)
	fx, fy := f.Sample(0.05, 0.05)
	if cx*cx+cy*cy <= fx*fx+fy*fy {
		t.Error("brush centre is not stronger than a far corner")
	}
}

func TestBrushOutsideFieldIgnored(t *testing.T) {
	tests := []struct {
		name  string
		brush Brush
	}{
		{"inactive", Brush{UV: [2]float32{0.5, 0.5}, Dir: [2]float32{1, 0}}},
		{"u above one", Brush{UV: [2]float32{1.2, 0.5}, Dir: [2]float32{1, 0}, Active: true}},
		{"v below zero", Brush{UV: [2]float32{0.5, -0.01}, Dir: [2]float32{0, 1}, Active: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewField(32, testParams(), 0)
			f.Step(tt.brush, 1.0/60)
			if m := maxMagnitude(f.Current()); m != 0 {
				t.Errorf("field gained magnitude %v from an ignored brush", m)
			}
		})
	}
}

func TestCoefficientsClamped(t *testing.T) {
	p := Params{
		Decay:             3,
		Diffusion:         -1,
		AdvectionStrength: 0,
		InjectionRadius:   0.05,
	}
	f := NewField(32, p, 0)
	fillRandom(f, 7)
	initial := maxMagnitude(f.Current())

	for i := 0; i < 10; i++ {
		f.Step(NoBrush, 1.0/60)
	}
	if got := maxMagnitude(f.Current()); got > initial+1e-6 {
		t.Errorf("max magnitude grew from %v to %v with out-of-range coefficients", initial, got)
	}
}

func TestZeroRadiusStaysFinite(t *testing.T) {
	p := testParams()
	p.InjectionRadius = 0
	f := NewField(64, p, 0)
	center := (32 + 0.5) / float32(64)
	f.Step(Brush{UV: [2]float32{center, center}, Dir: [2]float32{1, 1}, Active: true}, 1.0/60)

	for i, v := range f.Current() {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("texel component %d is %v", i, v)
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	serial := NewField(64, testParams(), 0)
	parallel := NewField(64, testParams(), 16)
	defer parallel.Dispose()
	fillRandom(serial, 3)
	fillRandom(parallel, 3)

	b := Brush{UV: [2]float32{0.3, 0.6}, Dir: [2]float32{0.5, -0.5}, Active: true}
	for i := 0; i < 5; i++ {
		serial.Step(b, 1.0/60)
		parallel.Step(b, 1.0/60)
	}

	s, p := serial.Current(), parallel.Current()
	for i := range s {
		if s[i] != p[i] {
			t.Fatalf("component %d differs: serial %v, parallel %v", i, s[i], p[i])
		}
	}
}

func TestResizeAndReset(t *testing.T) {
	f := NewField(32, testParams(), 0)
	fillRandom(f, 5)

	f.Reset()
	if m := maxMagnitude(f.Current()); m != 0 {
		t.Errorf("Reset left magnitude %v", m)
	}

	fillRandom(f, 5)
	f.Resize(48)
	if f.Resolution() != 48 || len(f.Current()) != 48*48*2 {
		t.Fatalf("Resize: res %d, len %d", f.Resolution(), len(f.Current()))
	}
	if m := maxMagnitude(f.Current()); m != 0 {
		t.Errorf("resized field not cleared: %v", m)
	}
}

func TestDispose(t *testing.T) {
	f := NewField(32, testParams(), 8)
	f.Step(NoBrush, 1.0/60)
	f.Dispose()
	if f.Current() != nil {
		t.Error("Current not nil after Dispose")
	}
	// Stepping a disposed field is a no-op
	f.Step(NoBrush, 1.0/60)

	if x, y := f.Sample(0.5, 0.5); x != 0 || y != 0 {
		t.Errorf("Sample after Dispose = (%v, %v), want zero", x, y)
	}
	if mag, _, _ := f.Peak(); mag != 0 {
		t.Errorf("Peak after Dispose = %v, want 0", mag)
	}
}
