package wind

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

// Format is the storage format negotiated for the GPU mirror of the field.
type Format int

const (
	FormatNone Format = iota // no usable float format; wind disabled
	FormatHalfFloatLinear
	FormatHalfFloatNearest
	FormatFloat
)

func (f Format) String() string {
	switch f {
	case FormatHalfFloatLinear:
		return "half-float-linear"
	case FormatHalfFloatNearest:
		return "half-float-nearest"
	case FormatFloat:
		return "float"
	default:
		return "none"
	}
}

// Linear reports whether the format is sampled with linear filtering.
func (f Format) Linear() bool {
	return f == FormatHalfFloatLinear || f == FormatFloat
}

// Capabilities describes what the graphics context can store and filter.
type Capabilities struct {
	HalfFloatRenderable bool
	HalfFloatLinear     bool
	FloatRenderable     bool
}

// FallbackOrder is the preference order tried by SelectFormat.
var FallbackOrder = []Format{
	FormatHalfFloatLinear,
	FormatHalfFloatNearest,
	FormatFloat,
}

// Supports reports whether a format can be used with these capabilities.
func (c Capabilities) Supports(f Format) bool {
	switch f {
	case FormatHalfFloatLinear:
		return c.HalfFloatRenderable && c.HalfFloatLinear
	case FormatHalfFloatNearest:
		return c.HalfFloatRenderable
	case FormatFloat:
		return c.FloatRenderable
	default:
		return false
	}
}

// SelectFormat returns the first supported entry of FallbackOrder, or
// FormatNone when nothing is usable.
func SelectFormat(c Capabilities) Format {
	for _, f := range FallbackOrder {
		if c.Supports(f) {
			return f
		}
	}
	return FormatNone
}

// BytesPerTexel is the packed size of one RGB texel.
func BytesPerTexel(f Format) int {
	switch f {
	case FormatHalfFloatLinear, FormatHalfFloatNearest:
		return 3 * 2
	case FormatFloat:
		return 3 * 4
	default:
		return 0
	}
}

// EncodeTexels packs interleaved (x, y) velocity pairs from src into RGB
// texels in dst, blue left at zero. dst must hold len(src)/2 texels. It
// returns the number of bytes written.
func EncodeTexels(dst []byte, src []float32, f Format) int {
	bpt := BytesPerTexel(f)
	if bpt == 0 {
		return 0
	}
	n := len(src) / 2
	if len(dst) < n*bpt {
		n = len(dst) / bpt
	}

	switch f {
	case FormatFloat:
		for i := 0; i < n; i++ {
			o := i * bpt
			binary.LittleEndian.PutUint32(dst[o:], math.Float32bits(src[i*2]))
			binary.LittleEndian.PutUint32(dst[o+4:], math.Float32bits(src[i*2+1]))
			binary.LittleEndian.PutUint32(dst[o+8:], 0)
		}
	default:
		for i := 0; i < n; i++ {
			o := i * bpt
			binary.LittleEndian.PutUint16(dst[o:], float16.Fromfloat32(src[i*2]).Bits())
			binary.LittleEndian.PutUint16(dst[o+2:], float16.Fromfloat32(src[i*2+1]).Bits())
			binary.LittleEndian.PutUint16(dst[o+4:], 0)
		}
	}
	return n * bpt
}
