package compare

import (
	"math"

	smath "github.com/dora-network/num2int/math"
)

const (
	// largest magnitudes below which every integer is exact in the float format
	exactFloat32 = 1 << 24
	exactFloat64 = 1 << 53

	twoPow63 = 1 << 63
)

type float interface {
	~float32 | ~float64
}

func floats[F float](a, b F) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// castOrder orders the float image c of x against x itself. Only magnitudes at or above
// 2^63 fail to convert back, and those exceed every int64.
func castOrder[F float](c F, x int64) Ordering {
	if float64(c) >= twoPow63 {
		return Greater
	}
	return Ints(int64(c), x)
}

func compareFloat[F float](f F, x int64, exact int64) Ordering {
	if f != f {
		return Greater
	}
	c := F(x)
	if smath.AbsExceeds(x, exact) {
		if dir := castOrder(c, x); dir != Equal {
			if o := floats(f, c); o != Equal {
				return o
			}
			// f is the rounded image of x, which lies on the other side
			return dir
		}
	}
	return floats(f, c)
}

// Float64 orders f against v.
func Float64[T Integer](f float64, v T) Ordering {
	return compareFloat(f, int64(v), exactFloat64)
}

// Float32 orders f against v without widening f.
func Float32[T Integer](f float32, v T) Ordering {
	return compareFloat(f, int64(v), exactFloat32)
}

// EqualFloat64 reports whether f is exactly the integer v.
func EqualFloat64[T Integer](f float64, v T) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return Float64(f, v) == Equal
}

// EqualFloat32 reports whether f is exactly the integer v.
func EqualFloat32[T Integer](f float32, v T) bool {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return false
	}
	return Float32(f, v) == Equal
}

func NotEqualFloat64[T Integer](f float64, v T) bool {
	return !EqualFloat64(f, v)
}

func NotEqualFloat32[T Integer](f float32, v T) bool {
	return !EqualFloat32(f, v)
}

// IntFloat64 orders v against f.
func IntFloat64[T Integer](v T, f float64) Ordering {
	return Float64(f, v).Negate()
}

// IntFloat32 orders v against f.
func IntFloat32[T Integer](v T, f float32) Ordering {
	return Float32(f, v).Negate()
}
