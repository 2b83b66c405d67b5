package numeric

import (
	"fmt"
	"math"

	"github.com/dora-network/num2int/errors"
)

// Width is the bit width of a two's-complement fixed integer.
type Width uint8

const (
	W16 Width = 16
	W32 Width = 32
	W64 Width = 64
)

// Widths lists every supported width, narrowest first.
var Widths = [...]Width{W16, W32, W64}

// ParseWidth accepts a bit count (16, 32, 64), a Go type name (int16, int32, int64)
// or a catalog type name (int2, int4, int8).
func ParseWidth(s string) (Width, error) {
	switch s {
	case "16", "int16", "int2", "smallint":
		return W16, nil
	case "32", "int32", "int4", "integer", "int":
		return W32, nil
	case "64", "int64", "int8", "bigint":
		return W64, nil
	default:
		return 0, errors.Wrap(errors.InvalidInputError, errors.ErrInvalidWidth, fmt.Sprintf("width %q", s))
	}
}

func (w Width) Valid() bool {
	return w == W16 || w == W32 || w == W64
}

// Min returns the smallest value representable at this width.
func (w Width) Min() int64 {
	switch w {
	case W16:
		return math.MinInt16
	case W32:
		return math.MinInt32
	default:
		return math.MinInt64
	}
}

// Max returns the largest value representable at this width.
func (w Width) Max() int64 {
	switch w {
	case W16:
		return math.MaxInt16
	case W32:
		return math.MaxInt32
	default:
		return math.MaxInt64
	}
}

// Contains reports whether v is representable at this width.
func (w Width) Contains(v int64) bool {
	return v >= w.Min() && v <= w.Max()
}

// Classify reports on which side of the width's range v lies, if outside it.
func (w Width) Classify(v int64) Overflow {
	switch {
	case v < w.Min():
		return Below
	case v > w.Max():
		return Above
	default:
		return NoOverflow
	}
}

// TypeName returns the catalog name of the integer type of this width.
func (w Width) TypeName() string {
	switch w {
	case W16:
		return "int2"
	case W32:
		return "int4"
	case W64:
		return "int8"
	default:
		return "invalid"
	}
}

func (w Width) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Width(%d)", uint8(w))
	}
	return fmt.Sprintf("int%d", uint8(w))
}

// Overflow records the direction in which a value left a width's range.
type Overflow int8

const (
	Below      Overflow = -1
	NoOverflow Overflow = 0
	Above      Overflow = 1
)

func (o Overflow) String() string {
	switch o {
	case Below:
		return "below"
	case Above:
		return "above"
	default:
		return "none"
	}
}
