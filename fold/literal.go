package fold

import (
	"math"
	"strconv"

	"github.com/dora-network/num2int/compare"
	"github.com/dora-network/num2int/hash"
	"github.com/dora-network/num2int/numeric"
	"github.com/dora-network/num2int/operator"
)

type literalKind uint8

const (
	literalNull literalKind = iota
	literalDecimal
	literalFloat32
	literalFloat64
)

// Literal is the constant side of a comparison: a decimal, a binary float, or null.
// The zero value is null.
type Literal struct {
	kind literalKind
	dec  numeric.View
	f32  float32
	f64  float64
}

func Null() Literal {
	return Literal{}
}

func Decimal(v numeric.View) Literal {
	return Literal{kind: literalDecimal, dec: v}
}

func Float32(f float32) Literal {
	return Literal{kind: literalFloat32, f32: f}
}

func Float64(f float64) Literal {
	return Literal{kind: literalFloat64, f64: f}
}

func (l Literal) IsNull() bool {
	return l.kind == literalNull
}

// Type returns the catalog type of a non-null literal.
func (l Literal) Type() (operator.LiteralType, bool) {
	switch l.kind {
	case literalDecimal:
		return operator.Numeric, true
	case literalFloat32:
		return operator.Float4, true
	case literalFloat64:
		return operator.Float8, true
	default:
		return 0, false
	}
}

// IsSpecial reports NaN and infinities.
func (l Literal) IsSpecial() bool {
	switch l.kind {
	case literalDecimal:
		return !l.dec.IsFinite()
	case literalFloat32:
		return math.IsNaN(float64(l.f32)) || math.IsInf(float64(l.f32), 0)
	case literalFloat64:
		return math.IsNaN(l.f64) || math.IsInf(l.f64, 0)
	default:
		return false
	}
}

// Compare orders the literal against x exactly. Null has no ordering and reports Equal.
func (l Literal) Compare(x int64) compare.Ordering {
	switch l.kind {
	case literalDecimal:
		return compare.Decimal(l.dec, x)
	case literalFloat32:
		return compare.Float32(l.f32, x)
	case literalFloat64:
		return compare.Float64(l.f64, x)
	default:
		return compare.Equal
	}
}

// Hash hashes the literal so that it collides with every integer it equals, hashed with
// hash.IntAsDecimalExtended for decimals or hash.IntAsFloatExtended for floats. Null
// hashes to zero.
func (l Literal) Hash(seed uint64) uint64 {
	switch l.kind {
	case literalDecimal:
		return hash.DecimalExtended(l.dec, seed)
	case literalFloat32:
		return hash.Float32Extended(l.f32, seed)
	case literalFloat64:
		return hash.Float64Extended(l.f64, seed)
	default:
		return 0
	}
}

// Classify places the literal relative to width w's integers.
func (l Literal) Classify(w numeric.Width) Classification {
	switch l.kind {
	case literalDecimal:
		return ClassifyDecimal(l.dec, w)
	case literalFloat32:
		return ClassifyFloat32(l.f32, w)
	case literalFloat64:
		return ClassifyFloat64(l.f64, w)
	default:
		return Classification{}
	}
}

func (l Literal) String() string {
	switch l.kind {
	case literalDecimal:
		return l.dec.String()
	case literalFloat32:
		return strconv.FormatFloat(float64(l.f32), 'g', -1, 32)
	case literalFloat64:
		return strconv.FormatFloat(l.f64, 'g', -1, 64)
	default:
		return "NULL"
	}
}
