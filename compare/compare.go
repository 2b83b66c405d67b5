// Package compare orders decimals and binary floats against fixed-width integers exactly.
//
// Every function is total: NaN sorts after every number, infinities sort by sign, and
// no input panics or needs an error return. Results never depend on lossy conversions;
// a decimal or float compares equal to an integer only when the two are the same number.
package compare

import (
	"github.com/dora-network/num2int/numeric"
)

// Ordering is the result of a three-way comparison.
type Ordering int8

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

// Negate swaps Less and Greater, for comparisons whose operands were commuted.
func (o Ordering) Negate() Ordering {
	return -o
}

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "invalid"
	}
}

// Integer is the set of fixed-width integer types a comparison accepts.
type Integer interface {
	~int16 | ~int32 | ~int64
}

// Ints orders two int64 values.
func Ints(a, b int64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func ofSign(s int) Ordering {
	switch {
	case s < 0:
		return Less
	case s > 0:
		return Greater
	default:
		return Equal
	}
}

// Decimal orders d against v.
func Decimal[T Integer](d numeric.View, v T) Ordering {
	switch d.Special() {
	case numeric.NaN, numeric.PosInf:
		return Greater
	case numeric.NegInf:
		return Less
	}

	x := int64(v)
	ds, vs := d.Sign(), int(Ints(x, 0))
	if ds != vs {
		return ofSign(ds - vs)
	}
	if ds == 0 {
		return Equal
	}

	if n, ok := d.ToFixedInt(numeric.W64); ok {
		return Ints(n, x)
	}
	if d.IsIntegral() {
		// beyond int64 in the direction of its sign
		return ofSign(ds)
	}

	floor, over := d.FloorToFixedInt(numeric.W64)
	if over != numeric.NoOverflow {
		return ofSign(ds)
	}
	// floor < d < floor+1, so d never equals an integer here
	if floor < x {
		return Less
	}
	return Greater
}

// EqualDecimal reports whether d is exactly the integer v.
func EqualDecimal[T Integer](d numeric.View, v T) bool {
	if !d.IsIntegral() {
		return false
	}
	n, ok := d.ToFixedInt(numeric.W64)
	return ok && n == int64(v)
}

func NotEqualDecimal[T Integer](d numeric.View, v T) bool {
	return !EqualDecimal(d, v)
}

// IntDecimal orders v against d.
func IntDecimal[T Integer](v T, d numeric.View) Ordering {
	return Decimal(d, v).Negate()
}
