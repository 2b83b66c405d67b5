package math

import (
	"errors"
	"math"
)

var (
	ErrOverflowAdd = errors.New("integer overflow in addition")
	ErrOverflowMul = errors.New("integer overflow in multiplication")
	ErrOverflowSub = errors.New("integer overflow in subtraction")
)

// CheckedAddI64 adds two int64's together, returning an error in the event of an overflow.
func CheckedAddI64(a, b int64) (int64, error) {
	sum := a + b
	if (sum > a) != (b > 0) {
		return 0, ErrOverflowAdd
	}
	return sum, nil
}

// CheckedSubI64 computes `a - b` for two int64's, returning an error in the event of an overflow.
func CheckedSubI64(a, b int64) (int64, error) {
	result := a - b
	if (result < a) != (b > 0) {
		return 0, ErrOverflowSub
	}
	return result, nil
}

// CheckedMulI64 multiplies two int64's together, returning an error in the event
// of an overflow.
func CheckedMulI64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	result := a * b
	if (result < 0) != ((a < 0) != (b < 0)) || result/b != a {
		return 0, ErrOverflowMul
	}
	return result, nil
}

// MulAddI64 computes `acc*m + d`, returning an error if either step overflows.
// Digit accumulation for negative values passes a negative d so that the most
// negative int64 stays reachable.
func MulAddI64(acc, m, d int64) (int64, error) {
	scaled, err := CheckedMulI64(acc, m)
	if err != nil {
		return 0, err
	}
	return CheckedAddI64(scaled, d)
}

// AbsExceeds reports whether |v| > limit for a non-negative limit without
// overflowing on math.MinInt64.
func AbsExceeds(v, limit int64) bool {
	if v == math.MinInt64 {
		return true
	}
	if v < 0 {
		v = -v
	}
	return v > limit
}
