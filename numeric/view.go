// Package numeric reads arbitrary-precision decimal values stored in the host's packed
// base-10000 layout without copying them.
//
// Layout (big-endian):
//
//	bytes 0-1  header: bits 15-14 sign tag (00 positive, 01 negative, 11 special),
//	           bits 13-0 display scale; specials are 0xC000 NaN, 0xD000 +Inf, 0xF000 -Inf
//	bytes 2-3  weight, int16, the base-10000 exponent of the first digit
//	bytes 4..  digits, uint16 each in [0, 9999], most significant first
package numeric

import (
	"encoding/binary"

	"github.com/dora-network/num2int/errors"
	smath "github.com/dora-network/num2int/math"
)

const (
	// Base is the radix of a packed digit.
	Base = 10000
	// HeaderSize is the number of bytes before the first digit.
	HeaderSize = 4
	// MaxIntegralDigits is the most base-10000 integral digits an int64 can need.
	MaxIntegralDigits = 5

	signMask    uint16 = 0xC000
	signPos     uint16 = 0x0000
	signNeg     uint16 = 0x4000
	signSpecial uint16 = 0xC000
	specialMask uint16 = 0xF000
	tagNaN      uint16 = 0xC000
	tagPosInf   uint16 = 0xD000
	tagNegInf   uint16 = 0xF000
	scaleMask   uint16 = 0x3FFF
)

// Special tags the non-finite values a View can hold.
type Special uint8

const (
	Finite Special = iota
	NaN
	PosInf
	NegInf
)

func (s Special) String() string {
	switch s {
	case NaN:
		return "NaN"
	case PosInf:
		return "Infinity"
	case NegInf:
		return "-Infinity"
	default:
		return "finite"
	}
}

// View is a read-only window over a validated packed decimal. It holds a reference to
// the caller's bytes, which must not be modified while the view is in use.
//
// Leading and trailing zero digits are skipped: weight is the exponent of the first
// non-zero digit and only the significant digits are visited.
type View struct {
	buf     []byte
	special Special
	neg     bool
	weight  int
	first   int
	ndigits int
	dscale  int
}

// Parse validates b and returns a view over it.
func Parse(b []byte) (View, error) {
	if len(b) < HeaderSize {
		return View{}, errors.ErrShortNumeric
	}
	if len(b)%2 != 0 {
		return View{}, errors.ErrOddNumericLength
	}

	header := binary.BigEndian.Uint16(b)
	v := View{buf: b}

	switch header & signMask {
	case signPos:
	case signNeg:
		v.neg = true
	case signSpecial:
		switch header & specialMask {
		case tagNaN:
			v.special = NaN
		case tagPosInf:
			v.special = PosInf
		case tagNegInf:
			v.special = NegInf
		default:
			return View{}, errors.NewUnknownHeader(header)
		}
		if header&^specialMask != 0 || len(b) > HeaderSize {
			return View{}, errors.ErrSpecialWithDigits
		}
		return v, nil
	default:
		return View{}, errors.NewUnknownHeader(header)
	}

	v.dscale = int(header & scaleMask)
	weight := int(int16(binary.BigEndian.Uint16(b[2:])))

	total := (len(b) - HeaderSize) / 2
	first, last := -1, -1
	for i := 0; i < total; i++ {
		d := binary.BigEndian.Uint16(b[HeaderSize+2*i:])
		if d >= Base {
			return View{}, errors.NewInvalidDigit(i, d)
		}
		if d != 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	if first < 0 {
		// zero carries neither sign nor weight
		v.neg = false
		return v, nil
	}
	v.first = first
	v.ndigits = last - first + 1
	v.weight = weight - first
	return v, nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(b []byte) View {
	v, err := Parse(b)
	if err != nil {
		panic(err)
	}
	return v
}

// Special returns the special tag of the value, Finite for ordinary numbers.
func (v View) Special() Special {
	return v.special
}

func (v View) IsNaN() bool {
	return v.special == NaN
}

func (v View) IsInf() bool {
	return v.special == PosInf || v.special == NegInf
}

func (v View) IsFinite() bool {
	return v.special == Finite
}

func (v View) IsZero() bool {
	return v.special == Finite && v.ndigits == 0
}

// Sign returns -1, 0 or +1. Infinities carry their sign; NaN reports 0.
func (v View) Sign() int {
	switch v.special {
	case PosInf:
		return 1
	case NegInf:
		return -1
	case NaN:
		return 0
	}
	switch {
	case v.ndigits == 0:
		return 0
	case v.neg:
		return -1
	default:
		return 1
	}
}

// Weight is the base-10000 exponent of the first significant digit. Zero for zero.
func (v View) Weight() int {
	return v.weight
}

// NDigits is the number of significant digits.
func (v View) NDigits() int {
	return v.ndigits
}

// Digit returns the i-th significant digit.
func (v View) Digit(i int) uint16 {
	return binary.BigEndian.Uint16(v.buf[HeaderSize+2*(v.first+i):])
}

// DigitBytes returns the packed significant digits. The slice aliases the view's buffer.
func (v View) DigitBytes() []byte {
	if v.ndigits == 0 {
		return nil
	}
	start := HeaderSize + 2*v.first
	return v.buf[start : start+2*v.ndigits]
}

// Scale is the display scale carried in the header.
func (v View) Scale() int {
	return v.dscale
}

// Bytes returns the buffer the view was parsed from.
func (v View) Bytes() []byte {
	return v.buf
}

// IsIntegral reports whether a finite value has no fractional digits.
func (v View) IsIntegral() bool {
	return v.special == Finite && v.ndigits <= v.weight+1
}

// ToFixedInt returns the exact integer value when the view is finite, integral and
// representable at width w.
func (v View) ToFixedInt(w Width) (int64, bool) {
	if !v.IsIntegral() {
		return 0, false
	}
	n, ok := v.trunc()
	if !ok || !w.Contains(n) {
		return 0, false
	}
	return n, true
}

// FloorToFixedInt returns the largest integer not greater than the value, or the side of
// w's range the floor falls on when it is not representable. Infinities overflow toward
// their sign and NaN overflows Above, since NaN sorts after every number.
func (v View) FloorToFixedInt(w Width) (int64, Overflow) {
	switch v.special {
	case NaN, PosInf:
		return 0, Above
	case NegInf:
		return 0, Below
	}

	n, ok := v.trunc()
	if !ok {
		return 0, v.overflowSide()
	}
	if v.neg && !v.IsIntegral() {
		var err error
		if n, err = smath.CheckedSubI64(n, 1); err != nil {
			return 0, Below
		}
	}
	if o := w.Classify(n); o != NoOverflow {
		return 0, o
	}
	return n, NoOverflow
}

func (v View) overflowSide() Overflow {
	if v.neg {
		return Below
	}
	return Above
}

// trunc accumulates the integral digits, rounding toward zero. Negative values accumulate
// downward so that math.MinInt64 is reachable.
func (v View) trunc() (int64, bool) {
	if v.ndigits == 0 || v.weight < 0 {
		return 0, true
	}
	if v.weight >= MaxIntegralDigits {
		return 0, false
	}
	var (
		acc int64
		err error
	)
	for i := 0; i <= v.weight; i++ {
		var d int64
		if i < v.ndigits {
			d = int64(v.Digit(i))
		}
		if v.neg {
			d = -d
		}
		if acc, err = smath.MulAddI64(acc, Base, d); err != nil {
			return 0, false
		}
	}
	return acc, true
}
