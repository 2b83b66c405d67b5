// Package hash computes hash codes under which a decimal, a binary float and an
// integer that are equal as numbers collide, so hash joins and hash aggregates can mix
// the types.
package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/dora-network/num2int/compare"
	"github.com/dora-network/num2int/numeric"
)

// Precision selects the float format an integer is converted to before hashing.
type Precision uint8

const (
	Single Precision = iota
	Double
)

const (
	tagZero   byte = 'Z'
	tagPos    byte = '+'
	tagNeg    byte = '-'
	tagNaN    byte = 'N'
	tagPosInf byte = 'I'
	tagNegInf byte = 'J'

	// an int64 spans at most five base-10000 digits
	maxIntDigitBytes = 2 * numeric.MaxIntegralDigits
)

// Decimal hashes the numeric value of v. Display scale and insignificant zero digits do
// not contribute, so 10, 10.0 and 10.000 hash alike.
func Decimal(v numeric.View) uint64 {
	return DecimalExtended(v, 0)
}

// DecimalExtended is Decimal with a seed.
func DecimalExtended(v numeric.View, seed uint64) uint64 {
	switch v.Special() {
	case numeric.NaN:
		return tagOnly(tagNaN, seed)
	case numeric.PosInf:
		return tagOnly(tagPosInf, seed)
	case numeric.NegInf:
		return tagOnly(tagNegInf, seed)
	}
	if v.IsZero() {
		return tagOnly(tagZero, seed)
	}
	tag := tagPos
	if v.Sign() < 0 {
		tag = tagNeg
	}
	return digits(tag, v.Weight(), v.DigitBytes(), seed)
}

// IntAsDecimal hashes v as the decimal of equal value would hash.
func IntAsDecimal[T compare.Integer](v T) uint64 {
	return IntAsDecimalExtended(v, 0)
}

// IntAsDecimalExtended is IntAsDecimal with a seed.
func IntAsDecimalExtended[T compare.Integer](v T, seed uint64) uint64 {
	x := int64(v)
	if x == 0 {
		return tagOnly(tagZero, seed)
	}
	tag := tagPos
	mag := uint64(x)
	if x < 0 {
		tag = tagNeg
		mag = -mag
	}

	// least significant digit first, skipping trailing zero digits
	var rev [numeric.MaxIntegralDigits]uint16
	n, weight := 0, -1
	for mag > 0 {
		d := uint16(mag % numeric.Base)
		mag /= numeric.Base
		weight++
		if n == 0 && d == 0 {
			continue
		}
		rev[n] = d
		n++
	}

	var buf [maxIntDigitBytes]byte
	for i := 0; i < n; i++ {
		binary.BigEndian.PutUint16(buf[2*i:], rev[n-1-i])
	}
	return digits(tag, weight, buf[:2*n], seed)
}

// Float64 hashes f. Negative zero hashes as zero and every NaN hashes alike.
func Float64(f float64) uint64 {
	return Float64Extended(f, 0)
}

// Float64Extended is Float64 with a seed.
func Float64Extended(f float64, seed uint64) uint64 {
	switch {
	case f == 0:
		f = 0
	case math.IsNaN(f):
		f = math.NaN()
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
	d := xxhash.NewWithSeed(seed)
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

// Float32 hashes f through its exact float64 widening, so a float32 and a float64 of
// equal value collide.
func Float32(f float32) uint64 {
	return Float64(float64(f))
}

// Float32Extended is Float32 with a seed.
func Float32Extended(f float32, seed uint64) uint64 {
	return Float64Extended(float64(f), seed)
}

// IntAsFloat hashes v as the float it converts to at precision p hashes.
func IntAsFloat[T compare.Integer](v T, p Precision) uint64 {
	return IntAsFloatExtended(v, p, 0)
}

// IntAsFloatExtended is IntAsFloat with a seed.
func IntAsFloatExtended[T compare.Integer](v T, p Precision, seed uint64) uint64 {
	if p == Single {
		return Float32Extended(float32(v), seed)
	}
	return Float64Extended(float64(v), seed)
}

func tagOnly(tag byte, seed uint64) uint64 {
	d := xxhash.NewWithSeed(seed)
	_, _ = d.Write([]byte{tag})
	return d.Sum64()
}

func digits(tag byte, weight int, packed []byte, seed uint64) uint64 {
	var head [5]byte
	head[0] = tag
	binary.BigEndian.PutUint32(head[1:], uint32(int32(weight)))
	d := xxhash.NewWithSeed(seed)
	_, _ = d.Write(head[:])
	_, _ = d.Write(packed)
	return d.Sum64()
}
