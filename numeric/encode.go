package numeric

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dora-network/num2int/errors"
	"github.com/govalues/decimal"
)

const maxDisplayScale = int(scaleMask)

// Encode packs a finite value. Digits are not validated; pass the result to Parse.
func Encode(neg bool, weight int16, digits []uint16, dscale uint16) []byte {
	header := dscale & scaleMask
	if neg {
		header |= signNeg
	}
	b := make([]byte, HeaderSize+2*len(digits))
	binary.BigEndian.PutUint16(b, header)
	binary.BigEndian.PutUint16(b[2:], uint16(weight))
	for i, d := range digits {
		binary.BigEndian.PutUint16(b[HeaderSize+2*i:], d)
	}
	return b
}

// EncodeSpecial packs NaN or an infinity.
func EncodeSpecial(s Special) []byte {
	var header uint16
	switch s {
	case NaN:
		header = tagNaN
	case PosInf:
		header = tagPosInf
	case NegInf:
		header = tagNegInf
	default:
		return Encode(false, 0, nil, 0)
	}
	b := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(b, header)
	return b
}

func NaNValue() View    { return MustParse(EncodeSpecial(NaN)) }
func PosInfValue() View { return MustParse(EncodeSpecial(PosInf)) }
func NegInfValue() View { return MustParse(EncodeSpecial(NegInf)) }

// FromInt64 returns the packed decimal equal to n.
func FromInt64(n int64) View {
	s := strconv.FormatInt(n, 10)
	return must(fromDigits(n < 0, strings.TrimPrefix(s, "-"), "", 0))
}

// FromDecimal returns the packed decimal equal to d, keeping d's scale as display scale.
func FromDecimal(d decimal.Decimal) View {
	coef := strconv.FormatUint(d.Coef(), 10)
	scale := d.Scale()
	if len(coef) <= scale {
		coef = strings.Repeat("0", scale-len(coef)+1) + coef
	}
	cut := len(coef) - scale
	return must(fromDigits(d.IsNeg(), coef[:cut], coef[cut:], scale))
}

// ParseString reads decimal text such as "-12.50", "1e20" or ".5", and the special
// spellings NaN, Infinity, inf and their signed forms, case-insensitively. Unlike
// decimal.Parse it has no precision limit.
func ParseString(s string) (View, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan":
		return NaNValue(), nil
	case "infinity", "+infinity", "inf", "+inf":
		return PosInfValue(), nil
	case "-infinity", "-inf":
		return NegInfValue(), nil
	}

	invalid := func(reason string) error {
		return errors.Newf(errors.InvalidInputError, "invalid numeric literal %q: %s", s, reason)
	}

	body := s
	neg := false
	if body != "" && (body[0] == '-' || body[0] == '+') {
		neg = body[0] == '-'
		body = body[1:]
	}

	exp := 0
	if i := strings.IndexAny(body, "eE"); i >= 0 {
		e, err := strconv.Atoi(body[i+1:])
		if err != nil {
			return View{}, invalid("bad exponent")
		}
		if e > 4*math.MaxInt16 || e < -4*math.MaxInt16 {
			return View{}, invalid("exponent out of range")
		}
		exp = e
		body = body[:i]
	}

	intPart, fracPart, _ := strings.Cut(body, ".")
	if intPart == "" && fracPart == "" {
		return View{}, invalid("no digits")
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return View{}, invalid("unexpected character")
	}

	if exp != 0 {
		digits := intPart + fracPart
		point := len(intPart) + exp
		if point < 0 {
			digits = strings.Repeat("0", -point) + digits
			point = 0
		}
		if point > len(digits) {
			digits += strings.Repeat("0", point-len(digits))
		}
		intPart, fracPart = digits[:point], digits[point:]
	}

	return fromDigits(neg, intPart, fracPart, len(fracPart))
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// fromDigits groups decimal digit strings into base-10000 digits around the point.
func fromDigits(neg bool, intPart, fracPart string, dscale int) (View, error) {
	intPart = strings.TrimLeft(intPart, "0")
	if dscale > maxDisplayScale {
		return View{}, errors.Newf(errors.InvalidInputError, "display scale %d exceeds %d", dscale, maxDisplayScale)
	}
	if pad := len(intPart) % 4; pad != 0 {
		intPart = strings.Repeat("0", 4-pad) + intPart
	}
	if pad := len(fracPart) % 4; pad != 0 {
		fracPart += strings.Repeat("0", 4-pad)
	}
	weight := len(intPart)/4 - 1
	if weight > math.MaxInt16 || len(fracPart)/4 > math.MaxInt16 {
		return View{}, errors.Newf(errors.InvalidInputError, "numeric weight %d out of range", weight)
	}

	all := intPart + fracPart
	digits := make([]uint16, 0, len(all)/4)
	for i := 0; i < len(all); i += 4 {
		d, err := strconv.ParseUint(all[i:i+4], 10, 16)
		if err != nil {
			return View{}, errors.Wrap(errors.InvalidInputError, err, "numeric digit")
		}
		digits = append(digits, uint16(d))
	}
	return Parse(Encode(neg, int16(weight), digits, uint16(dscale)))
}

func must(v View, err error) View {
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the value as decimal text, padding the fraction to the display scale.
func (v View) String() string {
	if v.special != Finite {
		return v.special.String()
	}

	var sb strings.Builder
	if v.neg {
		sb.WriteByte('-')
	}

	if v.weight < 0 || v.ndigits == 0 {
		sb.WriteByte('0')
	} else {
		for i := 0; i <= v.weight; i++ {
			var d uint16
			if i < v.ndigits {
				d = v.Digit(i)
			}
			if i == 0 {
				sb.WriteString(strconv.Itoa(int(d)))
			} else {
				fmt.Fprintf(&sb, "%04d", d)
			}
		}
	}

	var frac strings.Builder
	for g := v.weight + 1; g < v.ndigits; g++ {
		var d uint16
		if g >= 0 {
			d = v.Digit(g)
		}
		fmt.Fprintf(&frac, "%04d", d)
	}
	f := strings.TrimRight(frac.String(), "0")
	if len(f) < v.dscale {
		f += strings.Repeat("0", v.dscale-len(f))
	}
	if f != "" {
		sb.WriteByte('.')
		sb.WriteString(f)
	}
	return sb.String()
}

// Decimal converts a finite value to a decimal.Decimal when it fits its precision.
func (v View) Decimal() (decimal.Decimal, error) {
	if v.special != Finite {
		return decimal.Decimal{}, errors.Newf(errors.InvalidInputError, "%s has no decimal representation", v.special)
	}
	d, err := decimal.Parse(v.String())
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(errors.InvalidInputError, err, "numeric to decimal")
	}
	return d, nil
}
