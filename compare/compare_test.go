package compare_test

import (
	"math"
	"math/big"
	"strconv"
	"testing"

	"github.com/dora-network/num2int/compare"
	"github.com/dora-network/num2int/numeric"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustView(t *testing.T, s string) numeric.View {
	t.Helper()
	v, err := numeric.ParseString(s)
	require.NoError(t, err)
	return v
}

// ratOrder is the exact ordering of a finite decimal string against x.
func ratOrder(t *testing.T, s string, x int64) compare.Ordering {
	t.Helper()
	r, ok := new(big.Rat).SetString(s)
	require.True(t, ok, s)
	return compare.Ordering(r.Cmp(new(big.Rat).SetInt64(x)))
}

func floatOrder(f float64, x int64) compare.Ordering {
	return compare.Ordering(big.NewFloat(f).Cmp(new(big.Float).SetInt64(x)))
}

var decimalLiterals = []string{
	"0", "0.5", "-0.5", "0.0001", "-0.0001", "1", "-1", "10.5", "-10.5", "100.0",
	"9999", "9999.9999", "10000", "-10000.0001", "32767", "32767.5", "32768", "-32768", "-32768.5",
	"2147483647", "2147483647.5", "2147483648", "-2147483648", "-2147483648.25",
	"9223372036854775807", "9223372036854775807.5", "9223372036854775808",
	"-9223372036854775808", "-9223372036854775807.5", "-9223372036854775808.5", "-9223372036854775809",
	"1e20", "-1e20", "123456789012345678901234567890.1",
}

var integers = []int64{
	0, 1, -1, 10, 11, -11, 100, 9999, 10000, 32767, -32768, 2147483647, -2147483648,
	math.MaxInt64, math.MaxInt64 - 1, math.MinInt64, math.MinInt64 + 1,
}

func TestDecimal(t *testing.T) {
	t.Run("Should agree with exact rational comparison", func(t *testing.T) {
		for _, s := range decimalLiterals {
			d := mustView(t, s)
			for _, x := range integers {
				want := ratOrder(t, s, x)
				require.Equal(t, want, compare.Decimal(d, x), "%s vs %d", s, x)
				require.Equal(t, want.Negate(), compare.IntDecimal(x, d), "%d vs %s", x, s)
				require.Equal(t, want == compare.Equal, compare.EqualDecimal(d, x), "%s = %d", s, x)
				require.Equal(t, want != compare.Equal, compare.NotEqualDecimal(d, x), "%s <> %d", s, x)
			}
		}
	})

	t.Run("Should accept every integer width", func(t *testing.T) {
		d := mustView(t, "-32768")
		assert.Equal(t, compare.Equal, compare.Decimal(d, int16(math.MinInt16)))
		assert.Equal(t, compare.Less, compare.Decimal(d, int32(0)))
		assert.Equal(t, compare.Greater, compare.Decimal(d, int64(math.MinInt64)))
	})

	t.Run("Should order specials", func(t *testing.T) {
		for _, x := range integers {
			assert.Equal(t, compare.Greater, compare.Decimal(numeric.NaNValue(), x))
			assert.Equal(t, compare.Greater, compare.Decimal(numeric.PosInfValue(), x))
			assert.Equal(t, compare.Less, compare.Decimal(numeric.NegInfValue(), x))
			assert.False(t, compare.EqualDecimal(numeric.NaNValue(), x))
			assert.False(t, compare.EqualDecimal(numeric.PosInfValue(), x))
		}
	})

	t.Run("Should be monotonic in the decimal", func(t *testing.T) {
		sorted := []string{"-1e20", "-9223372036854775808.5", "-9223372036854775808", "-10.5", "-0.0001", "0",
			"0.5", "10.5", "11", "9223372036854775807", "9223372036854775807.5", "1e20"}
		for _, x := range integers {
			prev := compare.Less
			for _, s := range sorted {
				got := compare.Decimal(mustView(t, s), x)
				require.GreaterOrEqual(t, got, prev, "%s vs %d", s, x)
				prev = got
			}
		}
	})

	t.Run("Should match decimal.Decimal equality", func(t *testing.T) {
		for _, s := range []string{"100.000", "-7", "12.0001", "0.00", "9999999999999999999"} {
			dec := decimal.MustParse(s)
			d := numeric.FromDecimal(dec)
			for _, x := range []int64{100, -7, 12, 0, math.MaxInt64} {
				want := dec.Cmp(decimal.MustParse(strconv.FormatInt(x, 10))) == 0
				assert.Equal(t, want, compare.EqualDecimal(d, x), "%s = %d", s, x)
			}
		}
	})
}

func TestFloat(t *testing.T) {
	t.Run("Should not equate a float with its rounded neighbour", func(t *testing.T) {
		assert.False(t, compare.EqualFloat32(float32(16777216.0), int32(16777217)))
		assert.Equal(t, compare.Less, compare.Float32(float32(16777216.0), int32(16777217)))
		assert.True(t, compare.EqualFloat32(float32(16777216.0), int32(16777216)))

		assert.False(t, compare.EqualFloat64(float64(1<<53), int64(1<<53+1)))
		assert.Equal(t, compare.Less, compare.Float64(float64(1<<53), int64(1<<53+1)))
		assert.Equal(t, compare.Greater, compare.IntFloat64(int64(1<<53+1), float64(1<<53)))
	})

	t.Run("Should agree with exact binary comparison", func(t *testing.T) {
		floats := []float64{
			0, math.Copysign(0, -1), 0.5, -0.5, 10.5, 16777216, 16777217, 16777218,
			1 << 53, 1<<53 + 2, -(1 << 53), math.Nextafter(1<<63, 0), 1 << 63, -(1 << 63),
			math.Nextafter(-(1 << 63), math.Inf(-1)), 1e300, -1e300, math.SmallestNonzeroFloat64,
		}
		ints := append([]int64{16777216, 16777217, 1 << 53, 1<<53 + 1, -(1<<53 + 1)}, integers...)
		for _, f := range floats {
			for _, x := range ints {
				want := floatOrder(f, x)
				require.Equal(t, want, compare.Float64(f, x), "%v vs %d", f, x)
				require.Equal(t, want.Negate(), compare.IntFloat64(x, f), "%d vs %v", x, f)
				require.Equal(t, want == compare.Equal, compare.EqualFloat64(f, x), "%v = %d", f, x)

				f32 := float32(f)
				want32 := floatOrder(float64(f32), x)
				require.Equal(t, want32, compare.Float32(f32, x), "float32 %v vs %d", f32, x)
				require.Equal(t, want32 == compare.Equal, compare.EqualFloat32(f32, x), "float32 %v = %d", f32, x)
				require.Equal(t, want32 != compare.Equal, compare.NotEqualFloat32(f32, x))
			}
		}
	})

	t.Run("Should order NaN above and infinities by sign", func(t *testing.T) {
		for _, x := range integers {
			assert.Equal(t, compare.Greater, compare.Float64(math.NaN(), x))
			assert.Equal(t, compare.Greater, compare.Float32(float32(math.NaN()), x))
			assert.Equal(t, compare.Greater, compare.Float64(math.Inf(1), x))
			assert.Equal(t, compare.Less, compare.Float32(float32(math.Inf(-1)), x))
			assert.False(t, compare.EqualFloat64(math.NaN(), x))
			assert.True(t, compare.NotEqualFloat64(math.Inf(1), x))
		}
	})

	t.Run("Should be transitive across widths", func(t *testing.T) {
		// a < b in int64 and b <= f imply a < f
		for _, f := range []float64{-1e19, -32768.5, -0.5, 0, 16777217, 9.3e18} {
			for _, a := range integers {
				for _, b := range integers {
					if a < b && compare.Float64(f, b) != compare.Less {
						assert.Equal(t, compare.Greater, compare.Float64(f, a), "%v %d %d", f, a, b)
					}
				}
			}
		}
	})
}

func TestOrdering(t *testing.T) {
	assert.Equal(t, compare.Greater, compare.Less.Negate())
	assert.Equal(t, compare.Equal, compare.Equal.Negate())
	assert.Equal(t, "less", compare.Less.String())
	assert.Equal(t, compare.Less, compare.Ints(math.MinInt64, math.MaxInt64))
}
