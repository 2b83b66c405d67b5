package fold

import (
	"math"

	"github.com/dora-network/num2int/numeric"
)

const twoPow63 = 1 << 63

// Classification places a literal relative to the integers of one width.
//
// Value is the floor of the literal toward negative infinity and is meaningful only when
// Valid is set and Overflow is NoOverflow. HasFraction reports a literal that is not an
// integer. Invalid literals are NaN and the infinities.
type Classification struct {
	Valid       bool
	HasFraction bool
	Overflow    numeric.Overflow
	Value       int64
}

func ClassifyDecimal(v numeric.View, w numeric.Width) Classification {
	if !v.IsFinite() {
		return Classification{}
	}
	floor, over := v.FloorToFixedInt(w)
	return Classification{
		Valid:       true,
		HasFraction: !v.IsIntegral(),
		Overflow:    over,
		Value:       floor,
	}
}

func ClassifyFloat64(f float64, w numeric.Width) Classification {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Classification{}
	}
	floor := math.Floor(f)
	c := Classification{Valid: true, HasFraction: floor != f}
	switch {
	case floor >= twoPow63:
		c.Overflow = numeric.Above
	case floor < -twoPow63:
		c.Overflow = numeric.Below
	default:
		n := int64(floor)
		if c.Overflow = w.Classify(n); c.Overflow == numeric.NoOverflow {
			c.Value = n
		}
	}
	return c
}

// ClassifyFloat32 widens f, which is exact, and classifies the result.
func ClassifyFloat32(f float32, w numeric.Width) Classification {
	return ClassifyFloat64(float64(f), w)
}
