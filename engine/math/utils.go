package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// DivFloor divides v by d rounding towards zero, treating any d below 1 as 1
// and never returning less than lowest.
func DivFloor[T constraints.Integer](v, d, lowest T) T {
	if d < 1 {
		d = 1
	}
	r := v / d
	if r < lowest {
		return lowest
	}
	return r
}
