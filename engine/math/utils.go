package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Shade scales the rgb channels of colour by intensity and keeps them in [0, 1].
// Alpha is left untouched.
func Shade(colour Vec4, intensity float32) Vec4 {
	return Vec4{
		X: Clamp(colour.X*intensity, 0, 1),
		Y: Clamp(colour.Y*intensity, 0, 1),
		Z: Clamp(colour.Z*intensity, 0, 1),
		W: colour.W,
	}
}
