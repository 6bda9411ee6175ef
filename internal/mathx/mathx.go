// Package mathx holds the small numeric helpers shared by the frame-domain
// packages: clamping, linear blending, decibel conversion and phase wrapping.
package mathx

import "math"

// Clamp limits value to the inclusive range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// ClampInt limits value to the inclusive range [lo, hi].
func ClampInt(value, lo, hi int) int {
	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// Lerp blends a toward b. ratio 0 yields a, ratio 1 yields b.
func Lerp(a, b, ratio float64) float64 {
	return a + (b-a)*ratio
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// LinearToDBFloor converts linear amplitude to dB, treating anything below
// floor as floor. floor must be positive.
func LinearToDBFloor(linear, floor float64) float64 {
	return 20 * math.Log10(math.Max(linear, floor))
}

// WrapPhase maps x into [-pi, pi).
func WrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	return x - math.Pi
}

// NearlyEqual reports whether a and b are equal within eps, either absolutely
// or relative to the larger magnitude.
func NearlyEqual(a, b, eps float64) bool {
	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))

	return largest != 0 && diff/largest <= eps
}
