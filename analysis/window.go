package analysis

import "math"

// Hann returns Hann window coefficients of the given length. The periodic
// form sums to one when overlapped at half its length and is the form used
// for framing; the symmetric form has zero endpoints.
func Hann(size int, periodic bool) []float64 {
	if size <= 0 {
		return nil
	}

	out := make([]float64, size)
	for i := range out {
		out[i] = 0.5 - 0.5*math.Cos(2*math.Pi*samplePosition(i, size, periodic))
	}

	return out
}

// samplePosition maps index n to the normalized window position in [0, 1].
func samplePosition(n, size int, periodic bool) float64 {
	if size == 1 {
		return 0.5
	}

	if periodic {
		return float64(n) / float64(size)
	}

	return float64(n) / float64(size-1)
}
