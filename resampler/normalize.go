package resampler

import (
	"github.com/cwbudde/algo-resampler/internal/mathx"
	"github.com/cwbudde/algo-vecmath"
)

// silencePeak is the peak below which a signal is left unnormalized.
const silencePeak = 1e-9

// Normalize scales y in place toward a peak of target. percent blends
// between unity gain (0) and full normalization (100).
func Normalize(y []float64, target float64, percent int) {
	if percent <= 0 || len(y) == 0 {
		return
	}

	peak := vecmath.MaxAbs(y)
	if peak < silencePeak {
		return
	}

	blend := float64(min(percent, 100)) / 100
	vecmath.ScaleBlockInPlace(y, mathx.Lerp(1, target/peak, blend))
}
