package timbre

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-resampler/internal/mathx"
	"github.com/cwbudde/algo-resampler/llsm"
)

const (
	// TensionSlopeDB is the tilt applied at full tension.
	TensionSlopeDB = 32.0

	tensionAlpha = 2.6
	tensionPivot = 0.25
	tensionEps   = 1e-12
)

// ApplyTension tilts the harmonic amplitudes of every voiced frame. Positive
// percent boosts upper harmonics and cuts lower ones; negative does the
// reverse. After tilting, a frame is rescaled so its amplitude sum is
// unchanged, then clamped to [0,1]. percent == 0 leaves frames untouched.
func ApplyTension(frames []llsm.Frame, percent float64) {
	if percent == 0 {
		return
	}

	slope := TensionSlopeDB * percent / 100

	for i := range frames {
		f := &frames[i]
		if !f.Voiced() || f.Len() == 0 {
			continue
		}

		tilt(f.Ampl, slope)
	}
}

func tilt(ampl []float64, slope float64) {
	sum0 := vecmath.Sum(ampl)
	n := len(ampl)

	for j, a := range ampl {
		w := 0.0
		if n > 1 {
			w = float64(j) / float64(n-1)
		}

		eased := 0.5 - 0.5*math.Cos(math.Pi*w)
		gain := slope * math.Tanh(tensionAlpha*(eased-tensionPivot))
		db := 20*math.Log10(a+tensionEps) + gain
		ampl[j] = mathx.Clamp(mathx.DBToLinear(db), 0, 1)
	}

	sum1 := vecmath.Sum(ampl)
	if sum0 <= 0 || sum1 <= 0 {
		return
	}

	vecmath.ScaleBlockInPlace(ampl, sum0/sum1)
	for j, a := range ampl {
		ampl[j] = math.Min(a, 1)
	}
}
