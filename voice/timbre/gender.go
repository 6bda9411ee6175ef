package timbre

import (
	"math"

	"github.com/cwbudde/algo-resampler/llsm"
)

// genderOctaves is the formant shift in octaves at full gender.
const genderOctaves = 0.25

// ApplyGender shifts the vocal-tract magnitude of every voiced frame in the
// absolute phase layer along frequency. Positive percent moves formants down,
// negative moves them up, by up to a quarter octave. Frames without a source
// description are skipped.
func ApplyGender(frames []llsm.Frame, percent float64) {
	if percent == 0 {
		return
	}

	scale := math.Exp2(-percent / 100 * genderOctaves)

	for i := range frames {
		f := &frames[i]
		if !f.Voiced() || f.Source == nil || len(f.Source.VocalTractMagnitude) < 2 {
			continue
		}

		f.Source.VocalTractMagnitude = resampleBins(f.Source.VocalTractMagnitude, scale)
	}
}

// resampleBins returns out with out[k] = in(k/scale), linearly interpolated
// and held at the last bin.
func resampleBins(in []float64, scale float64) []float64 {
	out := make([]float64, len(in))
	last := len(in) - 1

	for k := range out {
		pos := float64(k) / scale
		if pos >= float64(last) {
			out[k] = in[last]
			continue
		}

		i0 := int(pos)
		frac := pos - float64(i0)
		out[k] = in[i0] + (in[i0+1]-in[i0])*frac
	}

	return out
}
