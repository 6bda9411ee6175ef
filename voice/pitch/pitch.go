// Package pitch retargets the fundamental of a frame sequence to a note.
package pitch

import (
	"math"

	"github.com/cwbudde/algo-resampler/llsm"
)

const (
	// MinF0 is the lowest fundamental Apply will produce.
	MinF0 = 20.0

	// averageNeighbours is how many preceding values weight each sample.
	averageNeighbours = 5
	averageMin        = 55.0
	averageMax        = 1000.0
)

// AverageF0 returns a weighted mean of the values in f0 inside (55, 1000) Hz.
// Each value is weighted by its similarity to the preceding five values, so
// stable stretches of the contour dominate. It returns 0 when no value
// qualifies.
func AverageF0(f0 []float64) float64 {
	var sum, weights float64

	for i, v := range f0 {
		if v <= averageMin || v >= averageMax {
			continue
		}

		w := 1.0
		for j := range averageNeighbours {
			if i > j {
				d := f0[i-j-1] - v
				w *= v / (v + d*d)
			} else {
				w *= 1 / (1 + v)
			}
		}

		sum += v * w
		weights += w
	}

	if weights <= 0 {
		return 0
	}

	return sum / weights
}

// Transpose shifts every ratio offset in place by tenths of a semitone.
func Transpose(offsets []float64, tenths int) {
	if tenths == 0 {
		return
	}

	ratio := math.Exp2(float64(tenths) / 120)
	for i, o := range offsets {
		offsets[i] = (1+o)*ratio - 1
	}
}

// Params controls [Apply].
type Params struct {
	// NoteHz is the target note frequency.
	NoteHz float64
	// AverageF0 is the reference pitch of the source sample.
	AverageF0 float64
	// Modulation in [0,1] is how much of the source's pitch deviation from
	// AverageF0 survives.
	Modulation float64
	// Offsets holds a pitch ratio offset per frame; missing entries are 0.
	Offsets []float64
}

// Apply sets the fundamental of every voiced frame to the note pitch bent by
// the frame's offset, keeping Modulation of the original deviation. Frames in
// the absolute phase layer get their vocal-tract magnitude compensated for
// the change so loudness stays stable.
func Apply(frames []llsm.Frame, p Params) {
	for i := range frames {
		f := &frames[i]
		if !f.Voiced() {
			continue
		}

		offset := 0.0
		if i < len(p.Offsets) {
			offset = p.Offsets[i]
		}

		old := f.F0
		target := p.NoteHz * (1 + offset)

		origRatio := 0.0
		if p.AverageF0 > 0 {
			origRatio = old / p.AverageF0
		}

		f.F0 = math.Max(target*math.Pow(origRatio, p.Modulation), MinF0)

		if f.Source == nil || f.F0 == old {
			continue
		}

		comp := -20 * math.Log10(f.F0/old)
		for j := range f.Source.VocalTractMagnitude {
			f.Source.VocalTractMagnitude[j] += comp
		}
	}
}
