package warp

import (
	"math"
	"slices"

	"github.com/cwbudde/algo-resampler/llsm"
)

// CrossfadeWidth is the number of frames blended on each side of the
// consonant boundary.
const CrossfadeWidth = 4

// crossfadeRatio is the fixed weight each boundary frame moves toward its
// successor.
const crossfadeRatio = 0.25

// Params selects the source region and the target shape of a stretch.
type Params struct {
	// Start and End bound the source region [Start, End).
	Start, End int
	// Total is the number of output frames.
	Total int
	// Consonant is the consonant length in frames, clamped to the region.
	Consonant int
	// Velocity scales the consonant length; 1 leaves it untouched. See
	// [VelocityFactor].
	Velocity float64
}

// Result is the output of [Stretch].
type Result struct {
	Frames []llsm.Frame
	// Consonant is the consonant length after velocity scaling.
	Consonant int
}

// VelocityFactor converts a UTAU velocity (0..200, 100 neutral) into a
// consonant length factor.
func VelocityFactor(velocity float64) float64 {
	return math.Exp2(1 - velocity/100)
}

// Stretch produces p.Total frames from frames[p.Start:p.End]. The input frames
// are never modified; every output frame is an independent copy.
func Stretch(frames []llsm.Frame, p Params) Result {
	start := min(max(p.Start, 0), len(frames))
	end := min(max(p.End, start), len(frames))
	sample := end - start
	consonant := min(max(p.Consonant, 0), sample)

	total := max(p.Total, 1)
	if sample == 0 {
		return Result{Frames: []llsm.Frame{}, Consonant: 0}
	}

	n := min(sample, total)
	out := make([]llsm.Frame, total)
	for i := range n {
		out[i] = frames[start+i].Clone()
	}

	if p.Velocity > 0 && p.Velocity != 1 && n > consonant+1 {
		consonant = ApplyVelocity(out[:n], consonant, p.Velocity)
	}

	vowelSample := sample - consonant
	vowelTotal := total - consonant

	if vowelSample > 0 && vowelTotal > vowelSample {
		StretchVowel(out, consonant, vowelSample)
	} else {
		for i := n; i < total; i++ {
			out[i] = out[n-1].Clone()
		}
	}

	Crossfade(out, consonant)

	return Result{Frames: out, Consonant: consonant}
}

// ApplyVelocity rescales the consonant span frames[:consonant] by factor and
// remaps the rest of frames onto the space left behind. It returns the new
// consonant length, clamped to [1, len(frames)-1]. When frames is too short
// to hold a consonant and a vowel it returns consonant unchanged.
func ApplyVelocity(frames []llsm.Frame, consonant int, factor float64) int {
	n := len(frames)
	if n <= consonant+1 || consonant < 0 {
		return consonant
	}

	old := consonant
	next := min(max(int(math.Floor(float64(old)*factor+0.5)), 1), n-1)

	snap := slices.Clone(frames)

	for i := range next {
		mapped := float64(i) * float64(old) / float64(next)
		base := max(min(int(mapped), old-2), 0)
		ratio := mapped - float64(int(mapped))

		f := snap[base].Clone()
		llsm.Interpolate(&f, &snap[base+1], ratio)
		frames[i] = f
	}

	vowelOld := n - old
	vowelNew := n - next
	for i := range vowelNew {
		src := min(old+int(float64(i)*float64(vowelOld)/float64(vowelNew)), n-1)
		frames[next+i] = snap[src].Clone()
	}

	return next
}

// StretchVowel fills frames[consonant:] by linearly resampling the vowel span
// frames[consonant:consonant+vowelSample]. Frames past the span are
// overwritten.
func StretchVowel(frames []llsm.Frame, consonant, vowelSample int) {
	vowelTotal := len(frames) - consonant
	if consonant < 0 || vowelSample <= 0 || vowelTotal <= 0 || consonant+vowelSample > len(frames) {
		return
	}

	snap := slices.Clone(frames[consonant : consonant+vowelSample])
	last := vowelSample - 1

	for i := range vowelTotal {
		mapped := float64(i) * float64(vowelSample) / float64(vowelTotal)
		base := max(min(int(mapped), last-1), 0)
		next := min(base+1, last)
		ratio := min(max(mapped-float64(base), 0), 1)

		f := snap[base].Clone()
		llsm.Interpolate(&f, &snap[next], ratio)
		frames[consonant+i] = f
	}
}

// Crossfade blends each frame within CrossfadeWidth of boundary a quarter of
// the way toward its successor, in ascending order. The first and last frames
// are left alone.
func Crossfade(frames []llsm.Frame, boundary int) {
	lo := max(boundary-CrossfadeWidth, 1)
	hi := min(boundary+CrossfadeWidth, len(frames)-2)

	for i := lo; i <= hi; i++ {
		llsm.Interpolate(&frames[i], &frames[i+1], crossfadeRatio)
	}
}
