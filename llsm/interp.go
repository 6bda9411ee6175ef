package llsm

import (
	"math"

	"github.com/cwbudde/algo-resampler/internal/mathx"
)

const (
	// voicingCrossover is the ratio at which a partially voiced pair switches
	// from the destination's voicing to the source's.
	voicingCrossover = 0.5
	fadeFloor        = 1e-8
	// VocalTractFloorDB is the lowest vocal-tract magnitude interpolation
	// will produce.
	VocalTractFloorDB = -80.0
	unvoicedRd        = 1.0
)

// LerpAngle interpolates two angles in radians along the shorter arc by
// blending their unit vectors. The result is in (-pi, pi].
func LerpAngle(a, b, ratio float64) float64 {
	x := mathx.Lerp(math.Cos(a), math.Cos(b), ratio)
	y := mathx.Lerp(math.Sin(a), math.Sin(b), ratio)

	return math.Atan2(y, x)
}

// Interpolate moves dst toward src by ratio in [0,1].
//
// ratio <= 0 leaves dst as is; ratio >= 1 makes dst a deep copy of src.
// In between, harmonic, noise and residual arrays are blended element-wise
// over their common length and the longer side's extra elements are copied
// verbatim, so dst only ever grows. Phases are blended circularly.
//
// Voicing follows the voiced side: two voiced frames blend F0 and the
// source-filter fields; with one voiced side, dst keeps its own voicing until
// ratio reaches one half and takes src's from there on, with the voiced
// side's vocal-tract magnitude faded by its weight.
//
// src is only read; nothing in dst aliases src afterwards.
func Interpolate(dst, src *Frame, ratio float64) {
	if ratio <= 0 {
		return
	}

	if ratio >= 1 {
		*dst = src.Clone()
		return
	}

	dstVoiced, srcVoiced := dst.Voiced(), src.Voiced()

	switch {
	case dstVoiced && srcVoiced:
		dst.F0 = mathx.Lerp(dst.F0, src.F0, ratio)
		dst.Source = blendSource(dst.Source, src.Source, ratio)
		floorVocalTract(dst.Source)
	case srcVoiced:
		if ratio >= voicingCrossover {
			dst.F0 = src.F0
			dst.Source = src.Source.Clone()
			fadeVocalTract(dst.Source, ratio)
		}
	case dstVoiced:
		if ratio >= voicingCrossover {
			dst.F0 = 0
			dst.Source = src.Source.Clone()
		} else {
			fadeVocalTract(dst.Source, 1-ratio)
		}
	default:
		dst.F0 = 0
		if dst.Source != nil {
			dst.Source.Rd = unvoicedRd
		}
	}

	blendHarmonics(&dst.Harmonics, src.Harmonics, ratio)
	blendNoise(&dst.Noise, &src.Noise, ratio)
	dst.Residual = blendLinear(dst.Residual, src.Residual, ratio)
}

func blendSource(dst, src *SourceFilter, ratio float64) *SourceFilter {
	if src == nil {
		return dst
	}

	if dst == nil {
		return src.Clone()
	}

	dst.Rd = mathx.Lerp(dst.Rd, src.Rd, ratio)
	dst.VoicedSpectralPhase = blendAngles(dst.VoicedSpectralPhase, src.VoicedSpectralPhase, ratio)
	dst.VocalTractMagnitude = blendLinear(dst.VocalTractMagnitude, src.VocalTractMagnitude, ratio)

	return dst
}

// fadeVocalTract attenuates s by the linear weight w, expressed in dB.
func fadeVocalTract(s *SourceFilter, w float64) {
	if s == nil {
		return
	}

	fade := 20 * math.Log10(math.Max(w, fadeFloor))
	for i := range s.VocalTractMagnitude {
		s.VocalTractMagnitude[i] += fade
	}

	floorVocalTract(s)
}

func floorVocalTract(s *SourceFilter) {
	if s == nil {
		return
	}

	for i, v := range s.VocalTractMagnitude {
		if v < VocalTractFloorDB {
			s.VocalTractMagnitude[i] = VocalTractFloorDB
		}
	}
}

func blendHarmonics(dst *Harmonics, src Harmonics, ratio float64) {
	dst.Ampl = blendLinear(dst.Ampl, src.Ampl, ratio)
	dst.Phase = blendAngles(dst.Phase, src.Phase, ratio)
}

func blendNoise(dst, src *NoiseFrame, ratio float64) {
	dst.PSD = blendLinear(dst.PSD, src.PSD, ratio)

	n := min(len(dst.Envelopes), len(src.Envelopes))
	for c := range n {
		d := &dst.Envelopes[c]
		d.Edc = mathx.Lerp(d.Edc, src.Envelopes[c].Edc, ratio)
		blendHarmonics(&d.Harmonics, src.Envelopes[c].Harmonics, ratio)
	}

	for c := n; c < len(src.Envelopes); c++ {
		dst.Envelopes = append(dst.Envelopes, src.Envelopes[c].Clone())
	}
}

// blendLinear lerps dst toward src over their common length and appends any
// extra elements src has. The returned slice never aliases src.
func blendLinear(dst, src []float64, ratio float64) []float64 {
	if src == nil {
		return dst
	}

	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = mathx.Lerp(dst[i], src[i], ratio)
	}

	if len(src) > len(dst) || dst == nil {
		dst = append(dst, src[len(dst):]...)
		if dst == nil {
			dst = []float64{}
		}
	}

	return dst
}

func blendAngles(dst, src []float64, ratio float64) []float64 {
	if src == nil {
		return dst
	}

	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = LerpAngle(dst[i], src[i], ratio)
	}

	if len(src) > len(dst) || dst == nil {
		dst = append(dst, src[len(dst):]...)
		if dst == nil {
			dst = []float64{}
		}
	}

	return dst
}
