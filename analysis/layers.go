package analysis

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-resampler/internal/mathx"
	"github.com/cwbudde/algo-resampler/llsm"
)

const (
	minRd     = 0.3
	maxRd     = 2.7
	neutralRd = 1.0
	// rdPerDB maps the H1-H2 level difference onto the glottal shape
	// parameter.
	rdPerDB = 0.125
)

// Layers converts frames between the base layer (per-harmonic amplitude and
// absolute phase) and the absolute phase layer (glottal shape, voiced
// spectral phase and a dB vocal-tract magnitude).
type Layers struct{}

// ToAbsolutePhaseLayer attaches a source-filter description to every voiced
// frame that lacks one. The vocal-tract magnitude is sampled on fftSize/2+1
// bins by interpolating the harmonic levels in dB.
func (Layers) ToAbsolutePhaseLayer(seq *llsm.Sequence, fftSize int) error {
	if seq == nil {
		return ErrEmpty
	}

	if fftSize < 2 {
		return fmt.Errorf("layers: fft size must be >= 2: %d", fftSize)
	}

	if seq.SampleRate <= 0 {
		return fmt.Errorf("layers: sample rate must be > 0: %d", seq.SampleRate)
	}

	binHz := float64(seq.SampleRate) / float64(fftSize)
	bins := fftSize/2 + 1

	for i := range seq.Frames {
		f := &seq.Frames[i]
		if !f.Voiced() || f.Source != nil || f.Len() == 0 {
			continue
		}

		freqs := make([]float64, f.Len())
		levels := make([]float64, f.Len())
		for h, a := range f.Ampl {
			freqs[h] = float64(h+1) * f.F0
			levels[h] = math.Max(mathx.LinearToDBFloor(a, 1e-12), llsm.VocalTractFloorDB)
		}

		vt := make([]float64, bins)
		for k := range vt {
			vt[k] = interpolateLinear(freqs, levels, float64(k)*binHz)
		}

		rd := neutralRd
		if len(levels) > 1 {
			rd = mathx.Clamp(neutralRd+rdPerDB*(levels[0]-levels[1]), minRd, maxRd)
		}

		f.Source = &llsm.SourceFilter{
			Rd:                  rd,
			VoicedSpectralPhase: append([]float64(nil), f.Phase...),
			VocalTractMagnitude: vt,
		}
	}

	return nil
}

// PropagatePhase moves voiced spectral phases between absolute and relative
// form. direction -1 makes every harmonic phase relative to the
// fundamental's, which makes frames comparable regardless of their position
// in time. direction +1 integrates the F0 track to put the fundamental phase
// back and restores absolute phases from the relative ones.
func (Layers) PropagatePhase(seq *llsm.Sequence, direction int) error {
	if seq == nil {
		return ErrEmpty
	}

	switch direction {
	case -1:
		for i := range seq.Frames {
			s := seq.Frames[i].Source
			if !seq.Frames[i].Voiced() || s == nil || len(s.VoicedSpectralPhase) == 0 {
				continue
			}

			p0 := s.VoicedSpectralPhase[0]
			for h := range s.VoicedSpectralPhase {
				s.VoicedSpectralPhase[h] = mathx.WrapPhase(s.VoicedSpectralPhase[h] - float64(h+1)*p0)
			}
		}
	case 1:
		theta, prev := 0.0, 0.0
		for i := range seq.Frames {
			f := &seq.Frames[i]
			if !f.Voiced() {
				prev = 0
				continue
			}

			if prev > 0 {
				theta = mathx.WrapPhase(theta + math.Pi*seq.Config.Hop*(prev+f.F0))
			} else {
				theta = 0
			}

			prev = f.F0

			if f.Source == nil {
				continue
			}

			for h := range f.Source.VoicedSpectralPhase {
				f.Source.VoicedSpectralPhase[h] = mathx.WrapPhase(f.Source.VoicedSpectralPhase[h] + float64(h+1)*theta)
			}
		}
	default:
		return fmt.Errorf("layers: propagation direction must be -1 or 1: %d", direction)
	}

	return nil
}

// ToBaseLayer rebuilds the harmonics of every frame in the absolute phase
// layer from its vocal-tract magnitude and voiced spectral phase, then drops
// the source-filter description.
func (Layers) ToBaseLayer(seq *llsm.Sequence) error {
	if seq == nil {
		return ErrEmpty
	}

	nyquist := float64(seq.SampleRate) / 2

	for i := range seq.Frames {
		f := &seq.Frames[i]
		s := f.Source
		if s == nil {
			continue
		}

		f.Source = nil

		if !f.Voiced() || len(s.VocalTractMagnitude) < 2 || nyquist <= 0 {
			continue
		}

		binHz := nyquist / float64(len(s.VocalTractMagnitude)-1)

		nhar := int(nyquist / f.F0)
		if seq.Config.MaxHarmonics > 0 {
			nhar = min(nhar, seq.Config.MaxHarmonics)
		}

		h := llsm.NewHarmonics(nhar)
		for j := range nhar {
			pos := float64(j+1) * f.F0 / binHz
			h.Ampl[j] = mathx.Clamp(mathx.DBToLinear(sampleBins(s.VocalTractMagnitude, pos)), 0, 1)

			switch {
			case j < len(s.VoicedSpectralPhase):
				h.Phase[j] = s.VoicedSpectralPhase[j]
			case len(s.VoicedSpectralPhase) > 0:
				h.Phase[j] = mathx.WrapPhase(float64(j+1) * s.VoicedSpectralPhase[0])
			}
		}

		f.Harmonics = h
	}

	return nil
}

// sampleBins reads bins at the fractional position pos with linear
// interpolation, holding the edges.
func sampleBins(bins []float64, pos float64) float64 {
	last := len(bins) - 1
	if pos <= 0 {
		return bins[0]
	}

	if pos >= float64(last) {
		return bins[last]
	}

	i := int(pos)

	return mathx.Lerp(bins[i], bins[i+1], pos-float64(i))
}
