package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-resampler/llsm"
)

// DefaultSeed seeds the noise generator unless WithSeed overrides it.
const DefaultSeed = 0x5eed

// Synthesizer renders frames back to a waveform. Harmonics are rendered as
// cosines and the noise as random-phase spectra shaped by the frame PSD;
// both are overlap-added with a periodic Hann window two hops long.
type Synthesizer struct {
	seed  uint64
	noise bool
}

// SynthOption configures a [Synthesizer].
type SynthOption func(*Synthesizer)

// WithSeed sets the noise generator seed. Equal seeds give equal output.
func WithSeed(seed uint64) SynthOption {
	return func(s *Synthesizer) {
		s.seed = seed
	}
}

// WithoutNoise disables the noise component.
func WithoutNoise() SynthOption {
	return func(s *Synthesizer) {
		s.noise = false
	}
}

// NewSynthesizer returns a synthesizer rendering harmonics and noise.
func NewSynthesizer(opts ...SynthOption) *Synthesizer {
	s := &Synthesizer{seed: DefaultSeed, noise: true}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Synthesize returns seq.Len()*hop samples, frame i centered on i*hop.
func (s *Synthesizer) Synthesize(seq *llsm.Sequence) ([]float64, error) {
	if seq == nil || seq.Len() == 0 {
		return nil, ErrEmpty
	}

	if seq.SampleRate <= 0 {
		return nil, fmt.Errorf("synthesizer: sample rate must be > 0: %d", seq.SampleRate)
	}

	hop := int(math.Round(seq.Config.Hop * float64(seq.SampleRate)))
	if hop < 1 {
		return nil, fmt.Errorf("synthesizer: hop must be at least one sample: %g s", seq.Config.Hop)
	}

	win := Hann(2*hop, true)
	y := make([]float64, seq.Len()*hop)
	rate := float64(seq.SampleRate)

	for i := range seq.Frames {
		addHarmonics(y, win, &seq.Frames[i], i*hop, rate)
	}

	if s.noise {
		if err := s.addNoise(y, win, seq, hop); err != nil {
			return nil, err
		}
	}

	return y, nil
}

func addHarmonics(y, win []float64, f *llsm.Frame, center int, rate float64) {
	if !f.Voiced() || f.Len() == 0 {
		return
	}

	half := len(win) / 2
	for h := range f.Len() {
		omega := 2 * math.Pi * float64(h+1) * f.F0 / rate
		if omega >= math.Pi {
			break
		}

		a, phi := f.Ampl[h], f.Phase[h]
		if a == 0 {
			continue
		}

		for t := -half; t < half; t++ {
			n := center + t
			if n < 0 || n >= len(y) {
				continue
			}

			y[n] += win[t+half] * a * math.Cos(omega*float64(t)+phi)
		}
	}
}

func (s *Synthesizer) addNoise(y, win []float64, seq *llsm.Sequence, hop int) error {
	size := nextPow2(len(win))

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return fmt.Errorf("synthesizer: failed to create FFT plan: %w", err)
	}

	rng := rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	spec := make([]complex128, size)
	rate := float64(seq.SampleRate)
	binHz := rate / float64(size)
	half := len(win) / 2

	for i := range seq.Frames {
		f := &seq.Frames[i]
		psd := f.Noise.PSD
		if len(psd) == 0 {
			continue
		}

		centers := make([]float64, len(psd))
		for b := range centers {
			centers[b] = (float64(b) + 0.5) * rate / 2 / float64(len(psd))
		}

		clear(spec)
		for k := 1; k < size/2; k++ {
			variance := math.Pow(10, interpolateLinear(centers, psd, float64(k)*binHz)/10)
			mag := math.Sqrt(float64(size) * variance)
			spec[k] = cmplx.Rect(mag, 2*math.Pi*rng.Float64())
			spec[size-k] = cmplx.Conj(spec[k])
		}

		if err := plan.Inverse(spec, spec); err != nil {
			return fmt.Errorf("synthesizer: frame %d: %w", i, err)
		}

		mod := envelopeModulation(f, rate)
		center := i * hop
		for t := -half; t < half; t++ {
			n := center + t
			if n < 0 || n >= len(y) {
				continue
			}

			y[n] += win[t+half] * real(spec[t+half]) * mod(t)
		}
	}

	return nil
}

// envelopeModulation returns the gain applied to the noise of voiced frames
// at offset t from the frame center, built from the channel envelopes'
// harmonics relative to their DC level. Frames without envelope harmonics
// get unit gain.
func envelopeModulation(f *llsm.Frame, rate float64) func(t int) float64 {
	type term struct{ ampl, omega, phase float64 }

	var terms []term
	if f.Voiced() {
		for _, env := range f.Noise.Envelopes {
			if env.Edc <= 0 {
				continue
			}

			for h := range env.Len() {
				terms = append(terms, term{
					ampl:  env.Ampl[h] / env.Edc / float64(len(f.Noise.Envelopes)),
					omega: 2 * math.Pi * float64(h+1) * f.F0 / rate,
					phase: env.Phase[h],
				})
			}
		}
	}

	return func(t int) float64 {
		g := 1.0
		for _, tm := range terms {
			g += tm.ampl * math.Cos(tm.omega*float64(t)+tm.phase)
		}

		return math.Max(g, 0)
	}
}
