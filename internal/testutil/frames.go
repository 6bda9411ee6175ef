package testutil

import (
	"math"

	"github.com/cwbudde/algo-resampler/llsm"
)

// SyntheticFrame builds a deterministic frame. f0 == 0 yields an unvoiced
// frame; seed varies amplitudes and phases so neighbouring frames differ.
func SyntheticFrame(f0 float64, nhar, psdBins, channels, envHar int, seed float64) llsm.Frame {
	f := llsm.Frame{F0: f0, Harmonics: llsm.NewHarmonics(nhar)}
	for h := range nhar {
		f.Ampl[h] = 0.5 / float64(h+1) * (1 + 0.1*math.Sin(seed+float64(h)))
		f.Phase[h] = math.Remainder(seed*0.7+float64(h)*1.3, 2*math.Pi)
	}

	f.Noise.PSD = make([]float64, psdBins)
	for i := range f.Noise.PSD {
		f.Noise.PSD[i] = -60 + 10*math.Cos(seed+float64(i)*0.2)
	}

	f.Noise.Envelopes = make([]llsm.Envelope, channels)
	for c := range f.Noise.Envelopes {
		e := &f.Noise.Envelopes[c]
		e.Edc = 0.01 * float64(c+1) * (1 + 0.5*math.Sin(seed))
		e.Harmonics = llsm.NewHarmonics(envHar)
		for h := range envHar {
			e.Ampl[h] = 0.2 / float64(h+1)
			e.Phase[h] = math.Remainder(seed+float64(c+h), 2*math.Pi)
		}
	}

	return f
}

// SyntheticSequence builds n frames: the first unvoiced frames are unvoiced,
// the rest voiced around f0 with a slow vibrato.
func SyntheticSequence(n, unvoiced int, f0 float64) *llsm.Sequence {
	cfg := llsm.DefaultConfig(128.0 / 44100.0)
	seq := &llsm.Sequence{Config: cfg, SampleRate: 44100, BitDepth: 16, Frames: make([]llsm.Frame, n)}
	for i := range n {
		pitch := 0.0
		nhar := 0
		if i >= unvoiced {
			pitch = f0 * (1 + 0.01*math.Sin(float64(i)*0.3))
			nhar = 20 + i%5
		}
		seq.Frames[i] = SyntheticFrame(pitch, nhar, cfg.PSDBins, cfg.Channels(), 2, float64(i))
	}
	return seq
}
