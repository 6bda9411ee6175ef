package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// HarmonicTone generates a tone with the given per-harmonic amplitudes,
// harmonic h (1-based) at h*freqHz.
func HarmonicTone(freqHz, sampleRate float64, ampl []float64, length int) []float64 {
	out := make([]float64, length)
	for h, a := range ampl {
		step := 2 * math.Pi * freqHz * float64(h+1) / sampleRate
		for i := range out {
			out[i] += a * math.Sin(step*float64(i))
		}
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}
