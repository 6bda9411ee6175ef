// Package resampler renders one UTAU note from a recorded sample.
//
// A [Request] names the sample, the target note and the timing of the
// region to use. [Resampler.Resample] loads or builds the harmonic+noise
// analysis of the sample, cuts the requested region, stretches it to the
// note length, retunes it along the pitch curve and writes the synthesized
// result. The pitch tracker, analyzer, phase-layer transforms, synthesizer
// and wave writer are interfaces; the defaults come from package analysis
// and write WAV files.
package resampler
