// Package analysis is the reference signal backend of the resampler: a YIN
// pitch tracker, a harmonic+noise frame analyzer, the phase-layer transforms
// between per-harmonic and source-filter frames, and an overlap-add
// synthesizer.
//
// All transforms use algo-fft plans created once per call and reused across
// frames. None of the types here are safe for concurrent use of a single
// call's buffers, but the exported types themselves hold only configuration
// and may be shared.
package analysis
