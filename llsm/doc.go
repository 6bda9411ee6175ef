// Package llsm defines the harmonic+noise frame model used by the resampler
// and the pairwise frame interpolation the time-warp stages are built on.
//
// A [Sequence] owns its frames outright. Every operation that derives a frame
// from other frames works on deep copies ([Frame.Clone]), so a destination is
// never aliased with a source that is still being read.
//
// Frames live in one of two representations:
//   - base layer: per-harmonic amplitude and absolute phase ([Frame.Harmonics]);
//   - absolute phase layer: additionally a [SourceFilter] holding the glottal
//     shape parameter, voiced spectral phase and a dB vocal-tract magnitude.
//
// [Interpolate] understands both.
package llsm
