// Package warp re-times a frame region to a target length.
//
// The region is split at the consonant boundary. The consonant span is
// resampled according to the note velocity, the vowel span is stretched to
// fill the remaining frames, and a short blend smooths the seam between the
// two. Stretching only ever interpolates between existing frames; nothing is
// extrapolated.
package warp
