// Package timbre implements the brightness and formant flags of a note:
// tension tilts the harmonic spectrum around a pivot while preserving the
// summed amplitude, and gender shifts the vocal-tract envelope along
// frequency.
package timbre
