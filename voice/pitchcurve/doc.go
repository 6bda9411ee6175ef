// Package pitchcurve decodes UTAU-style pitch-bend strings.
//
// A curve is a sequence of 12-bit two's-complement cent offsets, each packed
// into two characters of the base64 alphabet (A-Z, a-z, 0-9, +, /). A run
// marker "#n#" repeats the previously decoded value n more times.
//
// Decoding is lenient: malformed trailing input ends the curve early instead
// of failing.
package pitchcurve
