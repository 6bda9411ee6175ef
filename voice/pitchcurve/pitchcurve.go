package pitchcurve

import "math"

// DefaultCapacity bounds the curve length a note may carry.
const DefaultCapacity = 3000

// beatDivisions is the number of curve samples per beat.
const beatDivisions = 96

// sextet maps one alphabet character to its 6-bit value. Characters outside
// the alphabet map to 0.
func sextet(c byte) int {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 26
	case c >= '0' && c <= '9':
		return int(c-'0') + 52
	case c == '+':
		return 62
	case c == '/':
		return 63
	default:
		return 0
	}
}

// DecodePair decodes one character pair into a signed value in [-2048, 2047].
func DecodePair(hi, lo byte) int {
	v := sextet(hi)<<6 | sextet(lo)
	if v >= 2048 {
		v -= 4096
	}

	return v
}

// Decode decodes text into at most capacity cent offsets.
func Decode(text string, capacity int) []float64 {
	if capacity <= 0 {
		return []float64{}
	}

	out := make([]float64, 0, min(capacity, len(text)))
	last := 0.0

	for i := 0; i < len(text) && len(out) < capacity; {
		if text[i] == '#' {
			n, next, ok := runLength(text, i+1)
			if !ok {
				break
			}

			for j := 0; j < n && len(out) < capacity; j++ {
				out = append(out, last)
			}

			i = next

			continue
		}

		if i+1 >= len(text) {
			break
		}

		last = float64(DecodePair(text[i], text[i+1]))
		out = append(out, last)
		i += 2
	}

	return out
}

// runLength parses the decimal count of a run marker starting at i and
// returns it with the index following the closing '#'.
func runLength(text string, i int) (n, next int, ok bool) {
	start := i
	for ; i < len(text) && text[i] != '#'; i++ {
		c := text[i]
		if c < '0' || c > '9' {
			return 0, 0, false
		}

		if n < math.MaxInt32/10 {
			n = n*10 + int(c-'0')
		}
	}

	if i >= len(text) || i == start {
		return 0, 0, false
	}

	return n, i + 1, true
}

// RatioOffsets samples curve at each of frames frame times (frame i at
// i*hop seconds) and returns the pitch ratio offsets 2^(cents/1200)-1. The
// curve is laid out on a 1/96-beat grid at tempo BPM and interpolated
// linearly, holding its end values. An empty curve or non-positive tempo
// yields zero offsets.
func RatioOffsets(curve []float64, frames int, hop, tempo float64) []float64 {
	if frames <= 0 {
		return []float64{}
	}

	out := make([]float64, frames)
	if len(curve) == 0 || tempo <= 0 {
		return out
	}

	step := 60.0 / beatDivisions / tempo
	last := len(curve) - 1

	for i := range out {
		idx := float64(i) * hop / step
		i0 := min(max(int(idx), 0), last)
		i1 := min(i0+1, last)
		frac := idx - float64(i0)
		if i0 == last {
			frac = 0
		}

		cents := curve[i0]*(1-frac) + curve[i1]*frac
		out[i] = math.Exp2(cents/1200) - 1
	}

	return out
}
