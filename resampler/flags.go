package resampler

import "github.com/cwbudde/algo-resampler/internal/mathx"

// Flags are the resampler flags understood in the flag string.
type Flags struct {
	// Transpose ("t") shifts the pitch in tenths of a semitone, -9..9.
	Transpose int
	// Tension ("Mt") tilts the harmonic spectrum, -100..100.
	Tension int
	// Gender ("g") shifts the formants, -100..100. Positive is lower.
	Gender int
	// Normalize ("P") blends toward peak normalization, 0..100.
	Normalize int
}

// flagLimit caps digit accumulation before clamping.
const flagLimit = 1 << 20

// ParseFlags reads a flag string such as "Mt30t-2P86". Each value is clamped
// to its range; characters that start no known flag are skipped, and a
// flag without digits reads as 0.
func ParseFlags(s string) Flags {
	var f Flags

	for i := 0; i < len(s); {
		switch {
		case s[i] == 'M' && i+1 < len(s) && s[i+1] == 't':
			var v int
			v, i = leadingInt(s, i+2)
			f.Tension = mathx.ClampInt(v, -100, 100)
		case s[i] == 't':
			var v int
			v, i = leadingInt(s, i+1)
			f.Transpose = mathx.ClampInt(v, -9, 9)
		case s[i] == 'g':
			var v int
			v, i = leadingInt(s, i+1)
			f.Gender = mathx.ClampInt(v, -100, 100)
		case s[i] == 'P':
			var v int
			v, i = leadingInt(s, i+1)
			f.Normalize = mathx.ClampInt(v, 0, 100)
		default:
			i++
		}
	}

	return f
}

// leadingInt parses an optionally signed integer at s[i:]. It returns the
// value and the index after it, or 0 and i when no digits follow.
func leadingInt(s string, i int) (int, int) {
	j := i
	neg := false
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		neg = s[j] == '-'
		j++
	}

	start := j
	v := 0
	for ; j < len(s) && s[j] >= '0' && s[j] <= '9'; j++ {
		v = min(v*10+int(s[j]-'0'), flagLimit)
	}

	if j == start {
		return 0, i
	}

	if neg {
		v = -v
	}

	return v, j
}
