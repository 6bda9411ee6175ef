package resampler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumArgs is the number of positional arguments of a resample call.
const NumArgs = 13

// Request is one parsed resample call. It is built once and not modified.
type Request struct {
	Input, Output string
	// NoteHz is the target pitch.
	NoteHz float64
	// Velocity is the consonant velocity, 100 leaves the consonant as is.
	Velocity float64
	Flags    Flags
	// Offset, Length and Consonant are in milliseconds. Cutoff is too: a
	// negative value is measured from Offset, a positive one from the end
	// of the sample.
	Offset, Length, Consonant, Cutoff float64
	// Volume is a percentage applied to the rendered signal.
	Volume int
	// Modulation is the percentage of the sample's own pitch movement kept.
	Modulation int
	// Tempo in BPM lays out the pitch curve.
	Tempo      float64
	PitchCurve string
}

// semitones of the natural notes above C.
var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParseNote converts a scientific note name such as "A4", "C#3" or "Bb2"
// into Hz using twelve-tone equal temperament with A4 at 440 Hz.
func ParseNote(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty note name", ErrInput)
	}

	base, ok := semitones[upper(s[0])]
	if !ok {
		return 0, fmt.Errorf("%w: note name %q", ErrInput, s)
	}

	rest := s[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		base++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		base--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: note octave %q", ErrInput, s)
	}

	midi := (octave+1)*12 + base
	if midi < 0 {
		return 0, fmt.Errorf("%w: note %q below MIDI range", ErrInput, s)
	}

	return 440 * math.Exp2(float64(midi-69)/12), nil
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}

	return c
}

// ParseTempo parses a tempo in BPM. A leading '!' marks a fixed tempo and is
// ignored.
func ParseTempo(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "!"), 64)
	if err != nil || !finite(v) {
		return 0, fmt.Errorf("%w: tempo %q", ErrInput, s)
	}

	return v, nil
}

// Validate checks that the timing fields are finite and that the note is
// no longer than maxSeconds.
func (r *Request) Validate(maxSeconds float64) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"note", r.NoteHz},
		{"velocity", r.Velocity},
		{"offset", r.Offset},
		{"length", r.Length},
		{"consonant", r.Consonant},
		{"cutoff", r.Cutoff},
		{"tempo", r.Tempo},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return fmt.Errorf("%w: %s is not finite", ErrInput, f.name)
		}
	}

	if !(r.NoteHz > 0) {
		return fmt.Errorf("%w: note frequency must be > 0: %g", ErrInput, r.NoteHz)
	}

	if r.Length > maxSeconds*1000 || r.Consonant > maxSeconds*1000 {
		return fmt.Errorf("%w: note longer than %g s", ErrInput, maxSeconds)
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseArgs builds a request from the positional arguments
//
//	input output note velocity flags offset length consonant cutoff volume modulation tempo pitchcurve
func ParseArgs(args []string) (*Request, error) {
	if len(args) != NumArgs {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", ErrInput, NumArgs, len(args))
	}

	note, err := ParseNote(args[2])
	if err != nil {
		return nil, err
	}

	tempo, err := ParseTempo(args[11])
	if err != nil {
		return nil, err
	}

	p := numParser{}
	req := &Request{
		Input:      args[0],
		Output:     args[1],
		NoteHz:     note,
		Velocity:   p.float("velocity", args[3]),
		Flags:      ParseFlags(args[4]),
		Offset:     p.float("offset", args[5]),
		Length:     p.float("length", args[6]),
		Consonant:  p.float("consonant", args[7]),
		Cutoff:     p.float("cutoff", args[8]),
		Volume:     p.int("volume", args[9]),
		Modulation: p.int("modulation", args[10]),
		Tempo:      tempo,
		PitchCurve: args[12],
	}
	if p.err != nil {
		return nil, p.err
	}

	return req, nil
}

// numParser keeps the first parse error.
type numParser struct {
	err error
}

func (p *numParser) float(name, s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if (err != nil || !finite(v)) && p.err == nil {
		p.err = fmt.Errorf("%w: %s %q", ErrInput, name, s)
	}

	return v
}

func (p *numParser) int(name, s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: %s %q", ErrInput, name, s)
	}

	return v
}
