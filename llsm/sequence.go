package llsm

import (
	"errors"
	"fmt"
)

// Harmonic estimation methods recorded in [Config.HarmonicMethod].
const (
	HarmonicMethodPeakPicking = 0
	HarmonicMethodQuadratic   = 1
	HarmonicMethodCZT         = 2
)

var (
	errHarmonicPair  = errors.New("harmonic amplitude and phase lengths differ")
	errChannelCount  = errors.New("noise envelope count differs from channel count")
	errInvalidRegion = errors.New("invalid frame region")
)

// Config describes how a sequence was analyzed.
type Config struct {
	// Hop is the frame hop in seconds.
	Hop               float64
	MaxHarmonics      int
	MaxNoiseHarmonics int
	PSDBins           int
	// ChannelFreqs are the noise channel center frequencies in Hz. The
	// channel count is their number.
	ChannelFreqs   []float64
	LipRadius      float64
	F0Refine       float64
	HarmonicMethod int
	WindowRatio    float64
}

// Channels returns the configured noise channel count.
func (c Config) Channels() int { return len(c.ChannelFreqs) }

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	c.ChannelFreqs = cloneFloats(c.ChannelFreqs)
	return c
}

// DefaultConfig returns analysis settings for the given hop in seconds.
func DefaultConfig(hop float64) Config {
	return Config{
		Hop:               hop,
		MaxHarmonics:      100,
		MaxNoiseHarmonics: 4,
		PSDBins:           64,
		ChannelFreqs:      []float64{2000, 4000, 8000, 12000},
		LipRadius:         1.5,
		F0Refine:          1,
		HarmonicMethod:    HarmonicMethodCZT,
		WindowRatio:       2,
	}
}

// Sequence is an ordered list of frames plus the configuration and source
// format they were analyzed with. The frame count is len(Frames).
type Sequence struct {
	Config     Config
	SampleRate int
	BitDepth   int
	Frames     []Frame
}

// Len returns the frame count.
func (s *Sequence) Len() int { return len(s.Frames) }

// Clone returns a deep copy of s.
func (s *Sequence) Clone() *Sequence {
	out := &Sequence{
		Config:     s.Config.Clone(),
		SampleRate: s.SampleRate,
		BitDepth:   s.BitDepth,
		Frames:     make([]Frame, len(s.Frames)),
	}
	for i := range s.Frames {
		out.Frames[i] = s.Frames[i].Clone()
	}

	return out
}

// Slice returns a deep copy of frames [start, end) sharing nothing with s.
func (s *Sequence) Slice(start, end int) (*Sequence, error) {
	if start < 0 || end > len(s.Frames) || start >= end {
		return nil, fmt.Errorf("llsm: %w: [%d, %d) of %d frames", errInvalidRegion, start, end, len(s.Frames))
	}

	out := &Sequence{
		Config:     s.Config.Clone(),
		SampleRate: s.SampleRate,
		BitDepth:   s.BitDepth,
		Frames:     make([]Frame, end-start),
	}
	for i := range out.Frames {
		out.Frames[i] = s.Frames[start+i].Clone()
	}

	return out, nil
}

// F0s returns the fundamental of every frame.
func (s *Sequence) F0s() []float64 {
	out := make([]float64, len(s.Frames))
	for i := range s.Frames {
		out[i] = s.Frames[i].F0
	}

	return out
}

// Validate checks the structural invariants of every frame.
func (s *Sequence) Validate() error {
	channels := s.Config.Channels()
	for i := range s.Frames {
		f := &s.Frames[i]
		if len(f.Ampl) != len(f.Phase) {
			return fmt.Errorf("llsm: frame %d: %w (%d vs %d)", i, errHarmonicPair, len(f.Ampl), len(f.Phase))
		}

		if len(f.Noise.Envelopes) != channels {
			return fmt.Errorf("llsm: frame %d: %w (%d vs %d)", i, errChannelCount, len(f.Noise.Envelopes), channels)
		}

		for c, e := range f.Noise.Envelopes {
			if len(e.Ampl) != len(e.Phase) {
				return fmt.Errorf("llsm: frame %d channel %d: %w", i, c, errHarmonicPair)
			}
		}
	}

	return nil
}
