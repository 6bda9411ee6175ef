package llsm

// Harmonics is a set of harmonic amplitude/phase pairs. Amplitudes are linear
// in [0,1], phases are radians. Ampl and Phase always have equal length.
type Harmonics struct {
	Ampl  []float64
	Phase []float64
}

// NewHarmonics allocates n zeroed harmonics.
func NewHarmonics(n int) Harmonics {
	if n <= 0 {
		return Harmonics{Ampl: []float64{}, Phase: []float64{}}
	}

	return Harmonics{Ampl: make([]float64, n), Phase: make([]float64, n)}
}

// Len returns the harmonic count.
func (h Harmonics) Len() int { return len(h.Ampl) }

// Clone returns a deep copy of h.
func (h Harmonics) Clone() Harmonics {
	return Harmonics{Ampl: cloneFloats(h.Ampl), Phase: cloneFloats(h.Phase)}
}

// Envelope is the temporal envelope of one noise sub-band: a DC energy term
// plus harmonics of the fundamental.
type Envelope struct {
	Edc float64
	Harmonics
}

// Clone returns a deep copy of e.
func (e Envelope) Clone() Envelope {
	return Envelope{Edc: e.Edc, Harmonics: e.Harmonics.Clone()}
}

// NoiseFrame models the non-harmonic energy of a frame.
type NoiseFrame struct {
	// PSD is the noise power spectral density in dB.
	PSD []float64
	// Envelopes holds one entry per configured noise channel.
	Envelopes []Envelope
}

// Clone returns a deep copy of n.
func (n NoiseFrame) Clone() NoiseFrame {
	out := NoiseFrame{PSD: cloneFloats(n.PSD)}
	if n.Envelopes != nil {
		out.Envelopes = make([]Envelope, len(n.Envelopes))
		for i, e := range n.Envelopes {
			out.Envelopes[i] = e.Clone()
		}
	}

	return out
}

// SourceFilter holds the absolute-phase-layer description of a voiced frame.
type SourceFilter struct {
	// Rd is the glottal-flow shape parameter.
	Rd float64
	// VoicedSpectralPhase is the per-harmonic phase of the voiced source.
	VoicedSpectralPhase []float64
	// VocalTractMagnitude is the vocal-tract response in dB, sampled on
	// linearly spaced bins from 0 Hz to Nyquist.
	VocalTractMagnitude []float64
}

// Clone returns a deep copy of s, or nil if s is nil.
func (s *SourceFilter) Clone() *SourceFilter {
	if s == nil {
		return nil
	}

	return &SourceFilter{
		Rd:                  s.Rd,
		VoicedSpectralPhase: cloneFloats(s.VoicedSpectralPhase),
		VocalTractMagnitude: cloneFloats(s.VocalTractMagnitude),
	}
}

// Frame is one analysis time step.
type Frame struct {
	// F0 is the fundamental frequency in Hz; 0 marks an unvoiced frame.
	F0 float64
	Harmonics
	Noise NoiseFrame
	// Source is non-nil only while the frame is in the absolute phase layer.
	Source *SourceFilter
	// Residual is an optional correction vector; nil means absent.
	Residual []float64
}

// Voiced reports whether f carries a fundamental.
func (f *Frame) Voiced() bool { return f.F0 > 0 }

// Clone returns a deep value copy of f.
func (f *Frame) Clone() Frame {
	return Frame{
		F0:        f.F0,
		Harmonics: f.Harmonics.Clone(),
		Noise:     f.Noise.Clone(),
		Source:    f.Source.Clone(),
		Residual:  cloneFloats(f.Residual),
	}
}

// NewUnvoicedFrame returns a silent unvoiced frame with channels empty noise
// envelopes and a PSD of psdBins entries at floorDB.
func NewUnvoicedFrame(psdBins, channels int, floorDB float64) Frame {
	f := Frame{Harmonics: NewHarmonics(0)}

	f.Noise.PSD = make([]float64, psdBins)
	for i := range f.Noise.PSD {
		f.Noise.PSD[i] = floorDB
	}

	f.Noise.Envelopes = make([]Envelope, channels)
	for i := range f.Noise.Envelopes {
		f.Noise.Envelopes[i].Harmonics = NewHarmonics(0)
	}

	return f
}

func cloneFloats(src []float64) []float64 {
	if src == nil {
		return nil
	}

	out := make([]float64, len(src))
	copy(out, src)

	return out
}
