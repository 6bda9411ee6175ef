package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-resampler/internal/mathx"
	"github.com/cwbudde/algo-resampler/llsm"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// DefaultFFTSize is the analysis frame length in samples.
	DefaultFFTSize = 2048
	// PSDFloorDB is the lowest noise level the analyzer reports.
	PSDFloorDB = -120.0

	// harmonicGuardBins is the half-width, in bins, of the main lobe around
	// each harmonic that is excluded from the noise estimate.
	harmonicGuardBins = 2.0
	defaultBitDepth   = 16
)

// Analyzer turns a waveform and an F0 track into harmonic+noise frames.
type Analyzer struct {
	fftSize int
}

// AnalyzerOption configures an [Analyzer].
type AnalyzerOption func(*Analyzer)

// WithFFTSize sets the analysis frame length. It must be a power of two.
func WithFFTSize(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.fftSize = n
	}
}

// NewAnalyzer returns an analyzer using DefaultFFTSize.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{fftSize: DefaultFFTSize}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// FFTSize returns the analysis frame length.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// frameState holds the per-call buffers of an analysis.
type frameState struct {
	plan     *algofft.Plan[complex128]
	window   []float64
	seg      []float64
	sumW     float64
	sumW2    float64
	spectrum []complex128
	power    []float64
	excluded []bool
	rate     float64
	cfg      llsm.Config
}

// Analyze produces one frame per F0 value. Frame i is centered on sample
// i*hop. The returned sequence records cfg with its hop replaced by
// hop/sampleRate seconds and a 16-bit depth that callers may overwrite.
func (a *Analyzer) Analyze(x []float64, sampleRate int, f0 []float64, hop int, cfg llsm.Config) (*llsm.Sequence, error) {
	if len(x) == 0 || len(f0) == 0 {
		return nil, ErrEmpty
	}

	if err := validateRate(sampleRate, hop); err != nil {
		return nil, err
	}

	if err := validateFFTSize(a.fftSize); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(a.fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyzer: failed to create FFT plan: %w", err)
	}

	cfg = cfg.Clone()
	cfg.Hop = float64(hop) / float64(sampleRate)

	st := &frameState{
		plan:     plan,
		window:   Hann(a.fftSize, true),
		seg:      make([]float64, a.fftSize),
		spectrum: make([]complex128, a.fftSize),
		power:    make([]float64, a.fftSize/2+1),
		excluded: make([]bool, a.fftSize/2+1),
		rate:     float64(sampleRate),
		cfg:      cfg,
	}
	st.sumW = vecmath.Sum(st.window)
	st.sumW2 = vecmath.DotProduct(st.window, st.window)

	seq := &llsm.Sequence{
		Config:     cfg,
		SampleRate: sampleRate,
		BitDepth:   defaultBitDepth,
		Frames:     make([]llsm.Frame, len(f0)),
	}

	for i, f := range f0 {
		if err := st.transform(x, i*hop); err != nil {
			return nil, fmt.Errorf("analyzer: frame %d: %w", i, err)
		}

		seq.Frames[i] = st.frame(f)
	}

	return seq, nil
}

// transform loads the windowed frame centered on center with its middle
// sample rotated to index 0, so bin phases refer to the frame center.
func (st *frameState) transform(x []float64, center int) error {
	n := len(st.window)
	half := n / 2

	clear(st.seg)
	lo := max(center-half, 0)
	hi := min(center-half+n, len(x))
	if lo < hi {
		copy(st.seg[lo-(center-half):], x[lo:hi])
	}

	vecmath.MulBlockInPlace(st.seg, st.window)

	for k, v := range st.seg {
		st.spectrum[(k-half+n)%n] = complex(v, 0)
	}

	if err := st.plan.Forward(st.spectrum, st.spectrum); err != nil {
		return err
	}

	power(st.power, st.spectrum)

	return nil
}

func (st *frameState) frame(f0 float64) llsm.Frame {
	n := len(st.window)
	nyquist := st.rate / 2
	binHz := st.rate / float64(n)

	frame := llsm.Frame{Harmonics: llsm.NewHarmonics(0)}
	clear(st.excluded)

	if f0 > 0 && f0 < nyquist {
		frame.F0 = f0

		nhar := int((nyquist - harmonicGuardBins*binHz) / f0)
		if st.cfg.MaxHarmonics > 0 {
			nhar = min(nhar, st.cfg.MaxHarmonics)
		}

		frame.Harmonics = llsm.NewHarmonics(max(nhar, 0))
		for h := range frame.Len() {
			frame.Ampl[h], frame.Phase[h] = st.harmonic(float64(h+1) * f0 / binHz)
		}
	}

	frame.Noise = st.noise()

	return frame
}

// harmonic measures the partial nearest to the fractional bin position pos
// and marks its main lobe as excluded from the noise estimate.
func (st *frameState) harmonic(pos float64) (ampl, phase float64) {
	last := len(st.power) - 2

	for k := max(int(math.Ceil(pos-harmonicGuardBins)), 0); k <= min(int(pos+harmonicGuardBins), last+1); k++ {
		st.excluded[k] = true
	}

	k0 := min(max(int(math.Round(pos)), 1), last)
	peak := k0
	for k := max(k0-1, 1); k <= min(k0+1, last); k++ {
		if st.power[k] > st.power[peak] {
			peak = k
		}
	}

	db := func(k int) float64 { return 10 * math.Log10(st.power[k]+1e-30) }
	_, peakDB := parabolicPeak(db(peak-1), db(peak), db(peak+1))

	ampl = 2 * math.Sqrt(math.Pow(10, peakDB/10)) / st.sumW

	return mathx.Clamp(ampl, 0, 1), cmplx.Phase(st.spectrum[peak])
}

// noise averages the non-harmonic power into PSD bands and channel RMS
// values.
func (st *frameState) noise() llsm.NoiseFrame {
	bins := len(st.power)
	binHz := st.rate / float64(len(st.window))
	floor := math.Pow(10, PSDFloorDB/10)

	out := llsm.NoiseFrame{PSD: make([]float64, st.cfg.PSDBins)}
	if st.cfg.PSDBins > 0 {
		sums := make([]float64, st.cfg.PSDBins)
		counts := make([]int, st.cfg.PSDBins)
		mins := make([]float64, st.cfg.PSDBins)
		for b := range mins {
			mins[b] = math.Inf(1)
		}

		for k := range bins {
			b := min(k*st.cfg.PSDBins/bins, st.cfg.PSDBins-1)
			p := st.power[k] / st.sumW2
			mins[b] = math.Min(mins[b], p)
			if !st.excluded[k] {
				sums[b] += p
				counts[b]++
			}
		}

		for b := range out.PSD {
			p := mins[b]
			if counts[b] > 0 {
				p = sums[b] / float64(counts[b])
			}

			if math.IsInf(p, 1) {
				p = 0
			}

			out.PSD[b] = 10 * math.Log10(math.Max(p, floor))
		}
	}

	out.Envelopes = make([]llsm.Envelope, st.cfg.Channels())
	lo := 0.0
	for c, hi := range st.cfg.ChannelFreqs {
		sum, count := 0.0, 0
		for k := int(math.Ceil(lo / binHz)); k < bins && float64(k)*binHz < hi; k++ {
			if !st.excluded[k] {
				sum += st.power[k] / st.sumW2
				count++
			}
		}

		env := llsm.Envelope{Harmonics: llsm.NewHarmonics(0)}
		if count > 0 {
			env.Edc = math.Sqrt(sum / float64(count))
		}

		out.Envelopes[c] = env
		lo = hi
	}

	return out
}
