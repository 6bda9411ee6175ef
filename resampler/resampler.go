package resampler

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/cwbudde/algo-resampler/analysis"
	"github.com/cwbudde/algo-resampler/internal/audioio"
	"github.com/cwbudde/algo-resampler/internal/mathx"
	"github.com/cwbudde/algo-resampler/llsm"
	"github.com/cwbudde/algo-resampler/llsm/cache"
	"github.com/cwbudde/algo-resampler/voice/pitch"
	"github.com/cwbudde/algo-resampler/voice/pitchcurve"
	"github.com/cwbudde/algo-resampler/voice/timbre"
	"github.com/cwbudde/algo-resampler/voice/warp"
	"github.com/cwbudde/algo-vecmath"
)

// minAverageF0 is the lowest usable average pitch of a sample region. Below
// it the note pitch stands in for the average.
const minAverageF0 = 50

// PitchTracker estimates one F0 value per hop; 0 marks unvoiced frames.
type PitchTracker interface {
	Track(x []float64, sampleRate, hop int, fmin, fmax float64) ([]float64, error)
}

// Analyzer builds a frame sequence from a waveform and its F0 track.
type Analyzer interface {
	Analyze(x []float64, sampleRate int, f0 []float64, hop int, cfg llsm.Config) (*llsm.Sequence, error)
}

// PhaseLayer converts sequences between the base layer and the absolute
// phase layer the warp and pitch stages operate on.
type PhaseLayer interface {
	ToAbsolutePhaseLayer(seq *llsm.Sequence, fftSize int) error
	ToBaseLayer(seq *llsm.Sequence) error
	PropagatePhase(seq *llsm.Sequence, direction int) error
}

// Synthesizer renders a frame sequence to PCM.
type Synthesizer interface {
	Synthesize(seq *llsm.Sequence) ([]float64, error)
}

// WaveWriter stores the rendered note.
type WaveWriter interface {
	WriteWave(path string, y []float64, sampleRate, bitDepth int) error
}

// WaveWriterFunc adapts a function to [WaveWriter].
type WaveWriterFunc func(path string, y []float64, sampleRate, bitDepth int) error

// WriteWave calls fn.
func (fn WaveWriterFunc) WriteWave(path string, y []float64, sampleRate, bitDepth int) error {
	return fn(path, y, sampleRate, bitDepth)
}

// Resampler renders notes. It holds no per-call state; one value may serve
// many sequential requests.
type Resampler struct {
	logger   *slog.Logger
	cfg      Config
	tracker  PitchTracker
	analyzer Analyzer
	layers   PhaseLayer
	synth    Synthesizer
	writer   WaveWriter
}

// Option configures a [Resampler].
type Option func(*Resampler)

// WithLogger sets the progress logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resampler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(r *Resampler) {
		r.cfg = cfg
	}
}

// WithPitchTracker replaces the YIN tracker used for new analyses.
func WithPitchTracker(t PitchTracker) Option {
	return func(r *Resampler) {
		r.tracker = t
	}
}

// WithAnalyzer replaces the harmonic+noise analyzer.
func WithAnalyzer(a Analyzer) Option {
	return func(r *Resampler) {
		r.analyzer = a
	}
}

// WithPhaseLayer replaces the phase-layer transforms.
func WithPhaseLayer(p PhaseLayer) Option {
	return func(r *Resampler) {
		r.layers = p
	}
}

// WithSynthesizer replaces the synthesizer.
func WithSynthesizer(s Synthesizer) Option {
	return func(r *Resampler) {
		r.synth = s
	}
}

// WithWaveWriter replaces the WAV writer.
func WithWaveWriter(w WaveWriter) Option {
	return func(r *Resampler) {
		r.writer = w
	}
}

// New returns a resampler. Collaborators not set by an option default to
// the implementations in package analysis and a WAV writer.
func New(opts ...Option) *Resampler {
	r := &Resampler{
		logger: slog.Default(),
		cfg:    DefaultConfig(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	if r.tracker == nil {
		r.tracker = analysis.NewYIN()
	}

	if r.analyzer == nil {
		r.analyzer = analysis.NewAnalyzer(analysis.WithFFTSize(r.cfg.FFTSize))
	}

	if r.layers == nil {
		r.layers = analysis.Layers{}
	}

	if r.synth == nil {
		r.synth = analysis.NewSynthesizer()
	}

	if r.writer == nil {
		r.writer = WaveWriterFunc(audioio.WriteWAV)
	}

	return r
}

// Config returns the configuration in use.
func (r *Resampler) Config() Config { return r.cfg }

// bounds is the frame layout of a request against a source sequence.
type bounds struct {
	start, end int
	consonant  int
	total      int
}

// frameBounds converts the millisecond timing of req into frames of hop
// seconds over a source of n frames. Degenerate timings are widened to the
// nearest usable layout rather than rejected.
func frameBounds(req *Request, n int, hop float64) bounds {
	frames := func(ms float64) int {
		return int(mathx.Clamp(math.Round(ms/1000/hop), math.MinInt32, math.MaxInt32))
	}

	var b bounds

	b.start = min(max(frames(req.Offset), 0), n-1)
	if req.Cutoff < 0 {
		b.end = frames(req.Offset + math.Abs(req.Cutoff))
	} else {
		b.end = n - frames(req.Cutoff)
	}

	b.end = min(b.end, n)
	if b.end <= b.start {
		b.end = b.start + 1
	}

	sample := b.end - b.start
	b.consonant = min(max(frames(req.Consonant), 0), sample)
	b.total = max(frames(req.Length), b.consonant+1)

	return b
}

// Resample renders req and writes the result to req.Output. Nothing is
// written when any stage fails.
func (r *Resampler) Resample(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: nil request", ErrInput)
	}

	if err := req.Validate(r.cfg.MaxNoteSeconds); err != nil {
		return err
	}

	curve := pitchcurve.Decode(req.PitchCurve, pitchcurve.DefaultCapacity)

	src, err := r.source(req.Input)
	if err != nil {
		return err
	}

	if src.Len() == 0 || !(src.Config.Hop > 0) || src.SampleRate <= 0 {
		return fmt.Errorf("%w: analysis of %q holds no usable frames", ErrInput, req.Input)
	}

	b := frameBounds(req, src.Len(), src.Config.Hop)

	offsets := pitchcurve.RatioOffsets(curve, b.total, src.Config.Hop, req.Tempo)
	pitch.Transpose(offsets, req.Flags.Transpose)

	region, err := src.Slice(b.start, b.end)
	if err != nil {
		return fmt.Errorf("resampler: %w", err)
	}

	avg := pitch.AverageF0(region.F0s())
	if avg < minAverageF0 {
		avg = req.NoteHz
	}

	r.logger.Info("phase sync and stretching", "start", b.start, "end", b.end, "consonant", b.consonant, "frames", b.total)

	if err := r.layers.ToAbsolutePhaseLayer(region, r.cfg.FFTSize); err != nil {
		return fmt.Errorf("resampler: absolute phase layer: %w", err)
	}

	if err := r.layers.PropagatePhase(region, -1); err != nil {
		return fmt.Errorf("resampler: phase propagation: %w", err)
	}

	stretched := warp.Stretch(region.Frames, warp.Params{
		Start:     0,
		End:       region.Len(),
		Total:     b.total,
		Consonant: b.consonant,
		Velocity:  warp.VelocityFactor(req.Velocity),
	})

	out := &llsm.Sequence{
		Config:     region.Config,
		SampleRate: region.SampleRate,
		BitDepth:   region.BitDepth,
		Frames:     stretched.Frames,
	}

	pitch.Apply(out.Frames, pitch.Params{
		NoteHz:     req.NoteHz,
		AverageF0:  avg,
		Modulation: float64(req.Modulation) / 100,
		Offsets:    offsets,
	})
	timbre.ApplyGender(out.Frames, float64(req.Flags.Gender))

	if err := r.layers.PropagatePhase(out, 1); err != nil {
		return fmt.Errorf("resampler: phase propagation: %w", err)
	}

	if err := r.layers.ToBaseLayer(out); err != nil {
		return fmt.Errorf("resampler: base layer: %w", err)
	}

	timbre.ApplyTension(out.Frames, float64(req.Flags.Tension))

	r.logger.Info("synthesis", "frames", out.Len())

	y, err := r.synth.Synthesize(out)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	if len(y) == 0 {
		return fmt.Errorf("%w: no samples", ErrSynthesis)
	}

	Normalize(y, r.cfg.TargetPeak, req.Flags.Normalize)
	vecmath.ScaleBlockInPlace(y, float64(req.Volume)/100)

	if err := r.writer.WriteWave(req.Output, y, out.SampleRate, out.BitDepth); err != nil {
		return fmt.Errorf("resampler: write %q: %w", req.Output, err)
	}

	r.logger.Info("wrote output", "path", req.Output, "samples", len(y))

	return nil
}

// source returns the analysis of input, from its cache when one exists.
func (r *Resampler) source(input string) (*llsm.Sequence, error) {
	path := cache.PathFor(input, r.cfg.CacheExt)

	seq, err := cache.Load(path)
	switch {
	case err == nil:
		r.logger.Info("loaded cached analysis", "path", path, "frames", seq.Len())
		return seq, nil
	case errors.Is(err, os.ErrNotExist):
	case r.cfg.ReanalyzeOnCacheError:
		r.logger.Warn("ignoring unreadable cache", "path", path, "err", err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrCache, err)
	}

	seq, err = r.analyze(input)
	if err != nil {
		return nil, err
	}

	r.logger.Info("saving analysis to cache", "path", path)
	if err := cache.Save(path, seq); err != nil {
		r.logger.Warn("failed to save cache", "path", path, "err", err)
	}

	return seq, nil
}

// analyze runs pitch tracking and harmonic+noise analysis on input.
func (r *Resampler) analyze(input string) (*llsm.Sequence, error) {
	r.logger.Info("reading input", "path", input)

	audio, err := audioio.Read(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}

	r.logger.Info("estimating f0", "samples", len(audio.Samples), "rate", audio.SampleRate)

	f0, err := r.tracker.Track(audio.Samples, audio.SampleRate, r.cfg.HopSize, r.cfg.F0Min, r.cfg.F0Max)
	if err != nil {
		return nil, fmt.Errorf("%w: pitch tracking %q: %w", ErrInput, input, err)
	}

	r.logger.Info("analysis", "frames", len(f0))

	seq, err := r.analyzer.Analyze(audio.Samples, audio.SampleRate, f0, r.cfg.HopSize, r.cfg.AnalysisConfig(audio.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("%w: analysis %q: %w", ErrInput, input, err)
	}

	if audio.BitDepth > 0 {
		seq.BitDepth = audio.BitDepth
	}

	return seq, nil
}
