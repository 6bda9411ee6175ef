package cache

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-resampler/llsm"
)

const (
	// Magic opens every cache file.
	Magic = "LLSM2"
	// Version is the only format version this package reads and writes.
	Version = 1
	// DefaultExt is the extension cache files are stored under.
	DefaultExt = ".llsm2"

	// Sanity limits for counts read from disk.
	maxFrames = 1 << 24
	maxCount  = 1 << 20

	// readChunk bounds how much is allocated ahead of the data backing it.
	readChunk = 4096
)

// PathFor returns the cache path for an input audio path by replacing its
// extension with ext.
func PathFor(input, ext string) string {
	if ext == "" {
		ext = DefaultExt
	}

	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

// Save writes seq to path. The data goes to a temporary file in the same
// directory first, so path never holds a partially written cache.
func Save(path string, seq *llsm.Sequence) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("cache: create %q: %w", path, err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, seq); err != nil {
		_ = tmp.Close()
		return err
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("cache: close %q: %w", path, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cache: rename to %q: %w", path, err)
	}

	return nil
}

// Load reads the cache file at path. A missing file yields an error matching
// os.ErrNotExist.
func Load(path string) (*llsm.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %q: %w", path, err)
	}
	defer f.Close()

	seq, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("cache: read %q: %w", path, err)
	}

	return seq, nil
}

// Write serializes seq to w.
func Write(w io.Writer, seq *llsm.Sequence) error {
	if err := seq.Validate(); err != nil {
		return fmt.Errorf("cache: refusing to write invalid sequence: %w", err)
	}

	bw := bufio.NewWriter(w)
	e := &encoder{w: bw}

	e.bytes([]byte(Magic))
	e.int(Version)
	e.int(seq.Len())
	e.int(seq.SampleRate)
	e.int(seq.BitDepth)
	e.config(&seq.Config)

	for i := range seq.Frames {
		e.frame(&seq.Frames[i])
	}

	if e.err != nil {
		return fmt.Errorf("cache: write: %w", e.err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("cache: flush: %w", err)
	}

	return nil
}

// Read deserializes a sequence from r.
func Read(r io.Reader) (*llsm.Sequence, error) {
	d := &decoder{r: bufio.NewReader(r)}

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(d.r, magic); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}

	if string(magic) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrMagic, magic)
	}

	if v := d.int(); d.err == nil && v != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}

	nfrm := d.count(maxFrames)
	seq := &llsm.Sequence{
		SampleRate: d.int(),
		BitDepth:   d.int(),
	}
	seq.Config = d.config()

	if d.err != nil {
		return nil, d.err
	}

	seq.Frames = make([]llsm.Frame, 0, min(nfrm, readChunk))
	for i := range nfrm {
		f := d.frame(seq.Config.Channels())
		if d.err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, d.err)
		}

		seq.Frames = append(seq.Frames, f)
	}

	return seq, nil
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) bytes(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *encoder) int(v int) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, int32(v))
	}
}

func (e *encoder) real(v float64) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, v)
	}
}

func (e *encoder) reals(v []float64) {
	if e.err == nil && len(v) > 0 {
		e.err = binary.Write(e.w, binary.LittleEndian, v)
	}
}

func (e *encoder) config(c *llsm.Config) {
	e.real(c.Hop)
	e.int(c.MaxHarmonics)
	e.int(c.MaxNoiseHarmonics)
	e.int(c.PSDBins)
	e.int(c.Channels())
	e.int(len(c.ChannelFreqs))
	e.reals(c.ChannelFreqs)
	e.real(c.LipRadius)
	e.real(c.F0Refine)
	e.int(c.HarmonicMethod)
	e.real(c.WindowRatio)
}

func (e *encoder) harmonics(h llsm.Harmonics) {
	e.int(h.Len())
	e.reals(h.Ampl)
	e.reals(h.Phase)
}

func (e *encoder) frame(f *llsm.Frame) {
	e.real(f.F0)
	e.harmonics(f.Harmonics)

	e.int(len(f.Noise.PSD))
	e.reals(f.Noise.PSD)

	e.int(len(f.Noise.Envelopes))
	for _, env := range f.Noise.Envelopes {
		e.real(env.Edc)
		e.harmonics(env.Harmonics)
	}
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) fail(err error) {
	if d.err != nil {
		return
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		d.err = fmt.Errorf("%w: truncated", ErrCorrupt)
		return
	}

	d.err = err
}

func (d *decoder) int() int {
	if d.err != nil {
		return 0
	}

	var v int32
	if err := binary.Read(d.r, binary.LittleEndian, &v); err != nil {
		d.fail(err)
		return 0
	}

	return int(v)
}

// count reads a length field and checks it against [0, limit].
func (d *decoder) count(limit int) int {
	n := d.int()
	if d.err == nil && (n < 0 || n > limit) {
		d.fail(fmt.Errorf("%w: count %d out of range", ErrCorrupt, n))
		return 0
	}

	return n
}

func (d *decoder) real() float64 {
	if d.err != nil {
		return 0
	}

	var v float64
	if err := binary.Read(d.r, binary.LittleEndian, &v); err != nil {
		d.fail(err)
		return 0
	}

	return v
}

// reals reads n values in chunks, so a corrupt count fails on the missing
// data before its full size is allocated.
func (d *decoder) reals(n int) []float64 {
	out := make([]float64, 0, min(n, readChunk))
	for len(out) < n && d.err == nil {
		chunk := make([]float64, min(n-len(out), readChunk))
		if err := binary.Read(d.r, binary.LittleEndian, chunk); err != nil {
			d.fail(err)
			break
		}

		out = append(out, chunk...)
	}

	return out
}

func (d *decoder) config() llsm.Config {
	var c llsm.Config

	c.Hop = d.real()
	c.MaxHarmonics = d.int()
	c.MaxNoiseHarmonics = d.int()
	c.PSDBins = d.int()
	channels := d.count(maxCount)
	freqs := d.count(maxCount)
	if d.err == nil && freqs != channels {
		d.fail(fmt.Errorf("%w: %d channel frequencies for %d channels", ErrCorrupt, freqs, channels))
	}
	c.ChannelFreqs = d.reals(freqs)
	c.LipRadius = d.real()
	c.F0Refine = d.real()
	c.HarmonicMethod = d.int()
	c.WindowRatio = d.real()

	return c
}

func (d *decoder) harmonics() llsm.Harmonics {
	n := d.count(maxCount)

	return llsm.Harmonics{Ampl: d.reals(n), Phase: d.reals(n)}
}

func (d *decoder) frame(channels int) llsm.Frame {
	var f llsm.Frame

	f.F0 = d.real()
	f.Harmonics = d.harmonics()
	f.Noise.PSD = d.reals(d.count(maxCount))

	nch := d.count(maxCount)
	if d.err == nil && nch != channels {
		d.fail(fmt.Errorf("%w: %d noise channels, config has %d", ErrCorrupt, nch, channels))
		return f
	}

	f.Noise.Envelopes = make([]llsm.Envelope, nch)
	for c := range f.Noise.Envelopes {
		f.Noise.Envelopes[c].Edc = d.real()
		f.Noise.Envelopes[c].Harmonics = d.harmonics()
	}

	return f
}
