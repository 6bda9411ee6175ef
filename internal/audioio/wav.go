package audioio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

const (
	streamChunk      = 512
	defaultPrecision = 2
)

// ReadWAV decodes a PCM WAV file, averaging stereo input to mono.
func ReadWAV(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audioio: open %q: %w", path, err)
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("audioio: decode %q: %w", path, err)
	}

	out := &Audio{
		Samples:    make([]float64, 0, stream.Len()),
		SampleRate: int(format.SampleRate),
		BitDepth:   format.Precision * 8,
	}

	buf := make([][2]float64, streamChunk)
	for {
		n, ok := stream.Stream(buf)
		for _, s := range buf[:n] {
			out.Samples = append(out.Samples, (s[0]+s[1])/2)
		}

		if !ok {
			break
		}
	}

	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("audioio: decode %q: %w", path, err)
	}

	return out, nil
}

// WriteWAV encodes samples as a mono PCM WAV file. bitDepth selects 8, 16
// or 24 bit output; anything else falls back to 16 bit. The file is written
// next to path under a temporary name and renamed into place, so a failed
// write leaves no output.
func WriteWAV(path string, samples []float64, sampleRate, bitDepth int) (err error) {
	if sampleRate <= 0 {
		return fmt.Errorf("audioio: sample rate must be > 0: %d", sampleRate)
	}

	precision := bitDepth / 8
	if precision < 1 || precision > 3 {
		precision = defaultPrecision
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("audioio: create %q: %w", path, err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	pos := 0
	streamer := beep.StreamerFunc(func(buf [][2]float64) (n int, ok bool) {
		if pos >= len(samples) {
			return 0, false
		}

		n = copy2(buf, samples[pos:])
		pos += n

		return n, true
	})

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   precision,
	}

	if err = wav.Encode(tmp, streamer, format); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("audioio: encode %q: %w", path, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("audioio: close %q: %w", path, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("audioio: rename to %q: %w", path, err)
	}

	return nil
}

// copy2 duplicates mono samples into both channels of buf.
func copy2(buf [][2]float64, mono []float64) int {
	n := min(len(buf), len(mono))
	for i, v := range mono[:n] {
		buf[i] = [2]float64{v, v}
	}

	return n
}
