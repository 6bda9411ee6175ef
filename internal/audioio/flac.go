package audioio

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// ReadFLAC decodes a FLAC file, averaging all channels to mono and scaling
// samples to [-1, 1) by the stream's bit depth.
func ReadFLAC(path string) (*Audio, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audioio: open %q: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	if info.NChannels == 0 || info.BitsPerSample == 0 {
		return nil, fmt.Errorf("audioio: %q: invalid stream info", path)
	}

	scale := 1 / float64(int64(1)<<(info.BitsPerSample-1))
	out := &Audio{
		Samples:    make([]float64, 0, info.NSamples),
		SampleRate: int(info.SampleRate),
		BitDepth:   int(info.BitsPerSample),
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("audioio: decode %q: %w", path, err)
		}

		n := len(frame.Subframes[0].Samples)
		for i := range n {
			sum := 0.0
			for _, sub := range frame.Subframes {
				sum += float64(sub.Samples[i])
			}

			out.Samples = append(out.Samples, sum/float64(len(frame.Subframes))*scale)
		}
	}

	return out, nil
}
