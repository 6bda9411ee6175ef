package audioio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupported reports a file extension no reader handles.
var ErrUnsupported = errors.New("audioio: unsupported audio format")

// Audio is a mono waveform with the format it was stored in.
type Audio struct {
	Samples    []float64
	SampleRate int
	BitDepth   int
}

// Read loads path as mono audio, choosing the decoder from the extension.
func Read(path string) (*Audio, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return ReadWAV(path)
	case ".flac":
		return ReadFLAC(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, path)
	}
}
