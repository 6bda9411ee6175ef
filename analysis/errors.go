package analysis

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSilent reports input that carries no samples to track.
	ErrSilent = errors.New("analysis: no signal")
	// ErrEmpty reports an empty waveform, F0 track or frame sequence.
	ErrEmpty = errors.New("analysis: empty input")
)

func validateRate(sampleRate, hop int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("analysis: sample rate must be > 0: %d", sampleRate)
	}

	if hop <= 0 {
		return fmt.Errorf("analysis: hop size must be > 0: %d", hop)
	}

	return nil
}

func validateRange(sampleRate int, fmin, fmax float64) error {
	if !(fmin > 0) || math.IsInf(fmin, 0) {
		return fmt.Errorf("analysis: fmin must be positive and finite: %f", fmin)
	}

	if !(fmax > fmin) || fmax >= float64(sampleRate)/2 {
		return fmt.Errorf("analysis: fmax must be in (%f, %f): %f", fmin, float64(sampleRate)/2, fmax)
	}

	return nil
}

func validateFFTSize(size int) error {
	if size < 64 || size&(size-1) != 0 {
		return fmt.Errorf("analysis: fft size must be a power of two >= 64: %d", size)
	}

	return nil
}
