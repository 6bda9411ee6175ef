package resampler

import "errors"

var (
	// ErrInput reports a malformed request or unreadable source audio.
	ErrInput = errors.New("resampler: invalid input")
	// ErrCache reports a cache file that exists but cannot be used.
	ErrCache = errors.New("resampler: unusable analysis cache")
	// ErrSynthesis reports a synthesizer that failed or produced no signal.
	ErrSynthesis = errors.New("resampler: synthesis failed")
)
