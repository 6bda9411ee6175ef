package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-resampler/llsm"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}

// RequireFramesEqual fails t unless got and want hold bit-identical values in
// every field. nil and empty slices are treated alike.
func RequireFramesEqual(t *testing.T, got, want *llsm.Frame) {
	t.Helper()
	if diff := FrameDiff(got, want); diff != "" {
		t.Fatal(diff)
	}
}

// FrameDiff describes the first difference between a and b, or returns "".
func FrameDiff(a, b *llsm.Frame) string {
	if a.F0 != b.F0 {
		return fmt.Sprintf("f0: %v vs %v", a.F0, b.F0)
	}
	if d := floatsDiff("ampl", a.Ampl, b.Ampl); d != "" {
		return d
	}
	if d := floatsDiff("phase", a.Phase, b.Phase); d != "" {
		return d
	}
	if d := floatsDiff("psd", a.Noise.PSD, b.Noise.PSD); d != "" {
		return d
	}
	if len(a.Noise.Envelopes) != len(b.Noise.Envelopes) {
		return fmt.Sprintf("envelopes: %d vs %d", len(a.Noise.Envelopes), len(b.Noise.Envelopes))
	}
	for c := range a.Noise.Envelopes {
		ea, eb := a.Noise.Envelopes[c], b.Noise.Envelopes[c]
		if ea.Edc != eb.Edc {
			return fmt.Sprintf("channel %d edc: %v vs %v", c, ea.Edc, eb.Edc)
		}
		if d := floatsDiff(fmt.Sprintf("channel %d ampl", c), ea.Ampl, eb.Ampl); d != "" {
			return d
		}
		if d := floatsDiff(fmt.Sprintf("channel %d phase", c), ea.Phase, eb.Phase); d != "" {
			return d
		}
	}
	if (a.Source == nil) != (b.Source == nil) {
		return fmt.Sprintf("source presence: %v vs %v", a.Source != nil, b.Source != nil)
	}
	if a.Source != nil {
		if a.Source.Rd != b.Source.Rd {
			return fmt.Sprintf("rd: %v vs %v", a.Source.Rd, b.Source.Rd)
		}
		if d := floatsDiff("vsphse", a.Source.VoicedSpectralPhase, b.Source.VoicedSpectralPhase); d != "" {
			return d
		}
		if d := floatsDiff("vtmagn", a.Source.VocalTractMagnitude, b.Source.VocalTractMagnitude); d != "" {
			return d
		}
	}
	if (a.Residual == nil) != (b.Residual == nil) {
		return fmt.Sprintf("residual presence: %v vs %v", a.Residual != nil, b.Residual != nil)
	}
	return floatsDiff("residual", a.Residual, b.Residual)
}

func floatsDiff(name string, a, b []float64) string {
	if len(a) != len(b) {
		return fmt.Sprintf("%s: length %d vs %d", name, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Sprintf("%s[%d]: %v vs %v", name, i, a[i], b[i])
		}
	}
	return ""
}
