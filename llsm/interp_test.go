package llsm_test

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-resampler/internal/testutil"
	"github.com/cwbudde/algo-resampler/llsm"
)

func angleDistance(a, b float64) float64 {
	return math.Abs(math.Remainder(a-b, 2*math.Pi))
}

func TestLerpAngleMidpoint(t *testing.T) {
	const eps = 0.01
	for _, theta := range []float64{0, 1, -2, math.Pi / 2, math.Pi, -math.Pi, 3} {
		got := llsm.LerpAngle(theta-eps, theta+eps, 0.5)
		if d := angleDistance(got, theta); d > 1e-9 {
			t.Fatalf("theta=%v: got %v (distance %v)", theta, got, d)
		}
	}
}

func TestLerpAngleSeam(t *testing.T) {
	got := llsm.LerpAngle(math.Pi-0.01, -math.Pi+0.01, 0.5)
	if d := angleDistance(got, math.Pi); d > 1e-9 {
		t.Fatalf("got %v, want ~pi", got)
	}
	if math.Abs(got) < 1 {
		t.Fatalf("got %v, blended through zero", got)
	}
}

func TestInterpolateEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		dst, src llsm.Frame
	}{
		{
			name: "voiced more harmonics in src",
			dst:  testutil.SyntheticFrame(200, 10, 8, 2, 1, 1),
			src:  testutil.SyntheticFrame(220, 14, 8, 2, 3, 2),
		},
		{
			name: "voiced more harmonics in dst",
			dst:  testutil.SyntheticFrame(200, 14, 8, 2, 3, 1),
			src:  testutil.SyntheticFrame(220, 6, 8, 2, 0, 2),
		},
		{
			name: "voiced to unvoiced",
			dst:  testutil.SyntheticFrame(200, 10, 8, 2, 1, 1),
			src:  testutil.SyntheticFrame(0, 0, 8, 2, 0, 2),
		},
		{
			name: "unvoiced to voiced",
			dst:  testutil.SyntheticFrame(0, 0, 8, 0, 0, 1),
			src:  testutil.SyntheticFrame(300, 5, 4, 3, 2, 2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.dst.Source = &llsm.SourceFilter{Rd: 1.2, VoicedSpectralPhase: []float64{0, 1}, VocalTractMagnitude: []float64{-10, -20, -30}}
			if tt.src.Voiced() {
				tt.src.Source = &llsm.SourceFilter{Rd: 0.8, VoicedSpectralPhase: []float64{0.5, 1, 2}, VocalTractMagnitude: []float64{-5, -6}}
			}
			tt.src.Residual = []float64{1, 2, 3}

			zero := tt.dst.Clone()
			llsm.Interpolate(&zero, &tt.src, 0)
			testutil.RequireFramesEqual(t, &zero, &tt.dst)

			one := tt.dst.Clone()
			llsm.Interpolate(&one, &tt.src, 1)
			testutil.RequireFramesEqual(t, &one, &tt.src)

			// The copy must not alias src.
			if len(tt.src.Noise.PSD) > 0 {
				before := one.Noise.PSD[0]
				tt.src.Noise.PSD[0] += 100
				if one.Noise.PSD[0] != before {
					t.Fatal("interpolated frame aliases src PSD")
				}
			}
		})
	}
}

func TestInterpolateBothVoiced(t *testing.T) {
	dst := testutil.SyntheticFrame(200, 4, 4, 2, 1, 1)
	src := testutil.SyntheticFrame(300, 6, 4, 2, 3, 2)
	dst.Source = &llsm.SourceFilter{Rd: 1, VoicedSpectralPhase: []float64{0, 0}, VocalTractMagnitude: []float64{-20, -40}}
	src.Source = &llsm.SourceFilter{Rd: 2, VoicedSpectralPhase: []float64{1, 1, 1}, VocalTractMagnitude: []float64{-40, -60}}
	want := src.Clone()
	orig := dst.Clone()

	llsm.Interpolate(&dst, &src, 0.5)

	if dst.F0 != 250 {
		t.Fatalf("F0 = %v, want 250", dst.F0)
	}
	if dst.Source.Rd != 1.5 {
		t.Fatalf("Rd = %v, want 1.5", dst.Source.Rd)
	}
	testutil.RequireSliceNearlyEqual(t, dst.Source.VocalTractMagnitude, []float64{-30, -50}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, dst.Source.VoicedSpectralPhase, []float64{0.5, 0.5, 1}, 1e-12)

	if dst.Len() != 6 {
		t.Fatalf("harmonic count = %d, want 6", dst.Len())
	}
	for h := range 4 {
		wantA := (orig.Ampl[h] + want.Ampl[h]) / 2
		if math.Abs(dst.Ampl[h]-wantA) > 1e-12 {
			t.Fatalf("ampl[%d] = %v, want %v", h, dst.Ampl[h], wantA)
		}
	}
	for h := 4; h < 6; h++ {
		if dst.Ampl[h] != want.Ampl[h] || dst.Phase[h] != want.Phase[h] {
			t.Fatalf("harmonic %d not copied verbatim", h)
		}
	}

	for c, e := range dst.Noise.Envelopes {
		if e.Len() != 3 {
			t.Fatalf("channel %d envelope harmonics = %d, want 3", c, e.Len())
		}
		if e.Ampl[2] != want.Noise.Envelopes[c].Ampl[2] {
			t.Fatalf("channel %d extra envelope harmonic not copied", c)
		}
	}
}

func TestInterpolateKeepsLongerDestination(t *testing.T) {
	dst := testutil.SyntheticFrame(200, 8, 4, 1, 4, 1)
	src := testutil.SyntheticFrame(200, 3, 4, 1, 1, 2)
	orig := dst.Clone()

	llsm.Interpolate(&dst, &src, 0.3)

	if dst.Len() != 8 || dst.Noise.Envelopes[0].Len() != 4 {
		t.Fatalf("destination shrank: %d harmonics, %d envelope harmonics", dst.Len(), dst.Noise.Envelopes[0].Len())
	}
	for h := 3; h < 8; h++ {
		if dst.Ampl[h] != orig.Ampl[h] {
			t.Fatalf("extra destination harmonic %d modified", h)
		}
	}
}

func TestInterpolatePartialVoicing(t *testing.T) {
	voiced := testutil.SyntheticFrame(200, 4, 4, 1, 0, 1)
	voiced.Source = &llsm.SourceFilter{Rd: 1, VocalTractMagnitude: []float64{-10, -79}}
	unvoiced := testutil.SyntheticFrame(0, 0, 4, 1, 0, 2)

	t.Run("unvoiced destination before crossover", func(t *testing.T) {
		dst := unvoiced.Clone()
		llsm.Interpolate(&dst, &voiced, 0.25)
		if dst.Voiced() || dst.Source != nil {
			t.Fatalf("dst became voiced at ratio 0.25: f0=%v", dst.F0)
		}
	})

	t.Run("unvoiced destination after crossover", func(t *testing.T) {
		dst := unvoiced.Clone()
		llsm.Interpolate(&dst, &voiced, 0.5)
		if dst.F0 != 200 {
			t.Fatalf("F0 = %v, want 200", dst.F0)
		}
		fade := 20 * math.Log10(0.5)
		testutil.RequireSliceNearlyEqual(t, dst.Source.VocalTractMagnitude, []float64{-10 + fade, llsm.VocalTractFloorDB}, 1e-12)
		if voiced.Source.VocalTractMagnitude[0] != -10 {
			t.Fatal("src vocal tract modified")
		}
	})

	t.Run("voiced destination fades out", func(t *testing.T) {
		dst := voiced.Clone()
		llsm.Interpolate(&dst, &unvoiced, 0.25)
		if dst.F0 != 200 {
			t.Fatalf("F0 = %v, want 200", dst.F0)
		}
		want := -10 + 20*math.Log10(0.75)
		if math.Abs(dst.Source.VocalTractMagnitude[0]-want) > 1e-12 {
			t.Fatalf("vt = %v, want %v", dst.Source.VocalTractMagnitude[0], want)
		}

		dst = voiced.Clone()
		llsm.Interpolate(&dst, &unvoiced, 0.75)
		if dst.Voiced() {
			t.Fatalf("F0 = %v, want unvoiced after crossover", dst.F0)
		}
	})
}

func TestInterpolateResidual(t *testing.T) {
	dst := testutil.SyntheticFrame(100, 1, 1, 0, 0, 1)
	src := testutil.SyntheticFrame(100, 1, 1, 0, 0, 2)
	src.Residual = []float64{2, 4}

	llsm.Interpolate(&dst, &src, 0.5)
	testutil.RequireSliceNearlyEqual(t, dst.Residual, []float64{2, 4}, 0)

	dst.Residual = []float64{0, 0}
	llsm.Interpolate(&dst, &src, 0.5)
	testutil.RequireSliceNearlyEqual(t, dst.Residual, []float64{1, 2}, 1e-12)
}
