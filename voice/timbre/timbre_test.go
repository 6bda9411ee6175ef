package timbre_test

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-resampler/internal/testutil"
	"github.com/cwbudde/algo-resampler/llsm"
	"github.com/cwbudde/algo-resampler/voice/timbre"
)

func quietFrames() []llsm.Frame {
	frames := []llsm.Frame{
		testutil.SyntheticFrame(200, 30, 8, 1, 0, 1),
		testutil.SyntheticFrame(0, 0, 8, 1, 0, 2),
		testutil.SyntheticFrame(220, 1, 8, 1, 0, 3),
		testutil.SyntheticFrame(240, 12, 8, 1, 0, 4),
	}
	for i := range frames {
		vecmath.ScaleBlockInPlace(frames[i].Ampl, 0.1)
	}
	return frames
}

func TestApplyTensionZeroIsNoop(t *testing.T) {
	frames := quietFrames()
	want := make([]llsm.Frame, len(frames))
	for i := range frames {
		want[i] = frames[i].Clone()
	}

	timbre.ApplyTension(frames, 0)

	for i := range frames {
		testutil.RequireFramesEqual(t, &frames[i], &want[i])
	}
}

func TestApplyTensionPreservesSum(t *testing.T) {
	for _, percent := range []float64{-100, -40, 25, 100} {
		frames := quietFrames()
		before := make([]float64, len(frames))
		for i := range frames {
			before[i] = vecmath.Sum(frames[i].Ampl)
		}

		timbre.ApplyTension(frames, percent)

		for i := range frames {
			after := vecmath.Sum(frames[i].Ampl)
			if math.Abs(after-before[i]) > 1e-9 {
				t.Fatalf("tension %v frame %d: sum %v, want %v", percent, i, after, before[i])
			}
			for j, a := range frames[i].Ampl {
				if a < 0 || a > 1 {
					t.Fatalf("tension %v frame %d harmonic %d: amplitude %v outside [0,1]", percent, i, j, a)
				}
			}
		}
	}
}

func TestApplyTensionTilt(t *testing.T) {
	tilt := func(percent float64) float64 {
		frames := quietFrames()
		timbre.ApplyTension(frames, percent)
		a := frames[0].Ampl
		return a[len(a)-1] / a[0]
	}

	neutral := tilt(0)
	if bright := tilt(60); bright <= neutral {
		t.Fatalf("positive tension did not brighten: %v <= %v", bright, neutral)
	}
	if dark := tilt(-60); dark >= neutral {
		t.Fatalf("negative tension did not darken: %v >= %v", dark, neutral)
	}
}

func TestApplyTensionClampsLoudHarmonics(t *testing.T) {
	f := llsm.Frame{F0: 100, Harmonics: llsm.NewHarmonics(4)}
	copy(f.Ampl, []float64{1, 1, 1, 1})
	frames := []llsm.Frame{f}

	timbre.ApplyTension(frames, 100)

	for j, a := range frames[0].Ampl {
		if a < 0 || a > 1 {
			t.Fatalf("harmonic %d: amplitude %v outside [0,1]", j, a)
		}
	}
}

func withSource(f0 float64, vt []float64) llsm.Frame {
	f := testutil.SyntheticFrame(f0, 4, 8, 1, 0, 0)
	f.Source = &llsm.SourceFilter{Rd: 1, VoicedSpectralPhase: make([]float64, 4), VocalTractMagnitude: vt}
	return f
}

func TestApplyGender(t *testing.T) {
	ramp := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8}

	t.Run("zero is noop", func(t *testing.T) {
		frames := []llsm.Frame{withSource(200, append([]float64(nil), ramp...))}
		timbre.ApplyGender(frames, 0)
		testutil.RequireSliceNearlyEqual(t, frames[0].Source.VocalTractMagnitude, ramp, 0)
	})

	t.Run("positive shifts down", func(t *testing.T) {
		frames := []llsm.Frame{withSource(200, append([]float64(nil), ramp...))}
		timbre.ApplyGender(frames, 100)
		scale := math.Exp2(-0.25)
		got := frames[0].Source.VocalTractMagnitude
		for k, v := range got {
			want := math.Min(float64(k)/scale, 8)
			if math.Abs(v-want) > 1e-12 {
				t.Fatalf("bin %d: got %v, want %v", k, v, want)
			}
		}
	})

	t.Run("negative shifts up", func(t *testing.T) {
		frames := []llsm.Frame{withSource(200, append([]float64(nil), ramp...))}
		timbre.ApplyGender(frames, -100)
		got := frames[0].Source.VocalTractMagnitude
		if got[8] >= 8 || got[8] <= 6 {
			t.Fatalf("top bin = %v, want a value from between bins 6 and 7", got[8])
		}
	})

	t.Run("skips frames without source", func(t *testing.T) {
		frames := []llsm.Frame{testutil.SyntheticFrame(200, 4, 8, 1, 0, 0), testutil.SyntheticFrame(0, 0, 8, 1, 0, 0)}
		timbre.ApplyGender(frames, 50)
		if frames[0].Source != nil || frames[1].Source != nil {
			t.Fatal("source created on a base-layer frame")
		}
	})
}
