package analysis_test

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-resampler/analysis"
	"github.com/cwbudde/algo-resampler/internal/mathx"
	"github.com/cwbudde/algo-resampler/internal/testutil"
	"github.com/cwbudde/algo-resampler/llsm"
)

func constantTrack(n int, f0 float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f0
	}
	return out
}

func TestAnalyzerHarmonicTone(t *testing.T) {
	ampl := []float64{0.5, 0.25, 0.1}
	x := testutil.HarmonicTone(220, testRate, ampl, testRate/2)
	f0 := constantTrack(len(x)/testHop+1, 220)

	seq, err := analysis.NewAnalyzer().Analyze(x, testRate, f0, testHop, llsm.DefaultConfig(0))
	if err != nil {
		t.Fatal(err)
	}
	if err := seq.Validate(); err != nil {
		t.Fatal(err)
	}
	if seq.Len() != len(f0) || seq.SampleRate != testRate {
		t.Fatalf("got %d frames at %d Hz", seq.Len(), seq.SampleRate)
	}
	if math.Abs(seq.Config.Hop-float64(testHop)/testRate) > 1e-15 {
		t.Fatalf("hop = %v", seq.Config.Hop)
	}

	i := seq.Len() / 2
	frame := seq.Frames[i]
	if frame.F0 != 220 || frame.Len() != 100 {
		t.Fatalf("f0 %v with %d harmonics, want 220 with 100", frame.F0, frame.Len())
	}
	for h, want := range ampl {
		if math.Abs(frame.Ampl[h]-want) > 0.05*want {
			t.Fatalf("harmonic %d: amplitude %v, want %v", h, frame.Ampl[h], want)
		}
		// Sines sit a quarter period behind cosines at the frame center.
		omega := 2 * math.Pi * float64(h+1) * 220 / testRate
		wantPhase := mathx.WrapPhase(omega*float64(i*testHop) - math.Pi/2)
		if d := math.Abs(mathx.WrapPhase(frame.Phase[h] - wantPhase)); d > 0.01 {
			t.Fatalf("harmonic %d: phase %v, want %v", h, frame.Phase[h], wantPhase)
		}
	}
	if frame.Ampl[10] > 0.01 {
		t.Fatalf("harmonic 10: amplitude %v on a three-partial tone", frame.Ampl[10])
	}
	if len(frame.Noise.Envelopes) != 4 || len(frame.Noise.PSD) != 64 {
		t.Fatalf("noise shape: %d envelopes, %d psd bins", len(frame.Noise.Envelopes), len(frame.Noise.PSD))
	}
}

func TestAnalyzerNoiseLevel(t *testing.T) {
	const a = 0.3
	x := testutil.DeterministicNoise(7, a, testRate/2)
	f0 := constantTrack(len(x)/testHop+1, 0)

	seq, err := analysis.NewAnalyzer().Analyze(x, testRate, f0, testHop, llsm.DefaultConfig(0))
	if err != nil {
		t.Fatal(err)
	}

	variance := a * a / 3
	frame := seq.Frames[seq.Len()/2]
	if frame.Voiced() || frame.Len() != 0 {
		t.Fatal("noise frame analyzed as voiced")
	}

	mean := 0.0
	for _, db := range frame.Noise.PSD {
		mean += math.Pow(10, db/10)
	}
	mean /= float64(len(frame.Noise.PSD))
	if math.Abs(mean-variance) > 0.2*variance {
		t.Fatalf("mean psd %v, want about %v", mean, variance)
	}
	for c, env := range frame.Noise.Envelopes {
		if math.Abs(env.Edc-math.Sqrt(variance)) > 0.2*math.Sqrt(variance) {
			t.Fatalf("channel %d: edc %v, want about %v", c, env.Edc, math.Sqrt(variance))
		}
	}
}

func TestAnalyzerErrors(t *testing.T) {
	cfg := llsm.DefaultConfig(0)
	if _, err := analysis.NewAnalyzer().Analyze(nil, testRate, []float64{0}, testHop, cfg); !errors.Is(err, analysis.ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
	if _, err := analysis.NewAnalyzer().Analyze([]float64{1}, testRate, nil, testHop, cfg); !errors.Is(err, analysis.ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
	if _, err := analysis.NewAnalyzer(analysis.WithFFTSize(1000)).Analyze([]float64{1}, testRate, []float64{0}, testHop, cfg); err == nil {
		t.Fatal("expected error for non power of two fft size")
	}
}
