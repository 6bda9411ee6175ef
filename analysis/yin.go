package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

const (
	// DefaultYINThreshold is the absolute threshold on the cumulative mean
	// normalized difference below which the first dip is taken as the period.
	DefaultYINThreshold = 0.15
	// DefaultUnvoicedThreshold marks a frame unvoiced when even the best dip
	// stays above it.
	DefaultUnvoicedThreshold = 0.35

	silenceFloor = 1e-10
)

// YIN estimates a fundamental frequency track with the YIN algorithm. The
// difference function is computed from an FFT cross-correlation per frame.
type YIN struct {
	threshold float64
	unvoiced  float64
}

// YINOption configures a [YIN] tracker.
type YINOption func(*YIN)

// WithThreshold sets the dip threshold. Values outside (0, 1) are ignored.
func WithThreshold(v float64) YINOption {
	return func(y *YIN) {
		if v > 0 && v < 1 {
			y.threshold = v
		}
	}
}

// WithUnvoicedThreshold sets the voicing decision threshold. Values outside
// (0, 1] are ignored.
func WithUnvoicedThreshold(v float64) YINOption {
	return func(y *YIN) {
		if v > 0 && v <= 1 {
			y.unvoiced = v
		}
	}
}

// NewYIN returns a tracker with the default thresholds.
func NewYIN(opts ...YINOption) *YIN {
	y := &YIN{threshold: DefaultYINThreshold, unvoiced: DefaultUnvoicedThreshold}
	for _, opt := range opts {
		if opt != nil {
			opt(y)
		}
	}

	return y
}

// yinState holds the per-call buffers of a track.
type yinState struct {
	plan    *algofft.Plan[complex128]
	seg     []float64
	a, b    []complex128
	diff    []float64
	cmnd    []float64
	window  int
	tauMin  int
	tauMax  int
	rate    float64
	minFreq float64
	maxFreq float64
}

// Track returns one F0 value per hop (frame i centered on sample i*hop),
// 0 for unvoiced frames.
func (y *YIN) Track(x []float64, sampleRate, hop int, fmin, fmax float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrSilent
	}

	if err := validateRate(sampleRate, hop); err != nil {
		return nil, err
	}

	if err := validateRange(sampleRate, fmin, fmax); err != nil {
		return nil, err
	}

	tauMax := int(math.Ceil(float64(sampleRate) / fmin))
	st := &yinState{
		window:  tauMax,
		tauMin:  max(int(math.Floor(float64(sampleRate)/fmax)), 2),
		tauMax:  tauMax,
		rate:    float64(sampleRate),
		minFreq: fmin,
		maxFreq: fmax,
	}

	n := st.window + st.tauMax + 1
	size := nextPow2(n)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("yin: failed to create FFT plan: %w", err)
	}

	st.plan = plan
	st.seg = make([]float64, n)
	st.a = make([]complex128, size)
	st.b = make([]complex128, size)
	st.diff = make([]float64, st.tauMax+1)
	st.cmnd = make([]float64, st.tauMax+1)

	f0 := make([]float64, len(x)/hop+1)
	for i := range f0 {
		start := i*hop - n/2
		for j := range st.seg {
			k := start + j
			if k >= 0 && k < len(x) {
				st.seg[j] = x[k]
			} else {
				st.seg[j] = 0
			}
		}

		f, err := y.estimate(st)
		if err != nil {
			return nil, fmt.Errorf("yin: frame %d: %w", i, err)
		}

		f0[i] = f
	}

	return f0, nil
}

func (y *YIN) estimate(st *yinState) (float64, error) {
	w := st.window
	seg := st.seg

	e0 := 0.0
	for j := range w {
		e0 += seg[j] * seg[j]
	}

	if e0 < silenceFloor*float64(w) {
		return 0, nil
	}

	clear(st.a)
	clear(st.b)

	for j, v := range seg {
		if j < w {
			st.a[j] = complex(v, 0)
		}

		st.b[j] = complex(v, 0)
	}

	if err := st.plan.Forward(st.a, st.a); err != nil {
		return 0, err
	}

	if err := st.plan.Forward(st.b, st.b); err != nil {
		return 0, err
	}

	for k := range st.a {
		st.a[k] = cmplx.Conj(st.a[k]) * st.b[k]
	}

	if err := st.plan.Inverse(st.a, st.a); err != nil {
		return 0, err
	}

	// d(tau) = e0 + e(tau) - 2 r(tau), with e(tau) the energy of the lagged
	// window.
	e := e0
	st.diff[0] = 0
	for tau := 1; tau <= st.tauMax; tau++ {
		e += seg[tau+w-1]*seg[tau+w-1] - seg[tau-1]*seg[tau-1]
		st.diff[tau] = math.Max(e0+e-2*real(st.a[tau]), 0)
	}

	st.cmnd[0] = 1
	running := 0.0
	for tau := 1; tau <= st.tauMax; tau++ {
		running += st.diff[tau]
		if running > 0 {
			st.cmnd[tau] = st.diff[tau] * float64(tau) / running
		} else {
			st.cmnd[tau] = 1
		}
	}

	tau := -1
	for t := st.tauMin; t <= st.tauMax; t++ {
		if st.cmnd[t] < y.threshold {
			for t+1 <= st.tauMax && st.cmnd[t+1] < st.cmnd[t] {
				t++
			}

			tau = t

			break
		}
	}

	if tau < 0 {
		tau = st.tauMin
		for t := st.tauMin + 1; t <= st.tauMax; t++ {
			if st.cmnd[t] < st.cmnd[tau] {
				tau = t
			}
		}

		if st.cmnd[tau] > y.unvoiced {
			return 0, nil
		}
	}

	period := float64(tau)
	if tau > st.tauMin && tau < st.tauMax {
		offset, _ := parabolicPeak(st.cmnd[tau-1], st.cmnd[tau], st.cmnd[tau+1])
		period += offset
	}

	f := st.rate / period
	if f < st.minFreq || f > st.maxFreq {
		return 0, nil
	}

	return f, nil
}
