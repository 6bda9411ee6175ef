package analysis

import (
	"math"
	"sort"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)

	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}

	return buf.data[:n], buf.data[n:need], buf
}

// power writes |in[k]|^2 into dst for the first len(dst) bins.
func power(dst []float64, in []complex128) {
	re, im, buf := getScratch(len(dst))
	for i := range dst {
		re[i] = real(in[i])
		im[i] = imag(in[i])
	}

	vecmath.Power(dst, re, im)
	scratchPool.Put(buf)
}

// interpolateLinear evaluates the piecewise-linear function through (x, y) at
// q, holding the end values outside the range. x must be increasing.
func interpolateLinear(x, y []float64, q float64) float64 {
	if q <= x[0] {
		return y[0]
	}

	last := len(x) - 1
	if q >= x[last] {
		return y[last]
	}

	j := sort.SearchFloat64s(x, q)
	t := (q - x[j-1]) / (x[j] - x[j-1])

	return y[j-1] + t*(y[j]-y[j-1])
}

// parabolicPeak fits a parabola through three equally spaced values around a
// local extremum and returns the vertex offset in [-0.5, 0.5] and its value.
func parabolicPeak(a, b, c float64) (offset, value float64) {
	den := a - 2*b + c
	if den == 0 {
		return 0, b
	}

	offset = math.Max(-0.5, math.Min(0.5, 0.5*(a-c)/den))

	return offset, b - 0.25*(a-c)*offset
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
