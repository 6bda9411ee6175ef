package llsm_test

import (
	"strconv"
	"testing"

	"github.com/cwbudde/algo-resampler/internal/testutil"
	"github.com/cwbudde/algo-resampler/llsm"
)

func BenchmarkInterpolate(b *testing.B) {
	for _, nhar := range []int{20, 80, 200} {
		b.Run("nhar/"+strconv.Itoa(nhar), func(b *testing.B) {
			dst := testutil.SyntheticFrame(220, nhar, 64, 4, 2, 1)
			src := testutil.SyntheticFrame(233, nhar+3, 64, 4, 2, 2)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				llsm.Interpolate(&dst, &src, 0.5)
			}
		})
	}
}
