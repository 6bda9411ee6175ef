package pitchcurve_test

import (
	"fmt"

	"github.com/cwbudde/algo-resampler/voice/pitchcurve"
)

func ExampleDecode() {
	curve := pitchcurve.Decode("AB#2#//", pitchcurve.DefaultCapacity)
	fmt.Println(curve)
	// Output: [1 1 1 -1]
}
