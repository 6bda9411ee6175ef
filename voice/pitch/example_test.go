package pitch_test

import (
	"fmt"

	"github.com/cwbudde/algo-resampler/voice/pitch"
)

func ExampleTranspose() {
	offsets := []float64{0, 0}
	pitch.Transpose(offsets, 120)
	fmt.Println(offsets)
	// Output: [1 1]
}
