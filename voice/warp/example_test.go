package warp_test

import (
	"fmt"

	"github.com/cwbudde/algo-resampler/internal/testutil"
	"github.com/cwbudde/algo-resampler/voice/warp"
)

func ExampleStretch() {
	region := testutil.SyntheticSequence(40, 0, 220).Frames

	res := warp.Stretch(region, warp.Params{
		Start:     0,
		End:       len(region),
		Total:     120,
		Consonant: 12,
		Velocity:  warp.VelocityFactor(200),
	})

	fmt.Println(len(res.Frames), res.Consonant)
	// Output: 120 6
}
