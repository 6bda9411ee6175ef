package llsm_test

import (
	"testing"

	"github.com/cwbudde/algo-resampler/internal/testutil"
	"github.com/cwbudde/algo-resampler/llsm"
)

func TestSequenceSliceIsDeep(t *testing.T) {
	seq := testutil.SyntheticSequence(10, 2, 220)

	sub, err := seq.Slice(3, 7)
	if err != nil {
		t.Fatalf("Slice() error = %v", err)
	}
	if sub.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", sub.Len())
	}
	testutil.RequireFramesEqual(t, &sub.Frames[0], &seq.Frames[3])

	sub.Frames[0].Ampl[0] = 42
	sub.Config.ChannelFreqs[0] = 1
	if seq.Frames[3].Ampl[0] == 42 || seq.Config.ChannelFreqs[0] == 1 {
		t.Fatal("Slice shares memory with the source sequence")
	}
}

func TestSequenceSliceRejectsBadRegion(t *testing.T) {
	seq := testutil.SyntheticSequence(5, 0, 220)
	for _, r := range [][2]int{{-1, 2}, {2, 2}, {3, 6}, {4, 1}} {
		if _, err := seq.Slice(r[0], r[1]); err == nil {
			t.Fatalf("Slice(%d, %d) succeeded", r[0], r[1])
		}
	}
}

func TestSequenceValidate(t *testing.T) {
	seq := testutil.SyntheticSequence(4, 1, 220)
	if err := seq.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	bad := seq.Clone()
	bad.Frames[2].Phase = bad.Frames[2].Phase[:1]
	if err := bad.Validate(); err == nil {
		t.Fatal("expected harmonic pair error")
	}

	bad = seq.Clone()
	bad.Frames[1].Noise.Envelopes = bad.Frames[1].Noise.Envelopes[:1]
	if err := bad.Validate(); err == nil {
		t.Fatal("expected channel count error")
	}
}

func TestNewUnvoicedFrame(t *testing.T) {
	f := llsm.NewUnvoicedFrame(3, 2, -100)
	if f.Voiced() || f.Len() != 0 || len(f.Noise.PSD) != 3 || len(f.Noise.Envelopes) != 2 {
		t.Fatalf("unexpected frame %+v", f)
	}
}
