package audioio_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-resampler/internal/audioio"
	"github.com/cwbudde/algo-resampler/internal/testutil"
)

func TestWAVRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		eps      float64
	}{
		{"16 bit", 16, 1.0 / (1 << 13)},
		{"24 bit", 24, 1.0 / (1 << 20)},
		{"fallback", 12, 1.0 / (1 << 13)},
	}

	x := testutil.DeterministicSine(440, 44100, 0.8, 4410)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.wav")
			if err := audioio.WriteWAV(path, x, 44100, tt.bitDepth); err != nil {
				t.Fatalf("WriteWAV: %v", err)
			}

			got, err := audioio.Read(path)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got.SampleRate != 44100 {
				t.Fatalf("sample rate %d", got.SampleRate)
			}
			testutil.RequireSliceNearlyEqual(t, got.Samples, x, tt.eps)
		})
	}
}

func TestWriteWAVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.wav")
	if err := audioio.WriteWAV(path, []float64{0, 0.5, -0.5}, 22050, 16); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "note.wav" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}

	if err := audioio.WriteWAV(filepath.Join(dir, "bad.wav"), nil, 0, 16); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := audioio.Read(filepath.Join(dir, "a.mp3")); !errors.Is(err, audioio.ErrUnsupported) {
		t.Fatalf("mp3: err = %v, want ErrUnsupported", err)
	}
	if _, err := audioio.Read(filepath.Join(dir, "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing wav: err = %v", err)
	}
	if _, err := audioio.Read(filepath.Join(dir, "missing.flac")); err == nil {
		t.Fatal("missing flac: expected error")
	}

	garbage := filepath.Join(dir, "garbage.wav")
	if err := os.WriteFile(garbage, []byte("not a wave file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := audioio.Read(garbage); err == nil {
		t.Fatal("garbage wav: expected error")
	}
}
