package resampler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfigFromReader(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(`
log_level: debug
hop_size: 256
noise_channels: [1000, 3000]
reanalyze_on_cache_error: true
`))
	if err != nil {
		t.Fatalf("LoadConfigFromReader: %v", err)
	}

	if cfg.LogLevel != LogDebug || cfg.HopSize != 256 || !cfg.ReanalyzeOnCacheError {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.NoiseChannels) != 2 || cfg.NoiseChannels[1] != 3000 {
		t.Fatalf("noise_channels = %v", cfg.NoiseChannels)
	}

	def := DefaultConfig()
	if cfg.FFTSize != def.FFTSize || cfg.F0Max != def.F0Max || cfg.CacheExt != def.CacheExt {
		t.Fatalf("missing keys lost their defaults: %+v", cfg)
	}
}

func TestLoadConfigEmptyDocument(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadConfigFromReader: %v", err)
	}
	if cfg.HopSize != DefaultConfig().HopSize {
		t.Fatalf("hop_size = %d", cfg.HopSize)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	if _, err := LoadConfigFromReader(strings.NewReader("hop: 128\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	cfg.HopSize = 0
	cfg.F0Min = 900
	cfg.FFTSize = 1000
	cfg.CacheExt = "llsm2"
	cfg.TargetPeak = 2
	cfg.PSDBins = 0
	cfg.MaxNoteSeconds = 0
	cfg.NoiseChannels = []float64{4000, 2000}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	for _, key := range []string{"log_level", "hop_size", "f0 range", "fft_size", "cache_ext", "target_peak", "max_note_seconds", "psd_bins", "noise_channels"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q does not mention %s", err, key)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moresampler.yaml")
	if err := os.WriteFile(path, []byte("target_peak: 0.8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.TargetPeak != 0.8 {
		t.Fatalf("target_peak = %v", cfg.TargetPeak)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: err = %v", err)
	}
}

func TestLoadConfigErrorPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moresampler.yaml")
	if err := os.WriteFile(path, []byte("target_peak: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if n := strings.Count(err.Error(), "config:"); n != 1 {
		t.Fatalf("error %q has %d config prefixes, want 1", err, n)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("error %q does not name the file", err)
	}
}

func TestAnalysisConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHarmonics = 40
	a := cfg.AnalysisConfig(32000)

	if a.Hop != 128.0/32000 || a.MaxHarmonics != 40 || a.Channels() != len(cfg.NoiseChannels) {
		t.Fatalf("AnalysisConfig = %+v", a)
	}

	a.ChannelFreqs[0] = -1
	if cfg.NoiseChannels[0] == -1 {
		t.Fatal("AnalysisConfig shares channel frequencies with Config")
	}
}
