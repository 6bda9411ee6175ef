package resampler

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-resampler/llsm"
	"github.com/cwbudde/algo-resampler/llsm/cache"
	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}

	return false
}

// Config holds the process settings of the resampler. Keys missing from a
// YAML file keep their [DefaultConfig] values.
type Config struct {
	LogLevel LogLevel `yaml:"log_level"`

	// HopSize is the analysis hop in samples for new analyses. Cached
	// sequences keep the hop they were analyzed with.
	HopSize int `yaml:"hop_size"`

	// F0Min and F0Max bound the pitch tracker in Hz.
	F0Min float64 `yaml:"f0_min"`
	F0Max float64 `yaml:"f0_max"`

	// FFTSize is the frame length of the analysis and of the vocal-tract
	// magnitude. It must be a power of two.
	FFTSize int `yaml:"fft_size"`

	// CacheExt replaces the input file's extension to name its cache.
	CacheExt string `yaml:"cache_ext"`

	// TargetPeak is the peak level reached by full normalization.
	TargetPeak float64 `yaml:"target_peak"`

	MaxHarmonics      int       `yaml:"max_harmonics"`
	MaxNoiseHarmonics int       `yaml:"max_noise_harmonics"`
	PSDBins           int       `yaml:"psd_bins"`
	NoiseChannels     []float64 `yaml:"noise_channels"`

	// MaxNoteSeconds is the longest note a request may ask for.
	MaxNoteSeconds float64 `yaml:"max_note_seconds"`

	// ReanalyzeOnCacheError rebuilds the analysis instead of failing when a
	// cache file exists but cannot be read.
	ReanalyzeOnCacheError bool `yaml:"reanalyze_on_cache_error"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	a := llsm.DefaultConfig(0)

	return Config{
		LogLevel:          LogInfo,
		HopSize:           128,
		F0Min:             50,
		F0Max:             800,
		FFTSize:           2048,
		CacheExt:          cache.DefaultExt,
		TargetPeak:        0.6,
		MaxNoteSeconds:    60,
		MaxHarmonics:      a.MaxHarmonics,
		MaxNoiseHarmonics: a.MaxNoiseHarmonics,
		PSDBins:           a.PSDBins,
		NoiseChannels:     a.ChannelFreqs,
	}
}

// AnalysisConfig returns the analysis settings for a source at sampleRate.
func (c *Config) AnalysisConfig(sampleRate int) llsm.Config {
	a := llsm.DefaultConfig(float64(c.HopSize) / float64(sampleRate))
	a.MaxHarmonics = c.MaxHarmonics
	a.MaxNoiseHarmonics = c.MaxNoiseHarmonics
	a.PSDBins = c.PSDBins
	a.ChannelFreqs = append([]float64(nil), c.NoiseChannels...)

	return a
}

// LoadConfig reads the YAML file at path on top of [DefaultConfig] and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadConfigFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}

	return cfg, nil
}

// LoadConfigFromReader decodes a YAML config from r. An empty document
// yields the defaults.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that c contains a coherent set of values. It returns a
// joined error listing every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.LogLevel != "" && !c.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", c.LogLevel))
	}

	if c.HopSize <= 0 {
		errs = append(errs, fmt.Errorf("hop_size must be > 0, got %d", c.HopSize))
	}

	if !(c.F0Min > 0) || !(c.F0Max > c.F0Min) {
		errs = append(errs, fmt.Errorf("f0 range must satisfy 0 < f0_min < f0_max, got [%g, %g]", c.F0Min, c.F0Max))
	}

	if c.FFTSize < 64 || c.FFTSize&(c.FFTSize-1) != 0 {
		errs = append(errs, fmt.Errorf("fft_size must be a power of two >= 64, got %d", c.FFTSize))
	}

	if len(c.CacheExt) < 2 || c.CacheExt[0] != '.' {
		errs = append(errs, fmt.Errorf("cache_ext must start with '.', got %q", c.CacheExt))
	}

	if !(c.TargetPeak > 0) || c.TargetPeak > 1 {
		errs = append(errs, fmt.Errorf("target_peak must be in (0, 1], got %g", c.TargetPeak))
	}

	if !(c.MaxNoteSeconds > 0) || math.IsInf(c.MaxNoteSeconds, 0) {
		errs = append(errs, fmt.Errorf("max_note_seconds must be positive and finite, got %g", c.MaxNoteSeconds))
	}

	if c.MaxHarmonics <= 0 {
		errs = append(errs, fmt.Errorf("max_harmonics must be > 0, got %d", c.MaxHarmonics))
	}

	if c.MaxNoiseHarmonics < 0 {
		errs = append(errs, fmt.Errorf("max_noise_harmonics must be >= 0, got %d", c.MaxNoiseHarmonics))
	}

	if c.PSDBins <= 0 {
		errs = append(errs, fmt.Errorf("psd_bins must be > 0, got %d", c.PSDBins))
	}

	for i, f := range c.NoiseChannels {
		if !(f > 0) || (i > 0 && f <= c.NoiseChannels[i-1]) {
			errs = append(errs, fmt.Errorf("noise_channels must be positive and increasing, got %v", c.NoiseChannels))
			break
		}
	}

	return errors.Join(errs...)
}
