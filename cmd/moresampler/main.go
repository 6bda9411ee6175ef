// Command moresampler is an UTAU-compatible resampler.
//
// Usage:
//
//	moresampler [flags] <in> <out> <note> <velocity> <flags> <offset> <length> <consonant> <cutoff> <volume> <modulation> <tempo> <pitch>
//
// The host calls it once per note. The analysis of every sample is cached
// next to it and reused on later calls.
//
// Examples:
//
//	moresampler ka.wav out.wav A4 100 Mt20P86 120 500 80 -300 100 0 !120 AA#20#
//	moresampler -config moresampler.yaml -log-level debug ka.wav out.wav C4 100 "" 0 400 60 0 100 0 120 ""
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cwbudde/algo-resampler/resampler"
)

const version = "0.3.0"

// configEnv names the environment variable consulted when -config is unset.
const configEnv = "MORESAMPLER_CONFIG"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("moresampler", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML configuration file (default $"+configEnv+")")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: moresampler [flags] <in> <out> <note> <velocity> <flags> <offset> <length> <consonant> <cutoff> <volume> <modulation> <tempo> <pitch>\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}

	fmt.Fprintf(stdout, "moresampler version %s\n", version)

	rest := fs.Args()
	switch len(rest) {
	case 0:
		fmt.Fprintln(stdout, "moresampler is meant to be called by UTAU or OpenUtau.")
		return 1
	case 1:
		fmt.Fprintln(stdout, "autolabeling is not supported.")
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if *logLevel != "" {
		cfg.LogLevel = resampler.LogLevel(*logLevel)
		if !cfg.LogLevel.IsValid() {
			fmt.Fprintf(stderr, "error: invalid log level %q\n", *logLevel)
			return 1
		}
	}

	logger := newLogger(stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	req, err := resampler.ParseArgs(rest)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	r := resampler.New(resampler.WithLogger(logger), resampler.WithConfig(*cfg))
	if err := r.Resample(req); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	return 0
}

// loadConfig reads the configuration from path, or from $MORESAMPLER_CONFIG
// when path is empty. Without either the defaults apply.
func loadConfig(path string) (*resampler.Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(configEnv)
	}

	if path == "" {
		cfg := resampler.DefaultConfig()
		return &cfg, nil
	}

	cfg, err := resampler.LoadConfig(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		def := resampler.DefaultConfig()
		return &def, nil
	}

	return cfg, err
}

func newLogger(w io.Writer, level resampler.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case resampler.LogDebug:
		lvl = slog.LevelDebug
	case resampler.LogWarn:
		lvl = slog.LevelWarn
	case resampler.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
