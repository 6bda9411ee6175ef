// Command llsminfo prints a summary of cached sample analyses.
//
// Usage:
//
//	llsminfo [flags] file.llsm2 [file.llsm2 ...]
//
// Examples:
//
//	llsminfo voicebank/*.llsm2
//	llsminfo -frames ka.llsm2
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-resampler/llsm"
	"github.com/cwbudde/algo-resampler/llsm/cache"
	"golang.org/x/sync/errgroup"
)

// maxOpen bounds the number of cache files decoded at once.
const maxOpen = 8

type summary struct {
	path      string
	frames    int
	rate      int
	bitDepth  int
	hopMs     float64
	channels  int
	voicedPct float64
	meanF0    float64
	maxNhar   int
	seq       *llsm.Sequence
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("llsminfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	frames := fs.Bool("frames", false, "also print one row per frame")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: llsminfo [flags] file.llsm2 [file.llsm2 ...]\n\n")
		fmt.Fprintf(stderr, "Prints a summary of cached sample analyses.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}

	paths := fs.Args()
	if len(paths) == 0 {
		fs.Usage()
		return 1
	}

	summaries, err := loadAll(paths)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if err := printSummaries(stdout, summaries); err != nil {
		fmt.Fprintf(stderr, "error: failed to write output: %v\n", err)
		return 1
	}

	if *frames {
		for _, s := range summaries {
			if err := printFrames(stdout, s); err != nil {
				fmt.Fprintf(stderr, "error: failed to write output: %v\n", err)
				return 1
			}
		}
	}

	return 0
}

// loadAll decodes every path concurrently, keeping the input order.
func loadAll(paths []string) ([]summary, error) {
	out := make([]summary, len(paths))

	var g errgroup.Group
	g.SetLimit(maxOpen)

	for i, path := range paths {
		g.Go(func() error {
			seq, err := cache.Load(path)
			if err != nil {
				return err
			}

			out[i] = summarize(path, seq)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func summarize(path string, seq *llsm.Sequence) summary {
	s := summary{
		path:     path,
		frames:   seq.Len(),
		rate:     seq.SampleRate,
		bitDepth: seq.BitDepth,
		hopMs:    seq.Config.Hop * 1000,
		channels: seq.Config.Channels(),
		seq:      seq,
	}

	voiced := 0
	sum := 0.0
	for i := range seq.Frames {
		f := &seq.Frames[i]
		s.maxNhar = max(s.maxNhar, f.Len())
		if f.Voiced() {
			voiced++
			sum += f.F0
		}
	}

	if voiced > 0 {
		s.meanF0 = sum / float64(voiced)
	}

	if s.frames > 0 {
		s.voicedPct = 100 * float64(voiced) / float64(s.frames)
	}

	return s
}

func printSummaries(w io.Writer, summaries []summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File\tFrames\tRate\tBits\tHop [ms]\tChannels\tVoiced [%%]\tMean F0 [Hz]\tMax nhar\n")
	fmt.Fprintf(tw, "----\t------\t----\t----\t--------\t--------\t----------\t------------\t--------\n")

	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.3f\t%d\t%.1f\t%.2f\t%d\n",
			s.path,
			s.frames,
			s.rate,
			s.bitDepth,
			s.hopMs,
			s.channels,
			s.voicedPct,
			s.meanF0,
			s.maxNhar,
		)
	}

	return tw.Flush()
}

func printFrames(w io.Writer, s summary) error {
	fmt.Fprintf(w, "\n%s\n", s.path)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Frame\tF0 [Hz]\tnhar\tA1\tPSD mean [dB]\n")
	fmt.Fprintf(tw, "-----\t-------\t----\t--\t-------------\n")

	for i := range s.seq.Frames {
		f := &s.seq.Frames[i]

		a1 := 0.0
		if f.Len() > 0 {
			a1 = f.Ampl[0]
		}

		psd := 0.0
		for _, v := range f.Noise.PSD {
			psd += v
		}
		if len(f.Noise.PSD) > 0 {
			psd /= float64(len(f.Noise.PSD))
		}

		fmt.Fprintf(tw, "%d\t%.2f\t%d\t%.4f\t%.1f\n", i, f.F0, f.Len(), a1, psd)
	}

	return tw.Flush()
}
