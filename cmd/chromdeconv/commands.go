package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-chroma/dsp/core"
	"github.com/cwbudde/algo-chroma/dsp/signal"
	"github.com/cwbudde/algo-chroma/format/arw"
	"github.com/cwbudde/algo-chroma/internal/batch"
	"github.com/cwbudde/algo-chroma/internal/config"
	"github.com/cwbudde/algo-chroma/peak"
	"github.com/cwbudde/algo-chroma/peak/detect"
	"github.com/cwbudde/algo-chroma/peak/report"
)

// inputFlags override the input and detect sections for single-file
// commands. Only flags set on the command line are applied.
type inputFlags struct {
	minHeight float64
	minTime   float64
	maxTime   float64
	normalize bool
	smoothing float64
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.minHeight, "min-height", 0, "minimum apex intensity for a peak")
	cmd.Flags().Float64Var(&f.minTime, "min-time", 0, "start of the analyzed time window")
	cmd.Flags().Float64Var(&f.maxTime, "max-time", 100, "end of the analyzed time window")
	cmd.Flags().BoolVar(&f.normalize, "normalize", false, "min-max normalize intensities before detection")
	cmd.Flags().Float64Var(&f.smoothing, "smooth", 0, "Gaussian smoothing in samples used for detection")
}

func (f *inputFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("min-height") {
		cfg.Detect.MinHeight = f.minHeight
	}
	if flags.Changed("min-time") {
		cfg.Input.MinTime = f.minTime
	}
	if flags.Changed("max-time") {
		cfg.Input.MaxTime = f.maxTime
	}
	if flags.Changed("normalize") {
		cfg.Input.Normalize = f.normalize
	}
	if flags.Changed("smooth") {
		cfg.Detect.Smoothing = f.smoothing
	}
	return cfg.Validate()
}

func newFitCmd(g *globalFlags) *cobra.Command {
	var in inputFlags
	var csvPath, parquetPath, curvesPath string

	cmd := &cobra.Command{
		Use:   "fit <file>",
		Short: "Detect and fit the peaks of one trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			if err := in.apply(cmd, cfg); err != nil {
				return err
			}
			c, err := arw.ReadFile(args[0])
			if err != nil {
				return err
			}
			a, err := batch.Analyze(c, cfg)
			if err != nil {
				return err
			}
			res := a.Result
			if !res.Converged {
				log.Warnw("fit did not converge", "file", args[0], "reason", res.Reason, "iterations", res.Iterations)
			}
			log.Debugw("fit finished", "reason", res.Reason, "iterations", res.Iterations, "rss", res.RSS())

			out := cmd.OutOrStdout()
			if err := report.WriteConsole(out, a.Records); err != nil {
				return err
			}
			if err := printFitted(out, a.Initial, res.Peaks); err != nil {
				return err
			}

			writers := []struct {
				path string
				fn   func(io.Writer) error
			}{
				{csvPath, func(w io.Writer) error { return report.WriteCSV(w, a.Records) }},
				{parquetPath, func(w io.Writer) error { return report.WriteParquet(w, a.Records) }},
				{curvesPath, func(w io.Writer) error { return report.WriteCurves(w, res.Reconstruction) }},
			}
			for _, wr := range writers {
				if wr.path == "" {
					continue
				}
				if err := createFile(wr.path, wr.fn); err != nil {
					return err
				}
				log.Infow("wrote", "path", wr.path)
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the peak table as CSV")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "write the peak table as Parquet")
	cmd.Flags().StringVar(&curvesPath, "curves", "", "write the fitted curves as CSV")
	return cmd
}

func printFitted(w io.Writer, initial, fitted peak.Set) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Peak\tPosition\tSpread\tHeight\tInitial position\tInitial spread\tInitial height")
	fmt.Fprintln(tw, "----\t--------\t------\t------\t----------------\t--------------\t--------------")
	for i, p := range fitted {
		q := initial[i]
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			i+1, p.Position, p.Spread, p.Height, q.Position, q.Spread, q.Height)
	}
	return tw.Flush()
}

func newDetectCmd(g *globalFlags) *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "List initial peak guesses of one trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.load(cmd)
			if err != nil {
				return err
			}
			if err := in.apply(cmd, cfg); err != nil {
				return err
			}
			c, err := arw.ReadFile(args[0])
			if err != nil {
				return err
			}
			if c, err = c.Window(cfg.Input.MinTime, cfg.Input.MaxTime); err != nil {
				return err
			}
			if cfg.Input.Normalize {
				if c, err = c.Normalized(); err != nil {
					return err
				}
			}
			d := detect.New(cfg.DetectOptions()...)
			dets, err := d.Analyze(c.Time, c.Intensity, cfg.Detect.MinHeight)
			if err != nil {
				return err
			}
			set, err := d.Detect(c.Time, c.Intensity, cfg.Detect.MinHeight)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Peak\tIndex\tPosition\tSpread\tHeight\tProminence\tFWHM")
			fmt.Fprintln(tw, "----\t-----\t--------\t------\t------\t----------\t----")
			for i, p := range set {
				fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
					i+1, dets[i].Index, p.Position, p.Spread, p.Height, dets[i].Prominence, dets[i].TimeWidth(c.Time))
			}
			return tw.Flush()
		},
	}
	in.register(cmd)
	return cmd
}

func newBatchCmd(g *globalFlags) *cobra.Command {
	var dir, outDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process every matching trace of the input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dir") {
				cfg.Input.Dir = dir
			}
			if cmd.Flags().Changed("out") {
				cfg.Output.Dir = outDir
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			paths, err := batch.Discover(cfg.Input.Dir, cfg.Input.Pattern)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			items := batch.NewRunner(cfg, log, cmd.OutOrStdout()).Run(ctx, paths)

			var failed []string
			for _, it := range items {
				if it.Err != nil {
					failed = append(failed, it.Path)
				}
			}
			if len(failed) == len(items) {
				return fmt.Errorf("all %d files failed", len(items))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "input directory (overrides input.dir)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (overrides output.dir)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel files (overrides workers)")
	return cmd
}

func newSynthCmd() *cobra.Command {
	var peaks []string
	var title string
	var noise, start, stop, step float64
	var seed int64

	cmd := &cobra.Command{
		Use:   "synth <out>",
		Short: "Write a synthetic trace built from Gaussian peaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := parsePeaks(peaks)
			if err != nil {
				return err
			}
			gen := signal.NewGeneratorWithOptions(
				[]core.SamplingOption{core.WithRange(start, stop), core.WithStep(step)},
				signal.WithSeed(seed),
			)
			x, y, err := gen.Chromatogram(set, noise)
			if err != nil {
				return err
			}
			if title == "" {
				title = "synthetic"
			}
			if err := arw.WriteFile(args[0], arw.Chromatogram{Title: title, Time: x, Intensity: y}); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d samples, %d peaks)\n", args[0], len(x), len(set))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&peaks, "peak", nil, "peak as position:spread:height (repeatable)")
	cmd.Flags().StringVar(&title, "title", "", "trace title")
	cmd.Flags().Float64Var(&noise, "noise", 0, "uniform noise amplitude")
	cmd.Flags().Int64Var(&seed, "seed", 1, "noise seed")
	cmd.Flags().Float64Var(&start, "start", 0, "first time value")
	cmd.Flags().Float64Var(&stop, "stop", 10, "last time value")
	cmd.Flags().Float64Var(&step, "step", 0.01, "time step")
	return cmd
}

var errPeakFormat = errors.New("peak must be position:spread:height")

func parsePeaks(specs []string) (peak.Set, error) {
	if len(specs) == 0 {
		return nil, errors.New("at least one --peak is required")
	}
	set := make(peak.Set, 0, len(specs))
	for _, s := range specs {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: %q", errPeakFormat, s)
		}
		var v [3]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", errPeakFormat, s, err)
			}
			v[i] = f
		}
		set = append(set, peak.Peak{Position: v[0], Spread: v[1], Height: v[2]})
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func createFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
