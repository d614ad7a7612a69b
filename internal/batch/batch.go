// Package batch runs detection, fitting and reporting over many
// chromatogram files. Files are independent; each worker owns one file at a
// time and shares nothing with the others.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-chroma/format/arw"
	"github.com/cwbudde/algo-chroma/internal/config"
	"github.com/cwbudde/algo-chroma/internal/logging"
	"github.com/cwbudde/algo-chroma/peak"
	"github.com/cwbudde/algo-chroma/peak/detect"
	"github.com/cwbudde/algo-chroma/peak/fit"
	"github.com/cwbudde/algo-chroma/peak/report"
)

// ErrNoInputs is returned by Discover when no file matches.
var ErrNoInputs = errors.New("batch: no matching input files")

// Analysis is the outcome of one trace.
type Analysis struct {
	Signal  arw.Chromatogram // after windowing and normalization
	Initial peak.Set
	Result  *fit.Result
	Records []report.Record
}

// Item is the per-file result of a run. Err is set when the file could not
// be read or analyzed, or its outputs could not be written.
type Item struct {
	Path     string
	Analysis *Analysis
	Outputs  []string
	Err      error
}

// Analyze windows, optionally normalizes, detects, fits and summarizes c.
func Analyze(c arw.Chromatogram, cfg *config.Config) (*Analysis, error) {
	sig, err := c.Window(cfg.Input.MinTime, cfg.Input.MaxTime)
	if err != nil {
		return nil, err
	}
	if cfg.Input.Normalize {
		if sig, err = sig.Normalized(); err != nil {
			return nil, err
		}
	}

	initial, err := detect.Detect(sig.Time, sig.Intensity, cfg.Detect.MinHeight, cfg.DetectOptions()...)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	res, err := fit.Fit(sig.Time, sig.Intensity, initial, cfg.FitOptions()...)
	if err != nil {
		return nil, err
	}
	recs, err := report.Summarize(res)
	if err != nil {
		return nil, err
	}
	return &Analysis{Signal: sig, Initial: initial, Result: res, Records: recs}, nil
}

// Discover lists the regular files in dir whose names contain pattern, in
// lexical order.
func Discover(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.Contains(e.Name(), pattern) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrNoInputs, pattern, dir)
	}
	return out, nil
}

// Runner processes files with a bounded number of workers.
type Runner struct {
	cfg     *config.Config
	workers int
	log     *logging.Logger
	// console receives the per-peak lines when console output is enabled.
	console io.Writer
}

// NewRunner creates a Runner. A nil logger discards log output and a nil
// console disables peak lines. Fewer than one worker runs files one at a
// time.
func NewRunner(cfg *config.Config, log *logging.Logger, console io.Writer) *Runner {
	if log == nil {
		log = logging.Nop()
	}
	return &Runner{cfg: cfg, workers: max(cfg.Workers, 1), log: log, console: console}
}

// Run processes paths and returns one Item per path, in input order. A
// cancelled context marks files that had not started yet.
func (r *Runner) Run(ctx context.Context, paths []string) []Item {
	items := make([]Item, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		items[i].Path = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			items[i] = r.Process(path)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
			continue
		}
		if r.console != nil && r.cfg.Output.Console {
			fmt.Fprintf(r.console, "%s (%s)\n", it.Analysis.Signal.Title, filepath.Base(it.Path))
			if err := report.WriteConsole(r.console, it.Analysis.Records); err != nil {
				r.log.Errorw("console output failed", "error", err)
			}
		}
	}
	r.log.Infow("batch complete", "files", len(items), "failed", failed)
	return items
}

// Process analyzes one file and writes its outputs.
func (r *Runner) Process(path string) Item {
	it := Item{Path: path}
	c, err := arw.ReadFile(path)
	if err != nil {
		it.Err = err
		r.log.Errorw("read failed", "file", path, "error", err)
		return it
	}

	it.Analysis, err = Analyze(c, r.cfg)
	if err != nil {
		it.Err = fmt.Errorf("%s: %w", path, err)
		r.log.Errorw("analysis failed", "file", path, "error", err)
		return it
	}

	res := it.Analysis.Result
	if !res.Converged {
		r.log.Warnw("fit did not converge",
			"file", path, "reason", res.Reason, "iterations", res.Iterations, "rss", res.RSS())
	}
	r.log.Debugw("analyzed", "file", path, "peaks", len(res.Peaks), "evaluations", res.Evaluations)

	it.Outputs, err = r.Write(it.Analysis, path)
	if err != nil {
		it.Err = err
		r.log.Errorw("write failed", "file", path, "error", err)
	}
	return it
}

// Write stores the enabled file outputs of a into the output directory and
// returns the paths written.
func (r *Runner) Write(a *Analysis, source string) ([]string, error) {
	out := r.cfg.Output
	if !out.CSV && !out.Parquet && !out.Curves {
		return nil, nil
	}
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	base := OutputName(a.Signal.Title, source)
	var written []string
	emit := func(suffix string, fn func(io.Writer) error) error {
		path := filepath.Join(out.Dir, base+suffix)
		if err := writeFile(path, fn); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if out.CSV {
		if err := emit("_peaks.csv", func(w io.Writer) error { return report.WriteCSV(w, a.Records) }); err != nil {
			return written, err
		}
	}
	if out.Parquet {
		if err := emit("_peaks.parquet", func(w io.Writer) error { return report.WriteParquet(w, a.Records) }); err != nil {
			return written, err
		}
	}
	if out.Curves {
		if err := emit("_curves.csv", func(w io.Writer) error { return report.WriteCurves(w, a.Result.Reconstruction) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

var nameReplacer = strings.NewReplacer("/", "_", `\`, "_", ":", "_", " ", "_")

// OutputName derives the file stem for a trace: its title, or the source
// file name without extension when the title is blank.
func OutputName(title, source string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	return nameReplacer.Replace(name)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("batch: %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return nil
}
