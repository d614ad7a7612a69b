// Package signal builds synthetic chromatograms and applies simple
// whole-signal transforms.
package signal

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-chroma/dsp/core"
	"github.com/cwbudde/algo-chroma/peak"
	"github.com/cwbudde/algo-chroma/peak/gauss"
)

var (
	// ErrEmptyInput is returned for zero-length input.
	ErrEmptyInput = errors.New("signal: empty input")
	// ErrFlatSignal is returned when a signal has no range to normalize over.
	ErrFlatSignal = errors.New("signal: flat signal")
	// ErrLengthMismatch is returned when two signals differ in length.
	ErrLengthMismatch = errors.New("signal: length mismatch")
)

// Generator creates deterministic signals on a shared time grid.
type Generator struct {
	cfg  core.SamplingConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator over the configured grid.
func NewGenerator(opts ...core.SamplingOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a generator with grid and generator options.
func NewGeneratorWithOptions(gridOpts []core.SamplingOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplySamplingOptions(gridOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the grid configuration.
func (g *Generator) Config() core.SamplingConfig {
	return g.cfg
}

// Seed returns the noise seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// SetSeed changes the noise seed.
func (g *Generator) SetSeed(seed int64) {
	g.seed = seed
}

// Grid returns the time axis.
func (g *Generator) Grid() []float64 {
	return g.cfg.Grid()
}

// Gaussians evaluates the sum of the given peaks on the grid.
func (g *Generator) Gaussians(set peak.Set) ([]float64, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return gauss.Mixture(g.Grid(), set.Flatten()), nil
}

// WhiteNoise generates deterministic uniform noise in [-amplitude, amplitude]
// with one sample per grid point.
func (g *Generator) WhiteNoise(amplitude float64) ([]float64, error) {
	if amplitude < 0 {
		return nil, fmt.Errorf("signal: noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, g.cfg.Samples())
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Baseline returns the linear drift offset + slope*(t - start).
func (g *Generator) Baseline(offset, slope float64) []float64 {
	grid := g.Grid()
	out := make([]float64, len(grid))
	for i, t := range grid {
		out[i] = offset + slope*(t-g.cfg.Start)
	}
	return out
}

// Chromatogram returns the grid and the peaks plus noise of the given
// amplitude.
func (g *Generator) Chromatogram(set peak.Set, noise float64) (x, y []float64, err error) {
	y, err = g.Gaussians(set)
	if err != nil {
		return nil, nil, err
	}
	n, err := g.WhiteNoise(noise)
	if err != nil {
		return nil, nil, err
	}
	floats.Add(y, n)
	return g.Grid(), y, nil
}

// MinMaxNormalize maps data linearly onto [0, 1] and returns a new slice.
func MinMaxNormalize(data []float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	lo, hi := floats.Min(data), floats.Max(data)
	if hi == lo {
		return nil, ErrFlatSignal
	}
	out := make([]float64, len(data))
	floats.AddConst(-lo, floats.ScaleTo(out, 1, data))
	floats.Scale(1/(hi-lo), out)
	return out, nil
}

// Scale returns data multiplied by factor.
func Scale(data []float64, factor float64) []float64 {
	out := make([]float64, len(data))
	floats.ScaleTo(out, factor, data)
	return out
}

// Add returns the elementwise sum of a and b.
func Add(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	out := make([]float64, len(a))
	floats.AddTo(out, a, b)
	return out, nil
}
