package fit

import (
	"github.com/cwbudde/algo-chroma/dsp/core"
	"github.com/cwbudde/algo-chroma/internal/lm"
)

// SpreadParam selects how spreads are represented inside the solver.
type SpreadParam int

const (
	// SpreadLog fits ln(spread), which keeps every spread > 0.
	SpreadLog SpreadParam = iota
	// SpreadLinear fits spread directly; the sign is dropped afterwards.
	SpreadLinear
)

func (p SpreadParam) String() string {
	switch p {
	case SpreadLog:
		return "log"
	case SpreadLinear:
		return "linear"
	default:
		return "unknown"
	}
}

const (
	defaultGridPoints = 1000
	defaultHalfWindow = 0.5
	defaultCoverage   = 4
)

type config struct {
	gridPoints int
	halfWindow float64
	coverage   float64
	spread     SpreadParam
	solver     lm.Settings
}

func defaultConfig() config {
	return config{
		gridPoints: defaultGridPoints,
		halfWindow: defaultHalfWindow,
		coverage:   defaultCoverage,
		spread:     SpreadLog,
		solver:     lm.DefaultSettings(),
	}
}

// Option configures a Deconvolver.
type Option func(*config)

// WithGridPoints sets the number of samples in every dense evaluation.
// Values below 2 are ignored.
func WithGridPoints(n int) Option {
	return func(c *config) {
		if n >= 2 {
			c.gridPoints = n
		}
	}
}

// WithHalfWindow sets the half-width, in time units, of the dense grid
// around each fitted position.
func WithHalfWindow(w float64) Option {
	return func(c *config) {
		if w > 0 && core.IsFinite(w) {
			c.halfWindow = w
		}
	}
}

// WithCoverage sets how many spreads the per-peak window must cover. A peak
// with coverage*spread beyond the half window is evaluated over the whole
// signal domain instead. 0 always uses the half window.
func WithCoverage(k float64) Option {
	return func(c *config) {
		if k >= 0 && core.IsFinite(k) {
			c.coverage = k
		}
	}
}

// WithSpreadParam selects the solver parametrization of spreads.
func WithSpreadParam(p SpreadParam) Option {
	return func(c *config) {
		if p == SpreadLog || p == SpreadLinear {
			c.spread = p
		}
	}
}

// WithMaxIterations bounds the number of solver trial steps.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.solver.MaxIterations = n
		}
	}
}

// WithTolerances sets the relative cost, step and gradient tolerances.
// Non-positive values keep the defaults.
func WithTolerances(function, step, gradient float64) Option {
	return func(c *config) {
		if function > 0 {
			c.solver.FunctionTolerance = function
		}
		if step > 0 {
			c.solver.StepTolerance = step
		}
		if gradient > 0 {
			c.solver.GradientTolerance = gradient
		}
	}
}
