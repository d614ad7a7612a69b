package detect

import (
	"github.com/cwbudde/algo-chroma/dsp/core"
	"github.com/cwbudde/algo-chroma/peak/gauss"
)

// WidthUnit selects the axis in which half-height widths are measured.
type WidthUnit int

const (
	// UnitTime measures widths along the time axis.
	UnitTime WidthUnit = iota
	// UnitSamples measures widths in sample indices.
	UnitSamples
)

// legacySampleDivisor scales sample-index widths of exports recorded at
// 100 samples per time unit.
const legacySampleDivisor = 100

func (u WidthUnit) String() string {
	switch u {
	case UnitTime:
		return "time"
	case UnitSamples:
		return "samples"
	default:
		return "unknown"
	}
}

// DefaultDivisor returns the divisor applied when none is configured:
// FWHM to spread for UnitTime, and 100 for UnitSamples.
func (u WidthUnit) DefaultDivisor() float64 {
	if u == UnitSamples {
		return legacySampleDivisor
	}
	return gauss.FWHMFactor()
}

type config struct {
	relHeight  float64
	unit       WidthUnit
	divisor    float64
	correction []float64
	smoothing  float64
}

func defaultConfig() config {
	return config{
		relHeight: 0.5,
		unit:      UnitTime,
	}
}

// Option configures a Detector.
type Option func(*config)

// WithRelHeight sets the level at which widths are measured, relative to
// each peak's prominence. Values outside (0, 1] are ignored.
func WithRelHeight(rel float64) Option {
	return func(c *config) {
		if rel > 0 && rel <= 1 {
			c.relHeight = rel
		}
	}
}

// WithWidthUnit selects the width axis.
func WithWidthUnit(u WidthUnit) Option {
	return func(c *config) {
		if u == UnitTime || u == UnitSamples {
			c.unit = u
		}
	}
}

// WithWidthDivisor sets the factor converting measured widths into spreads.
// Non-positive values restore the unit default.
func WithWidthDivisor(d float64) Option {
	return func(c *config) {
		if d > 0 && core.IsFinite(d) {
			c.divisor = d
		} else {
			c.divisor = 0
		}
	}
}

// WithWidthCorrection multiplies the spread of the i-th detected peak by
// mods[i] after scaling. Peaks beyond len(mods) are unchanged.
func WithWidthCorrection(mods []float64) Option {
	return func(c *config) {
		c.correction = append([]float64(nil), mods...)
	}
}

// WithSmoothing locates maxima and widths on a Gaussian-smoothed copy of the
// signal. sigma is in samples; 0 disables smoothing.
func WithSmoothing(sigma float64) Option {
	return func(c *config) {
		if sigma >= 0 && core.IsFinite(sigma) {
			c.smoothing = sigma
		}
	}
}
