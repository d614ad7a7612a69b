package core

import "math"

// SamplingConfig describes a uniform retention-time grid.
type SamplingConfig struct {
	Start float64
	Stop  float64
	Step  float64
}

// SamplingOption mutates a SamplingConfig.
type SamplingOption func(*SamplingConfig)

// DefaultSamplingConfig returns a 0..10 grid at 0.01 spacing, a common
// resolution for exported chromatograms.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Start: 0,
		Stop:  10,
		Step:  0.01,
	}
}

// WithRange sets the grid bounds. Invalid or empty ranges are ignored.
func WithRange(start, stop float64) SamplingOption {
	return func(cfg *SamplingConfig) {
		if IsFinite(start) && IsFinite(stop) && stop > start {
			cfg.Start = start
			cfg.Stop = stop
		}
	}
}

// WithStep sets the grid spacing.
func WithStep(step float64) SamplingOption {
	return func(cfg *SamplingConfig) {
		if step > 0 && IsFinite(step) {
			cfg.Step = step
		}
	}
}

// ApplySamplingOptions applies zero or more options to the default config.
func ApplySamplingOptions(opts ...SamplingOption) SamplingConfig {
	cfg := DefaultSamplingConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Samples returns the number of grid points, including both endpoints.
func (c SamplingConfig) Samples() int {
	if c.Step <= 0 || c.Stop < c.Start {
		return 0
	}
	return int(math.Floor((c.Stop-c.Start)/c.Step+1e-9)) + 1
}

// Grid materializes the sampling grid.
func (c SamplingConfig) Grid() []float64 {
	n := c.Samples()
	out := make([]float64, n)
	for i := range out {
		out[i] = c.Start + c.Step*float64(i)
	}
	return out
}
