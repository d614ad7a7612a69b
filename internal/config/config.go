// Package config loads the batch settings file. All paths are explicit
// values in the file; nothing is derived from the working directory or the
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cwbudde/algo-chroma/internal/logging"
	"github.com/cwbudde/algo-chroma/peak/detect"
	"github.com/cwbudde/algo-chroma/peak/fit"
)

// Config is the root of the settings file.
type Config struct {
	LogLevel string `toml:"log_level"`
	Workers  int    `toml:"workers"`

	Input  InputConfig  `toml:"input"`
	Detect DetectConfig `toml:"detect"`
	Fit    FitConfig    `toml:"fit"`
	Output OutputConfig `toml:"output"`
}

// InputConfig selects and pre-processes input traces.
type InputConfig struct {
	Dir string `toml:"dir"`
	// Pattern is a substring a file name must contain.
	Pattern   string  `toml:"pattern"`
	MinTime   float64 `toml:"min_time"`
	MaxTime   float64 `toml:"max_time"`
	Normalize bool    `toml:"normalize"`
}

// DetectConfig mirrors the detector options.
type DetectConfig struct {
	MinHeight       float64   `toml:"min_height"`
	RelHeight       float64   `toml:"rel_height"`
	WidthUnit       string    `toml:"width_unit"`
	WidthDivisor    float64   `toml:"width_divisor"`
	WidthCorrection []float64 `toml:"width_correction"`
	Smoothing       float64   `toml:"smoothing"`
}

// FitConfig mirrors the deconvolver options. Zero tolerances and
// iteration counts keep the solver defaults.
type FitConfig struct {
	GridPoints        int     `toml:"grid_points"`
	HalfWindow        float64 `toml:"half_window"`
	Coverage          float64 `toml:"coverage"`
	Spread            string  `toml:"spread"`
	MaxIterations     int     `toml:"max_iterations"`
	FunctionTolerance float64 `toml:"function_tolerance"`
	StepTolerance     float64 `toml:"step_tolerance"`
	GradientTolerance float64 `toml:"gradient_tolerance"`
}

// OutputConfig selects the reports written per input.
type OutputConfig struct {
	Dir     string `toml:"dir"`
	Console bool   `toml:"console"`
	CSV     bool   `toml:"csv"`
	Parquet bool   `toml:"parquet"`
	Curves  bool   `toml:"curves"`
}

// Default returns the settings used for keys missing from the file.
func Default() *Config {
	return &Config{
		LogLevel: logging.InfoLevel,
		Workers:  4,
		Input: InputConfig{
			Dir:     "data",
			Pattern: "arw",
			MinTime: 0,
			MaxTime: 100,
		},
		Detect: DetectConfig{
			MinHeight: 0,
			RelHeight: 0.5,
			WidthUnit: detect.UnitTime.String(),
		},
		Fit: FitConfig{
			GridPoints: 1000,
			HalfWindow: 0.5,
			Coverage:   4,
			Spread:     fit.SpreadLog.String(),
		},
		Output: OutputConfig{
			Dir:     "out",
			Console: true,
			CSV:     true,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !logging.ValidLevel(c.LogLevel) {
		add("log_level", "invalid level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	if c.Workers < 1 {
		add("workers", "must be >= 1, got %d", c.Workers)
	}

	if c.Input.Dir == "" {
		add("input.dir", "must not be empty")
	}
	if c.Input.MaxTime <= c.Input.MinTime {
		add("input.max_time", "must exceed min_time (%g <= %g)", c.Input.MaxTime, c.Input.MinTime)
	}

	if c.Detect.RelHeight <= 0 || c.Detect.RelHeight > 1 {
		add("detect.rel_height", "must be in (0, 1], got %g", c.Detect.RelHeight)
	}
	if _, err := c.widthUnit(); err != nil {
		add("detect.width_unit", "%v", err)
	}
	if c.Detect.WidthDivisor < 0 {
		add("detect.width_divisor", "must be >= 0, got %g", c.Detect.WidthDivisor)
	}
	for i, m := range c.Detect.WidthCorrection {
		if m <= 0 {
			add(fmt.Sprintf("detect.width_correction[%d]", i), "must be > 0, got %g", m)
		}
	}
	if c.Detect.Smoothing < 0 {
		add("detect.smoothing", "must be >= 0, got %g", c.Detect.Smoothing)
	}

	if c.Fit.GridPoints < 2 {
		add("fit.grid_points", "must be >= 2, got %d", c.Fit.GridPoints)
	}
	if c.Fit.HalfWindow <= 0 {
		add("fit.half_window", "must be > 0, got %g", c.Fit.HalfWindow)
	}
	if c.Fit.Coverage < 0 {
		add("fit.coverage", "must be >= 0, got %g", c.Fit.Coverage)
	}
	if _, err := c.spreadParam(); err != nil {
		add("fit.spread", "%v", err)
	}
	if c.Fit.MaxIterations < 0 {
		add("fit.max_iterations", "must be >= 0, got %d", c.Fit.MaxIterations)
	}

	if c.Output.Dir == "" && (c.Output.CSV || c.Output.Parquet || c.Output.Curves) {
		add("output.dir", "must be set when file outputs are enabled")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) widthUnit() (detect.WidthUnit, error) {
	switch strings.ToLower(c.Detect.WidthUnit) {
	case "", detect.UnitTime.String():
		return detect.UnitTime, nil
	case detect.UnitSamples.String():
		return detect.UnitSamples, nil
	default:
		return 0, fmt.Errorf("invalid unit %q, must be one of: time, samples", c.Detect.WidthUnit)
	}
}

func (c *Config) spreadParam() (fit.SpreadParam, error) {
	switch strings.ToLower(c.Fit.Spread) {
	case "", fit.SpreadLog.String():
		return fit.SpreadLog, nil
	case fit.SpreadLinear.String():
		return fit.SpreadLinear, nil
	default:
		return 0, fmt.Errorf("invalid spread parametrization %q, must be one of: log, linear", c.Fit.Spread)
	}
}

// DetectOptions converts the detect section. Call Validate first; invalid
// values fall back to detector defaults.
func (c *Config) DetectOptions() []detect.Option {
	unit, _ := c.widthUnit()
	opts := []detect.Option{
		detect.WithRelHeight(c.Detect.RelHeight),
		detect.WithWidthUnit(unit),
		detect.WithWidthDivisor(c.Detect.WidthDivisor),
		detect.WithSmoothing(c.Detect.Smoothing),
	}
	if len(c.Detect.WidthCorrection) > 0 {
		opts = append(opts, detect.WithWidthCorrection(c.Detect.WidthCorrection))
	}
	return opts
}

// FitOptions converts the fit section.
func (c *Config) FitOptions() []fit.Option {
	spread, _ := c.spreadParam()
	return []fit.Option{
		fit.WithGridPoints(c.Fit.GridPoints),
		fit.WithHalfWindow(c.Fit.HalfWindow),
		fit.WithCoverage(c.Fit.Coverage),
		fit.WithSpreadParam(spread),
		fit.WithMaxIterations(c.Fit.MaxIterations),
		fit.WithTolerances(c.Fit.FunctionTolerance, c.Fit.StepTolerance, c.Fit.GradientTolerance),
	}
}
