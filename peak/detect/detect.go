// Package detect finds Gaussian peak candidates in a sampled signal and
// estimates their initial spreads from half-height widths.
package detect

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-chroma/dsp/core"
	"github.com/cwbudde/algo-chroma/dsp/interp"
	"github.com/cwbudde/algo-chroma/dsp/smooth"
	"github.com/cwbudde/algo-chroma/peak"
)

// ErrInvalidThreshold is returned for a non-finite minimum height.
var ErrInvalidThreshold = errors.New("detect: minimum height must be finite")

// Detection describes one accepted local maximum.
type Detection struct {
	Index      int     // sample index of the maximum
	Height     float64 // intensity at Index
	Prominence float64 // height above the higher of the two bases
	LeftBase   int
	RightBase  int
	LeftIP     float64 // fractional sample index of the left crossing
	RightIP    float64 // fractional sample index of the right crossing
	Level      float64 // intensity at which the width was measured
}

// SampleWidth returns the crossing distance in samples.
func (d Detection) SampleWidth() float64 {
	return d.RightIP - d.LeftIP
}

// TimeWidth returns the crossing distance along x.
func (d Detection) TimeWidth(x []float64) float64 {
	return interp.AtIndex(x, d.RightIP) - interp.AtIndex(x, d.LeftIP)
}

// Detector turns a signal into an initial peak set.
type Detector struct {
	cfg config
}

// New creates a Detector. Without options widths are measured in time units
// at half prominence and converted from FWHM to spread.
func New(opts ...Option) *Detector {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Detector{cfg: cfg}
}

// Detect is shorthand for New(opts...).Detect(x, y, minHeight).
func Detect(x, y []float64, minHeight float64, opts ...Option) (peak.Set, error) {
	return New(opts...).Detect(x, y, minHeight)
}

// Detect returns one peak per strict local maximum whose intensity is at
// least minHeight, in ascending time. No qualifying maximum yields an empty
// set and a nil error.
func (d *Detector) Detect(x, y []float64, minHeight float64) (peak.Set, error) {
	dets, err := d.Analyze(x, y, minHeight)
	if err != nil {
		return nil, err
	}

	divisor := d.cfg.divisor
	if divisor <= 0 {
		divisor = d.cfg.unit.DefaultDivisor()
	}

	set := make(peak.Set, len(dets))
	for i, det := range dets {
		width := det.TimeWidth(x)
		if d.cfg.unit == UnitSamples {
			width = det.SampleWidth()
		}
		spread := width / divisor
		if i < len(d.cfg.correction) && d.cfg.correction[i] > 0 {
			spread *= d.cfg.correction[i]
		}
		set[i] = peak.Peak{
			Position: x[det.Index],
			Spread:   spread,
			Height:   det.Height,
		}
	}
	return set, nil
}

// Analyze validates the signal and returns the raw detections, including
// crossing positions, before any width scaling.
func (d *Detector) Analyze(x, y []float64, minHeight float64) ([]Detection, error) {
	if err := peak.ValidateSignal(x, y); err != nil {
		return nil, err
	}
	if !core.IsFinite(minHeight) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, minHeight)
	}

	work := y
	if d.cfg.smoothing > 0 {
		s, err := smooth.Gaussian(y, d.cfg.smoothing)
		if err != nil {
			return nil, fmt.Errorf("detect: %w", err)
		}
		work = s
	}

	return Widths(work, FindMaxima(work, minHeight), d.cfg.relHeight), nil
}

// FindMaxima returns the indices i, excluding both endpoints, where
// y[i-1] < y[i] > y[i+1] and y[i] >= minHeight.
func FindMaxima(y []float64, minHeight float64) []int {
	var out []int
	for i := 1; i < len(y)-1; i++ {
		if y[i] > y[i-1] && y[i] > y[i+1] && y[i] >= minHeight {
			out = append(out, i)
		}
	}
	return out
}

// Widths measures each maximum at relHeight of its prominence. The baseline
// of a peak is the higher of the lowest samples found on each side before a
// sample above the peak (or the signal edge) is met. Crossings are linearly
// interpolated and clamped to those base samples.
func Widths(y []float64, maxima []int, relHeight float64) []Detection {
	out := make([]Detection, 0, len(maxima))
	for _, p := range maxima {
		det := Detection{Index: p, Height: y[p]}
		det.LeftBase, det.RightBase, det.Prominence = prominence(y, p)
		det.Level = y[p] - det.Prominence*relHeight

		i := p
		for det.LeftBase < i && det.Level < y[i] {
			i--
		}
		det.LeftIP = float64(i)
		if y[i] < det.Level {
			det.LeftIP += core.Clamp(interp.InverseLinear(det.Level, y[i], y[i+1]), 0, 1)
		}
		det.LeftIP = core.Clamp(det.LeftIP, float64(det.LeftBase), float64(p))

		i = p
		for i < det.RightBase && det.Level < y[i] {
			i++
		}
		det.RightIP = float64(i)
		if y[i] < det.Level {
			det.RightIP -= core.Clamp(interp.InverseLinear(det.Level, y[i], y[i-1]), 0, 1)
		}
		det.RightIP = core.Clamp(det.RightIP, float64(p), float64(det.RightBase))

		out = append(out, det)
	}
	return out
}

func prominence(y []float64, p int) (leftBase, rightBase int, prom float64) {
	leftMin := y[p]
	leftBase = p
	for i := p; i >= 0; i-- {
		if y[i] > y[p] {
			break
		}
		if y[i] < leftMin {
			leftMin = y[i]
			leftBase = i
		}
	}

	rightMin := y[p]
	rightBase = p
	for i := p; i < len(y); i++ {
		if y[i] > y[p] {
			break
		}
		if y[i] < rightMin {
			rightMin = y[i]
			rightBase = i
		}
	}

	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return leftBase, rightBase, y[p] - base
}
