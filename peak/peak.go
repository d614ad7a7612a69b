package peak

import (
	"fmt"

	"github.com/cwbudde/algo-chroma/dsp/core"
)

// ParamsPerPeak is the number of values each peak contributes to a Params
// vector.
const ParamsPerPeak = 3

// Peak is one Gaussian component.
type Peak struct {
	Position float64 // time units
	Spread   float64 // Gaussian width parameter, > 0
	Height   float64 // intensity units
}

// Validate rejects non-finite values and spreads <= 0.
func (p Peak) Validate() error {
	if !core.IsFinite(p.Position) || !core.IsFinite(p.Height) || !core.IsFinite(p.Spread) {
		return fmt.Errorf("%w: non-finite value in %+v", ErrInvalidPeakParameter, p)
	}
	if p.Spread <= 0 {
		return fmt.Errorf("%w: spread must be > 0: %v", ErrInvalidPeakParameter, p.Spread)
	}
	return nil
}

// Set is an ordered sequence of peaks, in ascending time of detection.
type Set []Peak

// Validate checks every peak and reports the first failing index.
func (s Set) Validate() error {
	for i, p := range s {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("peak %d: %w", i, err)
		}
	}
	return nil
}

// Flatten is shorthand for [Flatten](s).
func (s Set) Flatten() Params {
	return Flatten(s)
}

// Params is a flat parameter vector of (position, spread, height) triples.
type Params []float64

// Len returns the number of peaks encoded in p.
func (p Params) Len() int {
	return len(p) / ParamsPerPeak
}

// Peak returns the i-th triple as a Peak.
func (p Params) Peak(i int) Peak {
	j := i * ParamsPerPeak
	return Peak{Position: p[j], Spread: p[j+1], Height: p[j+2]}
}

// Validate checks the length and every encoded peak.
func (p Params) Validate() error {
	if len(p)%ParamsPerPeak != 0 {
		return fmt.Errorf("%w: %d", ErrParamLength, len(p))
	}
	for i := 0; i < p.Len(); i++ {
		if err := p.Peak(i).Validate(); err != nil {
			return fmt.Errorf("peak %d: %w", i, err)
		}
	}
	return nil
}

// Flatten encodes s as a Params vector.
func Flatten(s Set) Params {
	out := make(Params, 0, len(s)*ParamsPerPeak)
	for _, pk := range s {
		out = append(out, pk.Position, pk.Spread, pk.Height)
	}
	return out
}

// Unflatten decodes p into a Set. It is the exact inverse of Flatten.
func Unflatten(p Params) (Set, error) {
	if len(p)%ParamsPerPeak != 0 {
		return nil, fmt.Errorf("%w: %d", ErrParamLength, len(p))
	}
	out := make(Set, p.Len())
	for i := range out {
		out[i] = p.Peak(i)
	}
	return out, nil
}
