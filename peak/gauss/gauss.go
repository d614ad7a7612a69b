// Package gauss evaluates Gaussian peak components and mixtures of them.
//
// A component is height * exp(-(x-position)^2 / (2*spread^2)). A mixture is
// the sum of the components encoded in a [peak.Params] vector, in order.
package gauss

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-chroma/dsp/core"
	"github.com/cwbudde/algo-chroma/peak"
)

var sqrt2Pi = math.Sqrt(2 * math.Pi)

// fwhmFactor is 2*sqrt(2*ln 2), the ratio of full width at half maximum to
// standard deviation.
var fwhmFactor = 2 * math.Sqrt(2*math.Ln2)

// Value evaluates one component at x. A zero spread degenerates to a delta:
// height at x == position and 0 elsewhere.
func Value(x, position, spread, height float64) float64 {
	d := x - position
	if d == 0 {
		return height
	}
	if spread == 0 {
		return 0
	}
	return height * math.Exp(-d*d/(2*spread*spread))
}

// Evaluate returns the component sampled at every x.
func Evaluate(x []float64, position, spread, height float64) []float64 {
	out := make([]float64, len(x))
	EvaluateTo(out, x, position, spread, height)
	return out
}

// EvaluateTo writes the component sampled at x into dst.
// dst must have the same length as x.
func EvaluateTo(dst, x []float64, position, spread, height float64) {
	if len(dst) != len(x) {
		panic("gauss: destination length mismatch")
	}
	if spread == 0 {
		for i, v := range x {
			dst[i] = Value(v, position, 0, height)
		}
		return
	}
	k := -1 / (2 * spread * spread)
	for i, v := range x {
		d := v - position
		if d == 0 {
			// k may be -Inf for spreads whose square underflows.
			dst[i] = height
			continue
		}
		dst[i] = height * math.Exp(k*d*d)
	}
}

// Mixture returns the sum of all components in p sampled at x.
func Mixture(x []float64, p peak.Params) []float64 {
	out := make([]float64, len(x))
	MixtureTo(out, x, p)
	return out
}

// MixtureTo writes the mixture of p sampled at x into dst. A trailing partial
// triple in p is ignored.
func MixtureTo(dst, x []float64, p peak.Params) {
	var e Evaluator
	e.MixtureTo(dst, x, p)
}

// Evaluator evaluates mixtures while reusing one scratch buffer between
// calls. It is not safe for concurrent use.
type Evaluator struct {
	scratch []float64
}

// MixtureTo is the buffered form of the package-level MixtureTo.
func (e *Evaluator) MixtureTo(dst, x []float64, p peak.Params) {
	if len(dst) != len(x) {
		panic("gauss: destination length mismatch")
	}
	core.Zero(dst)
	if p.Len() == 0 {
		return
	}
	e.scratch = core.EnsureLen(e.scratch, len(x))
	for i := 0; i < p.Len(); i++ {
		pk := p.Peak(i)
		EvaluateTo(e.scratch, x, pk.Position, pk.Spread, pk.Height)
		floats.Add(dst, e.scratch)
	}
}

// Partials writes the derivatives of one component with respect to
// position, spread and height at every x. All slices must share len(x).
func Partials(dPos, dSpread, dHeight, x []float64, position, spread, height float64) {
	n := len(x)
	if len(dPos) != n || len(dSpread) != n || len(dHeight) != n {
		panic("gauss: partials length mismatch")
	}
	// A spread whose square underflows behaves like a zero spread.
	inv := 1 / (spread * spread)
	if spread == 0 || math.IsInf(inv, 0) {
		for i, v := range x {
			dPos[i], dSpread[i] = 0, 0
			dHeight[i] = Value(v, position, 0, 1)
		}
		return
	}

	for i, v := range x {
		d := v - position
		dHeight[i] = math.Exp(-0.5 * d * d * inv)
		dPos[i] = height * d * inv
		dSpread[i] = height * d * d * inv / spread
	}
	vecmath.MulBlockInPlace(dPos, dHeight)
	vecmath.MulBlockInPlace(dSpread, dHeight)
}

// Area returns the closed-form integral of a component over the real line.
func Area(height, spread float64) float64 {
	return height * math.Abs(spread) * sqrt2Pi
}

// FWHM converts a spread to the full width at half maximum.
func FWHM(spread float64) float64 {
	return math.Abs(spread) * fwhmFactor
}

// SpreadFromFWHM converts a full width at half maximum to a spread.
func SpreadFromFWHM(fwhm float64) float64 {
	return fwhm / fwhmFactor
}

// FWHMFactor returns 2*sqrt(2*ln 2).
func FWHMFactor() float64 {
	return fwhmFactor
}
