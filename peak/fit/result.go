package fit

import (
	"github.com/cwbudde/algo-chroma/peak"
	"github.com/cwbudde/algo-chroma/peak/gauss"
)

// Metrics are summary values recomputed from a peak's dense evaluation.
type Metrics struct {
	Position float64 // argmax of the dense curve
	Spread   float64 // standard deviation of the dense curve's sample values
	Height   float64 // max of the dense curve
	Area     float64 // trapezoidal integral of the dense curve
}

// Component is one fitted peak together with its dense evaluation.
type Component struct {
	Fitted  peak.Peak
	Grid    []float64
	Curve   []float64
	Metrics Metrics
}

// Reconstruction samples the fitted model on a dense grid spanning the
// signal, for plotting.
type Reconstruction struct {
	X          []float64
	Total      []float64
	Components [][]float64
}

// Result is the outcome of one deconvolution.
type Result struct {
	Initial        peak.Set
	Params         peak.Params // solved parameters, spreads > 0
	Peaks          peak.Set
	Components     []Component
	Reconstruction Reconstruction

	// Converged is false when the solver stopped on its iteration budget;
	// Params then hold the best point found.
	Converged   bool
	Reason      string
	Cost        float64 // half the residual sum of squares
	Iterations  int
	Evaluations int
}

// RSS returns the residual sum of squares at the solution.
func (r *Result) RSS() float64 {
	return 2 * r.Cost
}

// Evaluate samples the fitted mixture at x.
func (r *Result) Evaluate(x []float64) []float64 {
	return gauss.Mixture(x, r.Params)
}

// Metrics returns the recomputed metrics of every component, in order.
func (r *Result) Metrics() []Metrics {
	out := make([]Metrics, len(r.Components))
	for i, c := range r.Components {
		out[i] = c.Metrics
	}
	return out
}
