// Package fit refines an initial set of Gaussian peaks against an observed
// signal by nonlinear least squares and derives per-peak metrics from the
// refined model.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-chroma/dsp/core"
	"github.com/cwbudde/algo-chroma/internal/lm"
	"github.com/cwbudde/algo-chroma/peak"
	"github.com/cwbudde/algo-chroma/peak/gauss"
	"github.com/cwbudde/algo-chroma/stats/curve"
)

// Deconvolver fits Gaussian mixtures. It holds configuration only and is
// safe for concurrent use.
type Deconvolver struct {
	cfg config
}

// New creates a Deconvolver.
func New(opts ...Option) *Deconvolver {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Deconvolver{cfg: cfg}
}

// Fit is shorthand for New(opts...).Fit(x, y, initial).
func Fit(x, y []float64, initial peak.Set, opts ...Option) (*Result, error) {
	return New(opts...).Fit(x, y, initial)
}

// Fit minimizes the squared difference between y and the mixture of the
// peaks, starting from initial. The number of peaks never changes. An empty
// initial set returns a zero reconstruction without running the solver.
func (d *Deconvolver) Fit(x, y []float64, initial peak.Set) (*Result, error) {
	if err := peak.ValidateSignal(x, y); err != nil {
		return nil, err
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Initial: append(peak.Set(nil), initial...)}
	if len(initial) == 0 {
		res.Params = peak.Params{}
		res.Peaks = peak.Set{}
		res.Converged = true
		res.Reason = "no peaks"
		res.Reconstruction = d.reconstruct(x, res.Params)
		return res, nil
	}

	x0 := d.encode(initial.Flatten())
	sol, err := lm.Minimize(d.problem(x, y, len(initial)), x0, d.cfg.solver)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	res.Params = d.decode(sol.X)
	res.Peaks, err = peak.Unflatten(res.Params)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	res.Converged = sol.Status.Converged()
	res.Reason = sol.Status.String()
	res.Cost = sol.Cost
	res.Iterations = sol.Iterations
	res.Evaluations = sol.Evaluations

	res.Components = make([]Component, len(res.Peaks))
	for i, pk := range res.Peaks {
		res.Components[i] = d.component(x, pk)
	}
	res.Reconstruction = d.reconstruct(x, res.Params)
	return res, nil
}

// problem builds the residual y - mixture(x, p) and its analytic Jacobian in
// solver coordinates.
func (d *Deconvolver) problem(x, y []float64, peaks int) lm.Problem {
	m := len(x)
	params := make(peak.Params, peaks*peak.ParamsPerPeak)
	model := make([]float64, m)
	var mixture gauss.Evaluator
	dPos := make([]float64, m)
	dSpread := make([]float64, m)
	dHeight := make([]float64, m)

	return lm.Problem{
		Residuals: m,
		Func: func(dst, v []float64) {
			d.decodeTo(params, v)
			mixture.MixtureTo(model, x, params)
			for i := range dst {
				dst[i] = y[i] - model[i]
			}
		},
		Jac: func(dst *mat.Dense, v []float64) {
			d.decodeTo(params, v)
			for k := 0; k < peaks; k++ {
				pk := params.Peak(k)
				gauss.Partials(dPos, dSpread, dHeight, x, pk.Position, pk.Spread, pk.Height)
				col := k * peak.ParamsPerPeak
				scale := 1.0
				switch {
				case d.cfg.spread == SpreadLog:
					// d/d(ln s) = s * d/ds
					scale = pk.Spread
				case v[col+1] < 0:
					scale = -1
				}
				if scale != 1 {
					for i := range dSpread {
						dSpread[i] *= scale
					}
				}
				for i := 0; i < m; i++ {
					dst.Set(i, col, -dPos[i])
					dst.Set(i, col+1, -dSpread[i])
					dst.Set(i, col+2, -dHeight[i])
				}
			}
		},
	}
}

func (d *Deconvolver) encode(p peak.Params) []float64 {
	v := append([]float64(nil), p...)
	if d.cfg.spread == SpreadLog {
		for i := 1; i < len(v); i += peak.ParamsPerPeak {
			v[i] = math.Log(v[i])
		}
	}
	return v
}

func (d *Deconvolver) decodeTo(dst peak.Params, v []float64) {
	copy(dst, v)
	for i := 1; i < len(dst); i += peak.ParamsPerPeak {
		if d.cfg.spread == SpreadLog {
			dst[i] = math.Exp(v[i])
		} else {
			dst[i] = math.Abs(v[i])
		}
	}
}

func (d *Deconvolver) decode(v []float64) peak.Params {
	p := make(peak.Params, len(v))
	d.decodeTo(p, v)
	return p
}

// window returns the dense-evaluation range for pk.
func (d *Deconvolver) window(x []float64, pk peak.Peak) (lo, hi float64) {
	if d.cfg.coverage*pk.Spread > d.cfg.halfWindow {
		return x[0], x[len(x)-1]
	}
	return pk.Position - d.cfg.halfWindow, pk.Position + d.cfg.halfWindow
}

func (d *Deconvolver) component(x []float64, pk peak.Peak) Component {
	lo, hi := d.window(x, pk)
	grid := core.Linspace(lo, hi, d.cfg.gridPoints)
	values := gauss.Evaluate(grid, pk.Position, pk.Spread, pk.Height)
	st := curve.Calculate(grid, values)

	return Component{
		Fitted: pk,
		Grid:   grid,
		Curve:  values,
		Metrics: Metrics{
			Position: grid[st.MaxPos],
			Spread:   st.StdDev,
			Height:   st.Max,
			Area:     st.Area,
		},
	}
}

func (d *Deconvolver) reconstruct(x []float64, p peak.Params) Reconstruction {
	grid := core.Linspace(x[0], x[len(x)-1], d.cfg.gridPoints)
	rec := Reconstruction{
		X:          grid,
		Total:      make([]float64, len(grid)),
		Components: make([][]float64, p.Len()),
	}
	for i := range rec.Components {
		pk := p.Peak(i)
		rec.Components[i] = gauss.Evaluate(grid, pk.Position, pk.Spread, pk.Height)
		for j, v := range rec.Components[i] {
			rec.Total[j] += v
		}
	}
	return rec
}
