// Package lm implements a Levenberg–Marquardt solver for nonlinear least
// squares problems, minimizing 0.5*||r(x)||^2 over x.
//
// The damped normal equations (JᵀJ + λD)h = -Jᵀr are solved with a Cholesky
// factorization. D holds the running maximum of diag(JᵀJ) (Marquardt
// scaling) and λ follows Nielsen's update rule.
package lm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Errors returned by Minimize.
var (
	ErrNoParameters = errors.New("lm: no parameters")
	ErrNoResiduals  = errors.New("lm: no residuals")
	ErrNoFunc       = errors.New("lm: residual function is nil")
	ErrNonFinite    = errors.New("lm: non-finite residual at starting point")
)

// Problem describes a least-squares problem.
type Problem struct {
	// Residuals is the number of residuals, m.
	Residuals int
	// Func writes the m residuals at x into dst.
	Func func(dst, x []float64)
	// Jac writes the m×n Jacobian of the residuals at x into dst.
	// When nil, forward differences are used.
	Jac func(dst *mat.Dense, x []float64)
}

// Settings controls termination. Zero fields take defaults.
type Settings struct {
	// MaxIterations bounds the number of trial steps. Default 200*(n+1).
	MaxIterations int
	// FunctionTolerance stops when an accepted step reduces the cost by less
	// than this fraction of the cost.
	FunctionTolerance float64
	// StepTolerance stops when ||h|| <= tol*(||x||+tol).
	StepTolerance float64
	// GradientTolerance stops when max|Jᵀr| <= tol.
	GradientTolerance float64
	// InitialDamping scales max(diag(JᵀJ)) to give the first λ.
	InitialDamping float64
}

// DefaultSettings returns the settings used for zero fields.
func DefaultSettings() Settings {
	return Settings{
		FunctionTolerance: 1e-12,
		StepTolerance:     1e-12,
		GradientTolerance: 1e-12,
		InitialDamping:    1e-3,
	}
}

func (s Settings) withDefaults(n int) Settings {
	def := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = 200 * (n + 1)
	}
	if s.FunctionTolerance <= 0 {
		s.FunctionTolerance = def.FunctionTolerance
	}
	if s.StepTolerance <= 0 {
		s.StepTolerance = def.StepTolerance
	}
	if s.GradientTolerance <= 0 {
		s.GradientTolerance = def.GradientTolerance
	}
	if s.InitialDamping <= 0 {
		s.InitialDamping = def.InitialDamping
	}
	return s
}

// Status reports why Minimize stopped.
type Status int

const (
	// IterationLimit means the trial budget ran out.
	IterationLimit Status = iota
	// GradientConvergence means the gradient fell below tolerance.
	GradientConvergence
	// StepConvergence means the step fell below tolerance.
	StepConvergence
	// FunctionConvergence means the relative cost reduction fell below tolerance.
	FunctionConvergence
	// Stalled means damping grew without bound and no step reduced the cost.
	Stalled
)

func (s Status) String() string {
	switch s {
	case IterationLimit:
		return "iteration limit"
	case GradientConvergence:
		return "gradient tolerance"
	case StepConvergence:
		return "step tolerance"
	case FunctionConvergence:
		return "function tolerance"
	case Stalled:
		return "stalled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Converged reports whether s is one of the tolerance-based stops.
func (s Status) Converged() bool {
	return s == GradientConvergence || s == StepConvergence || s == FunctionConvergence
}

// Result is the best point found.
type Result struct {
	X           []float64
	Cost        float64 // 0.5*||r(X)||^2
	Iterations  int     // trial steps taken
	Evaluations int     // residual evaluations, excluding finite differences
	Status      Status
}

const maxDamping = 1e32

// Minimize runs Levenberg–Marquardt from x0. It returns an error only for
// malformed problems; running out of iterations is reported in Status with
// the best point found.
func Minimize(p Problem, x0 []float64, s Settings) (Result, error) {
	n := len(x0)
	m := p.Residuals
	switch {
	case n == 0:
		return Result{}, ErrNoParameters
	case m <= 0:
		return Result{}, ErrNoResiduals
	case p.Func == nil:
		return Result{}, ErrNoFunc
	}
	s = s.withDefaults(n)

	jac := p.Jac
	if jac == nil {
		jac = forwardDifference(p.Func, m)
	}

	x := append([]float64(nil), x0...)
	r := make([]float64, m)
	p.Func(r, x)
	cost := 0.5 * floats.Dot(r, r)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return Result{}, ErrNonFinite
	}

	res := Result{Evaluations: 1, Status: IterationLimit}

	var (
		J       = mat.NewDense(m, n, nil)
		A       = mat.NewSymDense(n, nil)
		M       = mat.NewSymDense(n, nil)
		g       = mat.NewVecDense(n, nil)
		negG    = mat.NewVecDense(n, nil)
		h       = mat.NewVecDense(n, nil)
		diag    = make([]float64, n)
		xNew    = make([]float64, n)
		rNew    = make([]float64, m)
		chol    mat.Cholesky
		lambda  = -1.0
		nu      = 2.0
		needJac = true
	)

	for res.Iterations < s.MaxIterations {
		if needJac {
			jac(J, x)
			A.SymOuterK(1, J.T())
			g.MulVec(J.T(), mat.NewVecDense(m, r))
			needJac = false

			if mat.Norm(g, math.Inf(1)) <= s.GradientTolerance {
				res.Status = GradientConvergence
				break
			}

			maxDiag := 0.0
			for i := 0; i < n; i++ {
				diag[i] = math.Max(diag[i], A.At(i, i))
				maxDiag = math.Max(maxDiag, diag[i])
			}
			if maxDiag == 0 {
				maxDiag = 1
			}
			for i := range diag {
				if diag[i] == 0 {
					diag[i] = maxDiag * 1e-12
				}
			}
			if lambda < 0 {
				lambda = s.InitialDamping * maxDiag
			}
		}

		res.Iterations++

		M.CopySym(A)
		for i := 0; i < n; i++ {
			M.SetSym(i, i, A.At(i, i)+lambda*diag[i])
		}
		if !chol.Factorize(M) {
			if lambda, nu = raise(lambda, nu); lambda > maxDamping {
				res.Status = Stalled
				break
			}
			continue
		}
		negG.ScaleVec(-1, g)
		if err := chol.SolveVecTo(h, negG); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return Result{}, fmt.Errorf("lm: solve: %w", err)
			}
		}

		hNorm := mat.Norm(h, 2)
		if hNorm <= s.StepTolerance*(floats.Norm(x, 2)+s.StepTolerance) {
			res.Status = StepConvergence
			break
		}

		for i := range xNew {
			xNew[i] = x[i] + h.AtVec(i)
		}
		p.Func(rNew, xNew)
		res.Evaluations++
		costNew := 0.5 * floats.Dot(rNew, rNew)

		// Predicted reduction of the local quadratic model.
		var pred float64
		for i := 0; i < n; i++ {
			hi := h.AtVec(i)
			pred += hi * (lambda*diag[i]*hi - g.AtVec(i))
		}
		pred *= 0.5

		actual := cost - costNew
		if pred > 0 && actual > 0 && !math.IsNaN(costNew) {
			rho := actual / pred
			copy(x, xNew)
			r, rNew = rNew, r
			prev := cost
			cost = costNew
			needJac = true

			lambda *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
			nu = 2

			if actual <= s.FunctionTolerance*prev {
				res.Status = FunctionConvergence
				break
			}
			continue
		}

		if lambda, nu = raise(lambda, nu); lambda > maxDamping {
			res.Status = Stalled
			break
		}
	}

	res.X = x
	res.Cost = cost
	return res, nil
}

func raise(lambda, nu float64) (float64, float64) {
	return lambda * nu, nu * 2
}

// forwardDifference builds a Jacobian from one-sided differences of f.
func forwardDifference(f func(dst, x []float64), m int) func(*mat.Dense, []float64) {
	base := make([]float64, m)
	shifted := make([]float64, m)
	return func(dst *mat.Dense, x []float64) {
		f(base, x)
		xp := append([]float64(nil), x...)
		for j := range x {
			step := math.Sqrt(2.220446049250313e-16) * math.Max(math.Abs(x[j]), 1)
			xp[j] = x[j] + step
			f(shifted, xp)
			for i := 0; i < m; i++ {
				dst.Set(i, j, (shifted[i]-base[i])/step)
			}
			xp[j] = x[j]
		}
	}
}
