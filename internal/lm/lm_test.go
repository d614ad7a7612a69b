package lm

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func rosenbrock() Problem {
	return Problem{
		Residuals: 2,
		Func: func(dst, x []float64) {
			dst[0] = 10 * (x[1] - x[0]*x[0])
			dst[1] = 1 - x[0]
		},
		Jac: func(dst *mat.Dense, x []float64) {
			dst.Set(0, 0, -20*x[0])
			dst.Set(0, 1, 10)
			dst.Set(1, 0, -1)
			dst.Set(1, 1, 0)
		},
	}
}

func TestRosenbrock(t *testing.T) {
	res, err := Minimize(rosenbrock(), []float64{-1.2, 1}, Settings{})
	if err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if !res.Status.Converged() {
		t.Fatalf("status = %v after %d iterations", res.Status, res.Iterations)
	}
	for i, v := range res.X {
		if math.Abs(v-1) > 1e-8 {
			t.Fatalf("x[%d] = %v, want 1", i, v)
		}
	}
	if res.Cost > 1e-16 {
		t.Fatalf("cost = %v, want ~0", res.Cost)
	}
}

func TestLinearFitMatchesNormalEquations(t *testing.T) {
	ts := []float64{0, 1, 2, 3, 4, 5}
	ys := []float64{1.1, 2.9, 5.2, 7.1, 8.8, 11.2}
	p := Problem{
		Residuals: len(ts),
		Func: func(dst, x []float64) {
			for i, tv := range ts {
				dst[i] = ys[i] - (x[0] + x[1]*tv)
			}
		},
	}
	res, err := Minimize(p, []float64{0, 0}, Settings{})
	if err != nil {
		t.Fatalf("Minimize: %v", err)
	}

	var st, sy, stt, sty float64
	n := float64(len(ts))
	for i, tv := range ts {
		st += tv
		sy += ys[i]
		stt += tv * tv
		sty += tv * ys[i]
	}
	slope := (n*sty - st*sy) / (n*stt - st*st)
	intercept := (sy - slope*st) / n

	if math.Abs(res.X[0]-intercept) > 1e-6 || math.Abs(res.X[1]-slope) > 1e-6 {
		t.Fatalf("x = %v, want [%v %v]", res.X, intercept, slope)
	}
}

func TestExponentialWithNumericJacobian(t *testing.T) {
	const a, b = 3.0, 0.7
	ts := make([]float64, 50)
	ys := make([]float64, 50)
	for i := range ts {
		ts[i] = float64(i) * 0.1
		ys[i] = a * math.Exp(-b*ts[i])
	}
	p := Problem{
		Residuals: len(ts),
		Func: func(dst, x []float64) {
			for i, tv := range ts {
				dst[i] = ys[i] - x[0]*math.Exp(-x[1]*tv)
			}
		},
	}
	res, err := Minimize(p, []float64{1, 1}, Settings{})
	if err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if math.Abs(res.X[0]-a) > 1e-6 || math.Abs(res.X[1]-b) > 1e-6 {
		t.Fatalf("x = %v, want [%v %v] (status %v)", res.X, a, b, res.Status)
	}
}

func TestIterationLimitReturnsBestPoint(t *testing.T) {
	start := []float64{-1.2, 1}
	p := rosenbrock()
	r0 := make([]float64, 2)
	p.Func(r0, start)
	cost0 := 0.5 * (r0[0]*r0[0] + r0[1]*r0[1])

	res, err := Minimize(p, start, Settings{MaxIterations: 2})
	if err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if res.Status != IterationLimit || res.Status.Converged() {
		t.Fatalf("status = %v, want iteration limit", res.Status)
	}
	if res.Iterations != 2 {
		t.Fatalf("iterations = %d, want 2", res.Iterations)
	}
	if res.Cost > cost0 {
		t.Fatalf("cost grew: %v > %v", res.Cost, cost0)
	}
	if start[0] != -1.2 {
		t.Fatal("Minimize modified x0")
	}
}

func TestMalformedProblems(t *testing.T) {
	f := func(dst, x []float64) { dst[0] = x[0] }
	tests := []struct {
		name string
		p    Problem
		x0   []float64
		want error
	}{
		{name: "no parameters", p: Problem{Residuals: 1, Func: f}, want: ErrNoParameters},
		{name: "no residuals", p: Problem{Func: f}, x0: []float64{1}, want: ErrNoResiduals},
		{name: "nil func", p: Problem{Residuals: 1}, x0: []float64{1}, want: ErrNoFunc},
		{name: "nan start", p: Problem{Residuals: 1, Func: f}, x0: []float64{math.NaN()}, want: ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Minimize(tt.p, tt.x0, Settings{}); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestZeroResidualStopsImmediately(t *testing.T) {
	p := Problem{
		Residuals: 3,
		Func: func(dst, x []float64) {
			for i := range dst {
				dst[i] = x[0] - 2
			}
		},
	}
	res, err := Minimize(p, []float64{2}, Settings{})
	if err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if res.Status != GradientConvergence || res.Iterations != 0 {
		t.Fatalf("status=%v iterations=%d, want gradient convergence at 0", res.Status, res.Iterations)
	}
}

func TestStatusString(t *testing.T) {
	if GradientConvergence.String() != "gradient tolerance" {
		t.Fatalf("String() = %q", GradientConvergence.String())
	}
	if Status(42).String() != "Status(42)" {
		t.Fatalf("String() = %q", Status(42).String())
	}
}
