// Package smooth provides zero-phase smoothing of sampled intensity curves.
package smooth

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/floats"
)

// ErrEmptyInput is returned when there is nothing to smooth.
var ErrEmptyInput = errors.New("smooth: empty input")

// kernelRadius is the kernel half-length in standard deviations.
const kernelRadius = 4

// Kernel returns a normalized Gaussian kernel of length 2*ceil(4*sigma)+1.
// sigma is in samples; sigma <= 0 yields the identity kernel {1}.
func Kernel(sigma float64) []float64 {
	if sigma <= 0 || math.IsNaN(sigma) {
		return []float64{1}
	}
	r := int(math.Ceil(kernelRadius * sigma))
	k := make([]float64, 2*r+1)
	for i := range k {
		d := float64(i - r)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(k), k)
	return k
}

// Gaussian smooths y with a Gaussian kernel of the given width in samples.
// Edges are extended by replicating the first and last samples, so the
// output has the same length as y and no phase shift.
func Gaussian(y []float64, sigma float64) ([]float64, error) {
	if len(y) == 0 {
		return nil, ErrEmptyInput
	}
	kernel := Kernel(sigma)
	if len(kernel) == 1 {
		return append([]float64(nil), y...), nil
	}
	r := len(kernel) / 2

	padded := make([]float64, len(y)+2*r)
	for i := range padded {
		j := i - r
		switch {
		case j < 0:
			j = 0
		case j >= len(y):
			j = len(y) - 1
		}
		padded[i] = y[j]
	}

	full, err := fftConvolve(padded, kernel)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(y))
	copy(out, full[2*r:2*r+len(y)])
	return out, nil
}

// fftConvolve returns the full linear convolution of a and b.
func fftConvolve(a, b []float64) ([]float64, error) {
	outLen := len(a) + len(b) - 1
	fftSize := nextPowerOf2(outLen)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("smooth: failed to create FFT plan: %w", err)
	}

	fa := make([]complex128, fftSize)
	fb := make([]complex128, fftSize)
	for i, v := range a {
		fa[i] = complex(v, 0)
	}
	for i, v := range b {
		fb[i] = complex(v, 0)
	}

	if err := plan.Forward(fa, fa); err != nil {
		return nil, fmt.Errorf("smooth: forward FFT failed: %w", err)
	}
	if err := plan.Forward(fb, fb); err != nil {
		return nil, fmt.Errorf("smooth: forward FFT failed: %w", err)
	}
	for i := range fa {
		fa[i] *= fb[i]
	}
	if err := plan.Inverse(fa, fa); err != nil {
		return nil, fmt.Errorf("smooth: inverse FFT failed: %w", err)
	}

	out := make([]float64, outLen)
	for i := range out {
		out[i] = real(fa[i])
	}
	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
