package interp

import (
	"math"

	"github.com/cwbudde/algo-chroma/dsp/core"
)

// Linear2 interpolates from x0 to x1 at frac in [0,1].
func Linear2(frac, x0, x1 float64) float64 {
	return x0 + frac*(x1-x0)
}

// InverseLinear returns the fraction along the segment y0 -> y1 at which the
// segment reaches level. A flat segment yields 0.
func InverseLinear(level, y0, y1 float64) float64 {
	d := y1 - y0
	if d == 0 {
		return 0
	}
	return (level - y0) / d
}

// AtIndex returns xs evaluated at the fractional index pos, clamping pos to
// the valid range. An empty slice yields 0.
func AtIndex(xs []float64, pos float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if math.IsNaN(pos) {
		return xs[0]
	}
	pos = core.Clamp(pos, 0, float64(n-1))
	i := int(pos)
	if i == n-1 {
		return xs[i]
	}
	return Linear2(pos-float64(i), xs[i], xs[i+1])
}
