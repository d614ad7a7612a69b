// Package curve computes summary statistics of sampled curves, such as the
// dense evaluation of one fitted peak.
package curve

import "math"

// Stats holds statistics of a curve y(x).
type Stats struct {
	Length   int
	Mean     float64 // mean of the sample values
	Variance float64 // population variance of the sample values
	StdDev   float64
	Max      float64
	MaxPos   int
	Min      float64
	MinPos   int
	Area     float64 // trapezoidal integral over x
}

// Calculate computes all statistics in a single pass. Moments use Welford's
// online update. Area is zero when x is nil or its length differs from y.
func Calculate(x, y []float64) Stats {
	n := len(y)
	if n == 0 {
		return Stats{}
	}

	var (
		mean   float64
		m2     float64
		area   float64
		maxVal = y[0]
		maxPos int
		minVal = y[0]
		minPos int
	)

	withArea := len(x) == n
	for i, v := range y {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)

		if v > maxVal {
			maxVal = v
			maxPos = i
		}
		if v < minVal {
			minVal = v
			minPos = i
		}

		if withArea && i > 0 {
			area += 0.5 * (x[i] - x[i-1]) * (v + y[i-1])
		}
	}

	variance := m2 / float64(n)

	return Stats{
		Length:   n,
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Max:      maxVal,
		MaxPos:   maxPos,
		Min:      minVal,
		MinPos:   minPos,
		Area:     area,
	}
}

// Trapezoid integrates y over x with the trapezoidal rule. Mismatched or
// too-short inputs integrate to zero.
func Trapezoid(x, y []float64) float64 {
	if len(x) != len(y) || len(y) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(y); i++ {
		sum += 0.5 * (x[i] - x[i-1]) * (y[i] + y[i-1])
	}
	return sum
}

// StdDev returns the population standard deviation of the sample values.
func StdDev(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var mean, m2 float64
	for i, v := range y {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
	}
	return math.Sqrt(m2 / float64(len(y)))
}
