package testutil

import (
	"math"
	"math/rand"
)

// Component is one Gaussian used to build synthetic chromatograms.
type Component struct {
	Position, Spread, Height float64
}

// Grid returns samples start, start+step, ... up to and including stop.
func Grid(start, stop, step float64) []float64 {
	n := int(math.Floor((stop-start)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// GaussianSum evaluates the exact sum of comps at every x.
func GaussianSum(x []float64, comps ...Component) []float64 {
	out := make([]float64, len(x))
	for _, c := range comps {
		for i, v := range x {
			d := v - c.Position
			out[i] += c.Height * math.Exp(-d*d/(2*c.Spread*c.Spread))
		}
	}
	return out
}

// TwoPeakChromatogram is the reference two-component signal: (5.0, 0.3, 10)
// and (6.0, 0.4, 7) sampled every 0.01 from 0 to 10 without noise.
func TwoPeakChromatogram() (x, y []float64, comps []Component) {
	comps = []Component{
		{Position: 5.0, Spread: 0.3, Height: 10},
		{Position: 6.0, Spread: 0.4, Height: 7},
	}
	x = Grid(0, 10, 0.01)
	return x, GaussianSum(x, comps...), comps
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}
