package curve_test

import (
	"fmt"

	"github.com/cwbudde/algo-chroma/stats/curve"
)

func ExampleCalculate() {
	s := curve.Calculate([]float64{0, 1, 2}, []float64{0, 2, 0})
	fmt.Printf("max=%.0f at %d area=%.1f\n", s.Max, s.MaxPos, s.Area)

	// Output:
	// max=2 at 1 area=2.0
}
