package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1.0, 2.0, 3.0}, []float64{1.0, 2.1, 3.0})
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}
	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxAbsDiff = %v, want 0.1", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestRequireRelClose(t *testing.T) {
	RequireRelClose(t, "exact", 10, 10, 0)
	RequireRelClose(t, "close", 10.0001, 10, 1e-4)
	RequireRelClose(t, "zero", 1e-9, 0, 1e-8)
}

func TestRequireNearlyEqual(t *testing.T) {
	RequireNearlyEqual(t, "absolute", 1e-13, 0, 1e-12)
	RequireNearlyEqual(t, "relative", 1e6+1e-7, 1e6, 1e-12)
}
