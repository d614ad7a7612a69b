package interp

import (
	"math"
	"testing"
)

func TestLinear2(t *testing.T) {
	if got := Linear2(0.25, 2, 4); got != 2.5 {
		t.Fatalf("Linear2 = %v, want 2.5", got)
	}
}

func TestInverseLinear(t *testing.T) {
	for _, tc := range []struct {
		level, y0, y1 float64
		w             float64
	}{
		{level: 5, y0: 0, y1: 10, w: 0.5},
		{level: 5, y0: 10, y1: 0, w: 0.5},
		{level: 2.5, y0: 2, y1: 4, w: 0.25},
		{level: 3, y0: 3, y1: 3, w: 0},
	} {
		got := InverseLinear(tc.level, tc.y0, tc.y1)
		if diff := got - tc.w; diff < -1e-12 || diff > 1e-12 {
			t.Fatalf("InverseLinear(%v,%v,%v) = %v want %v", tc.level, tc.y0, tc.y1, got, tc.w)
		}
		if back := Linear2(got, tc.y0, tc.y1); tc.y0 != tc.y1 && back != tc.level {
			t.Fatalf("round trip = %v, want %v", back, tc.level)
		}
	}
}

func TestAtIndex(t *testing.T) {
	xs := []float64{0, 0.1, 0.2, 0.4}
	for _, tc := range []struct {
		pos float64
		w   float64
	}{
		{pos: -1, w: 0},
		{pos: 0, w: 0},
		{pos: 1.5, w: 0.15},
		{pos: 2.5, w: 0.3},
		{pos: 3, w: 0.4},
		{pos: 10, w: 0.4},
	} {
		got := AtIndex(xs, tc.pos)
		if diff := got - tc.w; diff < -1e-12 || diff > 1e-12 {
			t.Fatalf("pos=%v: got %v want %v", tc.pos, got, tc.w)
		}
	}
	if got := AtIndex([]float64{7}, 0.5); got != 7 {
		t.Fatalf("single = %v, want 7", got)
	}
	if got := AtIndex(xs, math.NaN()); got != 0 {
		t.Fatalf("NaN = %v, want first sample", got)
	}
	if got := AtIndex(nil, 1); got != 0 {
		t.Fatalf("empty = %v, want 0", got)
	}
}
