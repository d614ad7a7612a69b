package peak

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 6; n++ {
		set := make(Set, n)
		for i := range set {
			set[i] = Peak{
				Position: rng.Float64() * 20,
				Spread:   1e-3 + rng.Float64(),
				Height:   rng.Float64() * 100,
			}
		}

		p := Flatten(set)
		if len(p) != 3*n {
			t.Fatalf("n=%d: len(params) = %d, want %d", n, len(p), 3*n)
		}

		back, err := Unflatten(p)
		if err != nil {
			t.Fatalf("n=%d: Unflatten: %v", n, err)
		}
		if len(back) != len(set) {
			t.Fatalf("n=%d: len(back) = %d", n, len(back))
		}
		for i := range set {
			if back[i] != set[i] {
				t.Fatalf("n=%d peak %d: got %+v want %+v", n, i, back[i], set[i])
			}
		}
	}
}

func TestFlattenOrder(t *testing.T) {
	p := Set{{Position: 1, Spread: 2, Height: 3}, {Position: 4, Spread: 5, Height: 6}}.Flatten()
	want := Params{1, 2, 3, 4, 5, 6}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("params = %v, want %v", p, want)
		}
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}

func TestUnflattenRejectsPartialTriple(t *testing.T) {
	_, err := Unflatten(Params{1, 2, 3, 4})
	if !errors.Is(err, ErrParamLength) {
		t.Fatalf("err = %v, want ErrParamLength", err)
	}
}

func TestValidateSpread(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		ok   bool
	}{
		{name: "valid", p: Params{5, 0.3, 10}, ok: true},
		{name: "zero spread", p: Params{5, 0, 10}},
		{name: "negative spread", p: Params{5, 0.3, 10, 6, -0.4, 7}},
		{name: "nan height", p: Params{5, 0.3, math.NaN()}},
		{name: "partial", p: Params{5, 0.3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if err := (Params{5, 0.3, 10, 6, -0.4, 7}).Validate(); !errors.Is(err, ErrInvalidPeakParameter) {
		t.Fatalf("err = %v, want ErrInvalidPeakParameter", err)
	}
}

func TestValidateSignal(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		ok   bool
	}{
		{name: "valid", x: []float64{0, 1, 2}, y: []float64{0, 1, 0}, ok: true},
		{name: "length mismatch", x: []float64{0, 1, 2}, y: []float64{0, 1}},
		{name: "too short", x: []float64{0}, y: []float64{1}},
		{name: "nan intensity", x: []float64{0, 1}, y: []float64{0, math.NaN()}},
		{name: "inf time", x: []float64{0, math.Inf(1)}, y: []float64{0, 1}},
		{name: "not increasing", x: []float64{0, 1, 1}, y: []float64{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignal(tt.x, tt.y)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidSignal) {
				t.Fatalf("err = %v, want ErrInvalidSignal", err)
			}
		})
	}
}
