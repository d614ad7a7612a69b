package core

import "testing"

func TestApplySamplingOptions(t *testing.T) {
	cfg := ApplySamplingOptions(WithRange(2, 4), WithStep(0.5))
	if cfg.Start != 2 || cfg.Stop != 4 || cfg.Step != 0.5 {
		t.Fatalf("cfg = %#v", cfg)
	}
	if n := cfg.Samples(); n != 5 {
		t.Fatalf("Samples() = %d, want 5", n)
	}
}

func TestInvalidSamplingOptionsIgnored(t *testing.T) {
	cfg := ApplySamplingOptions(WithRange(3, 1), WithStep(0))
	def := DefaultSamplingConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestDefaultGrid(t *testing.T) {
	grid := DefaultSamplingConfig().Grid()
	if len(grid) != 1001 {
		t.Fatalf("len = %d, want 1001", len(grid))
	}
	if !NearlyEqual(grid[500], 5, 1e-12) {
		t.Fatalf("grid[500] = %v, want 5", grid[500])
	}
}
