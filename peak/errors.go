package peak

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-chroma/dsp/core"
)

// Errors returned by validation helpers.
var (
	ErrInvalidSignal        = errors.New("peak: invalid signal")
	ErrInvalidPeakParameter = errors.New("peak: invalid peak parameter")
	ErrParamLength          = errors.New("peak: parameter vector length is not a multiple of 3")
)

// ValidateSignal checks that x and y form a well-formed sampled signal: equal
// lengths of at least two samples, finite values and strictly increasing x.
func ValidateSignal(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: time has %d samples, intensity has %d", ErrInvalidSignal, len(x), len(y))
	}
	if len(x) < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidSignal, len(x))
	}
	if i := core.AllFinite(x); i >= 0 {
		return fmt.Errorf("%w: non-finite time %v at index %d", ErrInvalidSignal, x[i], i)
	}
	if i := core.AllFinite(y); i >= 0 {
		return fmt.Errorf("%w: non-finite intensity %v at index %d", ErrInvalidSignal, y[i], i)
	}
	if i := core.StrictlyIncreasing(x); i >= 0 {
		return fmt.Errorf("%w: time not strictly increasing at index %d (%v after %v)", ErrInvalidSignal, i, x[i], x[i-1])
	}
	return nil
}
