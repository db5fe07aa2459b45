// Package numeric implements the small numerical routines behind the
// estimator: Newton interpolation, bisection and golden-section search.
//
// Every routine is a pure function of its arguments.
package numeric

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidAppliance indicates a negative, non-finite or out-of-range
	// appliance power or usage time.
	ErrInvalidAppliance = errors.New("numeric: invalid appliance")

	// ErrDegenerateInput indicates interpolation points that cannot define a
	// polynomial, such as duplicate x values or mismatched lengths.
	ErrDegenerateInput = errors.New("numeric: degenerate input")

	// ErrNoRootInRange indicates that the function does not change sign
	// between the ends of the search interval.
	ErrNoRootInRange = errors.New("numeric: no root in range")

	// ErrInvalidInterval indicates search bounds or parameters that make the
	// search meaningless (a >= b, non-finite bounds, non-positive tolerance,
	// or a rate that would divide by zero).
	ErrInvalidInterval = errors.New("numeric: invalid interval")
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkInterval(a, b, tol float64) error {
	if !isFinite(a) || !isFinite(b) {
		return fmt.Errorf("%w: bounds [%g, %g] must be finite", ErrInvalidInterval, a, b)
	}
	if a >= b {
		return fmt.Errorf("%w: lower bound %g must be below upper bound %g", ErrInvalidInterval, a, b)
	}
	if !(tol > 0) || math.IsInf(tol, 0) {
		return fmt.Errorf("%w: tolerance %g must be positive", ErrInvalidInterval, tol)
	}
	return nil
}
