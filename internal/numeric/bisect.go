package numeric

import (
	"fmt"
	"math"
)

// DefaultTolerance is the bracket width at which bisection and
// golden-section search stop.
const DefaultTolerance = 0.01

// Bisect finds a root of f in [a, b] by repeated halving and returns the
// midpoint of the final bracket, whose width is at most tol.
//
// f must change sign between a and b; if it does not, Bisect returns
// ErrNoRootInRange instead of converging to an arbitrary endpoint. An
// endpoint where f is exactly zero is returned as is.
func Bisect(f func(float64) float64, a, b, tol float64) (float64, error) {
	if err := checkInterval(a, b, tol); err != nil {
		return 0, err
	}

	fa, fb := f(a), f(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, fmt.Errorf("%w: f is undefined at an endpoint of [%g, %g]", ErrNoRootInRange, a, b)
	}
	switch {
	case fa == 0:
		return a, nil
	case fb == 0:
		return b, nil
	case math.Signbit(fa) == math.Signbit(fb):
		return 0, fmt.Errorf("%w: f(%g) = %g and f(%g) = %g have the same sign",
			ErrNoRootInRange, a, fa, b, fb)
	}

	for b-a > tol {
		mid := (a + b) / 2
		fm := f(mid)
		if fm == 0 {
			return mid, nil
		}
		if fm*fa < 0 {
			b = mid
		} else {
			a, fa = mid, fm
		}
	}
	return (a + b) / 2, nil
}
