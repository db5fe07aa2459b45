package numeric

import "math"

// phi is the golden ratio, (1 + √5) / 2.
const phi = 1.618033988749895

// GoldenSection returns an approximate minimiser of f over [a, b].
//
// f is assumed unimodal on the interval; that is not checked. A monotone f
// is the degenerate case and converges towards the lower-valued end while
// staying strictly inside the interval.
func GoldenSection(f func(float64) float64, a, b, tol float64) (float64, error) {
	if err := checkInterval(a, b, tol); err != nil {
		return 0, err
	}

	c := b - (b-a)/phi
	d := a + (b-a)/phi
	for math.Abs(c-d) > tol {
		if f(c) < f(d) {
			b = d
		} else {
			a = c
		}
		c = b - (b-a)/phi
		d = a + (b-a)/phi
	}
	return (a + b) / 2, nil
}
