package numeric

import (
	"fmt"
	"iter"
	"math"
)

// DividedDifferences returns the coefficients of the Newton interpolating
// polynomial through (xs[i], ys[i]). coef[0] is ys[0]; coef[k] is the k-th
// order divided difference. xs need not be sorted but must be distinct.
func DividedDifferences(xs, ys []float64) ([]float64, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x values and %d y values", ErrDegenerateInput, len(xs), len(ys))
	}
	for i, x := range xs {
		if !isFinite(x) || !isFinite(ys[i]) {
			return nil, fmt.Errorf("%w: point %d (%g, %g) is not finite", ErrDegenerateInput, i, x, ys[i])
		}
		for j := 0; j < i; j++ {
			if xs[j] == x {
				return nil, fmt.Errorf("%w: x value %g appears twice", ErrDegenerateInput, x)
			}
		}
	}

	n := len(xs)
	coef := make([]float64, n)
	copy(coef, ys)
	for j := 1; j < n; j++ {
		for i := n - 1; i >= j; i-- {
			coef[i] = (coef[i] - coef[i-1]) / (xs[i] - xs[i-j])
		}
	}
	return coef, nil
}

// Horner evaluates the Newton polynomial given by coef and its nodes xs at
// target using the nested form. xs must hold at least len(coef)-1 nodes.
func Horner(coef, xs []float64, target float64) float64 {
	n := len(coef)
	if n == 0 {
		return 0
	}
	result := coef[n-1]
	for i := n - 2; i >= 0; i-- {
		result = result*(target-xs[i]) + coef[i]
	}
	return result
}

// Evaluate is Horner rounded to two decimals and clamped at zero.
// Energy use cannot be negative, so extrapolation below zero reads as zero.
func Evaluate(coef, xs []float64, target float64) float64 {
	v := math.Round(Horner(coef, xs, target)*100) / 100
	return math.Max(0, v)
}

// Newton is an interpolating polynomial built once from a set of points.
type Newton struct {
	xs   []float64
	coef []float64
}

// NewNewton fits the polynomial through the given points.
func NewNewton(xs, ys []float64) (*Newton, error) {
	coef, err := DividedDifferences(xs, ys)
	if err != nil {
		return nil, err
	}
	nodes := make([]float64, len(xs))
	copy(nodes, xs)
	return &Newton{xs: nodes, coef: coef}, nil
}

// Degree is the polynomial degree, one less than the number of points.
func (p *Newton) Degree() int { return len(p.coef) - 1 }

// Coefficients returns a copy of the divided-difference coefficients.
func (p *Newton) Coefficients() []float64 {
	out := make([]float64, len(p.coef))
	copy(out, p.coef)
	return out
}

// At evaluates the polynomial at x with the non-negative, two-decimal policy.
func (p *Newton) At(x float64) float64 {
	return Evaluate(p.coef, p.xs, x)
}

// Values yields (x, p.At(x)) for each x in order. The sequence is lazy and
// can be ranged over any number of times.
func (p *Newton) Values(xs []float64) iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		for _, x := range xs {
			if !yield(x, p.At(x)) {
				return
			}
		}
	}
}
