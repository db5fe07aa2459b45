package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDividedDifferences_Quadratic(t *testing.T) {
	coef, err := DividedDifferences([]float64{3, 4, 5}, []float64{6.1, 6.3, 6.4})
	require.NoError(t, err)
	require.Len(t, coef, 3)

	assert.InDelta(t, 6.1, coef[0], 1e-12)
	assert.InDelta(t, 0.2, coef[1], 1e-12)
	assert.InDelta(t, -0.05, coef[2], 1e-12)
}

func TestDividedDifferences_DoesNotMutateInput(t *testing.T) {
	ys := []float64{1, 4, 9}
	_, err := DividedDifferences([]float64{1, 2, 3}, ys)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 9}, ys)
}

func TestDividedDifferences_Degenerate(t *testing.T) {
	cases := map[string]struct {
		xs, ys []float64
	}{
		"duplicate x":     {xs: []float64{1, 2, 1}, ys: []float64{1, 2, 3}},
		"length mismatch": {xs: []float64{1, 2}, ys: []float64{1}},
		"empty":           {},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DividedDifferences(tc.xs, tc.ys)
			assert.ErrorIs(t, err, ErrDegenerateInput)
		})
	}
}

func TestEvaluate_ExactAtNodes(t *testing.T) {
	// Unsorted nodes are fine as long as they are distinct.
	xs := []float64{5, 1, 3, 2}
	ys := []float64{6.4, 5.8, 6.1, 6.0}
	coef, err := DividedDifferences(xs, ys)
	require.NoError(t, err)

	for i := range xs {
		assert.InDelta(t, ys[i], Evaluate(coef, xs, xs[i]), 1e-9, "node %d", i)
	}
}

func TestEvaluate_ClampsAtZero(t *testing.T) {
	// Falling line: 4, 2 at x=1,2 reaches zero at x=3 and goes negative after.
	p, err := NewNewton([]float64{1, 2}, []float64{4, 2})
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.At(3))
	assert.Equal(t, 0.0, p.At(10))
	assert.InDelta(t, 6.0, p.At(0), 1e-12)
}

func TestEvaluate_RoundsToTwoDecimals(t *testing.T) {
	p, err := NewNewton([]float64{0, 3}, []float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.33, p.At(1))
	assert.Equal(t, 0.67, p.At(2))
}

func TestNewton_ValuesIsRestartable(t *testing.T) {
	p, err := NewNewton([]float64{3, 4, 5}, []float64{6.1, 6.3, 6.4})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Degree())

	days := []float64{6, 7, 8, 9, 10}
	collect := func() []float64 {
		var out []float64
		for _, v := range p.Values(days) {
			out = append(out, v)
		}
		return out
	}

	first := collect()
	assert.Equal(t, []float64{6.4, 6.3, 6.1, 5.8, 5.4}, first)
	assert.Equal(t, first, collect())

	// Early break stops evaluation.
	n := 0
	for range p.Values(days) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestNewton_CoefficientsAreCopied(t *testing.T) {
	p, err := NewNewton([]float64{0, 1}, []float64{1, 3})
	require.NoError(t, err)

	c := p.Coefficients()
	c[0] = 100
	assert.InDelta(t, 1.0, p.At(0), 1e-12)
}
