package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBisect_LinearCost(t *testing.T) {
	const balance, perDay = 50.0, 9.792
	f := func(t float64) float64 { return balance - perDay*t }

	got, err := Bisect(f, 0, 30, DefaultTolerance)
	require.NoError(t, err)
	assert.InDelta(t, balance/perDay, got, DefaultTolerance)
	assert.InDelta(t, 5.1, got, 0.05)
}

func TestBisect_DecreasingAndIncreasing(t *testing.T) {
	rising := func(x float64) float64 { return x*x - 2 }
	got, err := Bisect(rising, 0, 2, 1e-6)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, got, 1e-6)

	falling := func(x float64) float64 { return 2 - x*x }
	got, err = Bisect(falling, 0, 2, 1e-6)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, got, 1e-6)
}

func TestBisect_ExactRoots(t *testing.T) {
	f := func(x float64) float64 { return x - 1 }

	got, err := Bisect(f, 1, 5, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = Bisect(f, -3, 1, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	// Root lands exactly on the first midpoint.
	got, err = Bisect(f, 0, 2, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestBisect_NoSignChange(t *testing.T) {
	// Balance never runs out within the horizon.
	outlasts := func(t float64) float64 { return 500 - 9.472*t }
	_, err := Bisect(outlasts, 0, 30, DefaultTolerance)
	assert.ErrorIs(t, err, ErrNoRootInRange)

	// Already exhausted at t=0.
	exhausted := func(t float64) float64 { return -1 - t }
	_, err = Bisect(exhausted, 0, 30, DefaultTolerance)
	assert.ErrorIs(t, err, ErrNoRootInRange)

	undefined := func(float64) float64 { return math.NaN() }
	_, err = Bisect(undefined, 0, 30, DefaultTolerance)
	assert.ErrorIs(t, err, ErrNoRootInRange)
}

func TestBisect_InvalidInterval(t *testing.T) {
	f := func(x float64) float64 { return x }

	for name, args := range map[string][3]float64{
		"reversed":      {5, 1, 0.01},
		"empty":         {1, 1, 0.01},
		"zero tol":      {-1, 1, 0},
		"negative tol":  {-1, 1, -0.1},
		"infinite left": {math.Inf(-1), 1, 0.01},
		"nan right":     {-1, math.NaN(), 0.01},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Bisect(f, args[0], args[1], args[2])
			assert.ErrorIs(t, err, ErrInvalidInterval)
		})
	}
}

func TestBisect_IterationBound(t *testing.T) {
	calls := 0
	f := func(t float64) float64 {
		calls++
		return 50 - 9.472*t
	}
	_, err := Bisect(f, 0, 30, DefaultTolerance)
	require.NoError(t, err)

	// Two endpoint evaluations plus one per halving; 30/2^12 < 0.01.
	assert.LessOrEqual(t, calls, 2+12)
}
