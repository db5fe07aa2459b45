package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/theirongolddev/kburn/internal/numeric"
)

// CostFunc maps elapsed days to cumulative cost.
type CostFunc func(days float64) float64

// ObjectiveFunc maps a usage reduction fraction to a value to minimise.
type ObjectiveFunc func(reduction float64) float64

// Default search bounds.
const (
	DefaultMaxDays      = 30.0
	DefaultReductionMin = 0.0
	DefaultReductionMax = 0.5
)

// LinearCost spends the same amount every day.
func LinearCost(dailyCost float64) CostFunc {
	return func(days float64) float64 { return dailyCost * days }
}

// DaysRemaining finds the day at which cumulative cost reaches balance,
// searching [0, maxDays] to within tol days.
//
// Returns numeric.ErrInvalidInterval for a negative or non-finite balance and
// numeric.ErrNoRootInRange when the balance is already below the cost at day
// zero or is not exhausted by maxDays.
func DaysRemaining(balance float64, cost CostFunc, maxDays, tol float64) (float64, error) {
	if math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
		return 0, fmt.Errorf("%w: balance %g must be a non-negative number", numeric.ErrInvalidInterval, balance)
	}
	f := func(t float64) float64 { return balance - cost(t) }

	days, err := numeric.Bisect(f, 0, maxDays, tol)
	if errors.Is(err, numeric.ErrNoRootInRange) {
		if c0 := cost(0); c0 > balance {
			return 0, fmt.Errorf("%w: balance %.2f is below the %.2f already owed at day 0",
				numeric.ErrNoRootInRange, balance, c0)
		}
		return 0, fmt.Errorf("%w: balance %.2f lasts beyond the %g-day horizon (%.2f spent by then)",
			numeric.ErrNoRootInRange, balance, maxDays, cost(maxDays))
	}
	return days, err
}

// ReductionObjective returns the negated balance life, in days, when daily
// usage is cut by the given fraction. Minimising it maximises life.
func ReductionObjective(dailyKWh, balance, costPerKWh float64) (ObjectiveFunc, error) {
	if !(costPerKWh > 0) || math.IsInf(costPerKWh, 0) {
		return nil, fmt.Errorf("%w: cost per kWh %g must be positive", numeric.ErrInvalidInterval, costPerKWh)
	}
	if !(dailyKWh > 0) || math.IsInf(dailyKWh, 0) {
		return nil, fmt.Errorf("%w: daily usage %g kWh must be positive to reduce", numeric.ErrInvalidInterval, dailyKWh)
	}
	return func(r float64) float64 {
		reduced := dailyKWh * (1 - r)
		return -balance / (reduced * costPerKWh)
	}, nil
}

// OptimalReduction searches [lo, hi] for the reduction fraction that
// maximises balance life. The bounds must satisfy 0 <= lo < hi < 1 so the
// reduced usage never reaches zero.
func OptimalReduction(objective ObjectiveFunc, lo, hi, tol float64) (float64, error) {
	if lo < 0 || hi >= 1 || !(lo < hi) {
		return 0, fmt.Errorf("%w: reduction bounds [%g, %g] must satisfy 0 <= lo < hi < 1",
			numeric.ErrInvalidInterval, lo, hi)
	}
	return numeric.GoldenSection(objective, lo, hi, tol)
}
