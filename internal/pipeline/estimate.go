package pipeline

import (
	"fmt"
	"math"

	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/numeric"
)

// Input is everything one estimate needs. Zero tolerances, window and
// horizon fall back to the defaults.
type Input struct {
	Appliances []model.ApplianceSpec
	Balance    float64
	CostPerKWh float64

	History      []model.UsageSample
	Window       int
	ForecastDays []int

	MaxDays      float64
	DayTolerance float64

	ReductionMin       float64
	ReductionMax       float64
	ReductionTolerance float64
}

// DefaultInput returns an input with the default window, horizon and search
// bounds and no appliances, balance or history.
func DefaultInput() Input {
	return Input{
		Window:             DefaultWindow,
		MaxDays:            DefaultMaxDays,
		DayTolerance:       numeric.DefaultTolerance,
		ReductionMin:       DefaultReductionMin,
		ReductionMax:       DefaultReductionMax,
		ReductionTolerance: numeric.DefaultTolerance,
	}
}

func (in Input) withDefaults() Input {
	if in.Window == 0 {
		in.Window = DefaultWindow
	}
	if in.MaxDays == 0 {
		in.MaxDays = DefaultMaxDays
	}
	if in.DayTolerance == 0 {
		in.DayTolerance = numeric.DefaultTolerance
	}
	if in.ReductionMin == 0 && in.ReductionMax == 0 {
		in.ReductionMin, in.ReductionMax = DefaultReductionMin, DefaultReductionMax
	}
	if in.ReductionTolerance == 0 {
		in.ReductionTolerance = numeric.DefaultTolerance
	}
	return in
}

// Estimate runs the full estimator. It either returns a complete result or
// the first error, prefixed with the stage that failed.
func Estimate(in Input) (model.Estimate, error) {
	in = in.withDefaults()

	if !(in.CostPerKWh > 0) || math.IsInf(in.CostPerKWh, 0) {
		return model.Estimate{}, fmt.Errorf("checking tariff: %w: cost per kWh %g must be positive",
			numeric.ErrInvalidInterval, in.CostPerKWh)
	}
	if math.IsNaN(in.Balance) || math.IsInf(in.Balance, 0) || in.Balance < 0 {
		return model.Estimate{}, fmt.Errorf("checking tariff: %w: balance %g must be a non-negative number",
			numeric.ErrInvalidInterval, in.Balance)
	}

	dailyKWh, err := DailyKWh(in.Appliances)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("aggregating appliances: %w", err)
	}
	dailyCost := dailyKWh * in.CostPerKWh

	forecast, trend, err := forecast(in)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("forecasting usage: %w", err)
	}

	days, err := DaysRemaining(in.Balance, LinearCost(dailyCost), in.MaxDays, in.DayTolerance)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("estimating days remaining: %w", err)
	}

	objective, err := ReductionObjective(dailyKWh, in.Balance, in.CostPerKWh)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("optimizing reduction: %w", err)
	}
	reduction, err := OptimalReduction(objective, in.ReductionMin, in.ReductionMax, in.ReductionTolerance)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("optimizing reduction: %w", err)
	}
	reducedKWh := dailyKWh * (1 - reduction)
	extended, err := DaysRemaining(in.Balance, LinearCost(reducedKWh*in.CostPerKWh), in.MaxDays, in.DayTolerance)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("estimating extended life: %w", err)
	}

	return model.Estimate{
		DailyKWh:         dailyKWh,
		DailyCost:        dailyCost,
		Forecast:         forecast,
		Trend:            trend,
		DaysRemaining:    days,
		OptimalReduction: reduction,
		ReducedDailyKWh:  reducedKWh,
		ExtendedDays:     extended,
		DaysGained:       extended - days,
	}, nil
}

// Forecast runs only the forecasting stage of the estimator.
func Forecast(in Input) ([]model.ForecastPoint, model.Trend, error) {
	return forecast(in.withDefaults())
}

func forecast(in Input) ([]model.ForecastPoint, model.Trend, error) {
	days := in.ForecastDays
	if days == nil {
		days = NextDays(in.History, DefaultForecastCount)
	}
	if err := checkForecastDays(days); err != nil {
		return nil, model.Trend{}, err
	}

	fc, err := NewForecaster(in.History, in.Window)
	if err != nil {
		return nil, model.Trend{}, err
	}
	trend, err := FitTrend(in.History)
	if err != nil {
		return nil, model.Trend{}, err
	}
	return fc.Points(days), trend, nil
}
