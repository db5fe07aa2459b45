package model

// ForecastPoint is the projected usage for one future day.
type ForecastPoint struct {
	Day int     `json:"day"`
	KWh float64 `json:"kwh"`
}

// Trend is a least-squares line through the full usage history.
type Trend struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope_kwh_per_day"`
}

// At returns the trend line's value on day.
func (t Trend) At(day int) float64 {
	return t.Intercept + t.Slope*float64(day)
}

// Estimate holds everything one pass of the estimator produces.
type Estimate struct {
	DailyKWh  float64 `json:"daily_kwh"`
	DailyCost float64 `json:"daily_cost"`

	Forecast []ForecastPoint `json:"forecast"`
	Trend    Trend           `json:"trend"`

	DaysRemaining float64 `json:"days_remaining"`

	// Reduction suggestion
	OptimalReduction float64 `json:"optimal_reduction"`
	ReducedDailyKWh  float64 `json:"reduced_daily_kwh"`
	ExtendedDays     float64 `json:"extended_days"`
	DaysGained       float64 `json:"days_gained"`
}

// ForecastValues returns just the forecast kWh values in day order.
func (e Estimate) ForecastValues() []float64 {
	vals := make([]float64, len(e.Forecast))
	for i, p := range e.Forecast {
		vals[i] = p.KWh
	}
	return vals
}
