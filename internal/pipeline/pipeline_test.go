package pipeline

import (
	"math"
	"testing"

	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/numeric"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceAppliances() []model.ApplianceSpec {
	return []model.ApplianceSpec{
		{Name: "Fan", PowerWatts: 70, HoursPerDay: 8},
		{Name: "Fridge", PowerWatts: 200, HoursPerDay: 24},
		{Name: "Bulb", PowerWatts: 10, HoursPerDay: 6},
		{Name: "TV", PowerWatts: 100, HoursPerDay: 5},
	}
}

func referenceHistory() []model.UsageSample {
	return []model.UsageSample{
		{Day: 1, KWh: 5.8},
		{Day: 2, KWh: 6.0},
		{Day: 3, KWh: 6.1},
		{Day: 4, KWh: 6.3},
		{Day: 5, KWh: 6.4},
	}
}

func referenceInput() Input {
	in := DefaultInput()
	in.Appliances = referenceAppliances()
	in.Balance = 50
	in.CostPerKWh = 1.6
	in.History = referenceHistory()
	in.ForecastDays = DayRange(6, 5)
	return in
}

func TestDailyKWh(t *testing.T) {
	got, err := DailyKWh(referenceAppliances())
	require.NoError(t, err)

	var want float64
	for _, a := range referenceAppliances() {
		want += a.PowerWatts * a.HoursPerDay / 1000
	}
	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, 5.92, got, 1e-9)

	empty, err := DailyKWh(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty)
}

func TestDailyKWh_DuplicateNamesAllowed(t *testing.T) {
	got, err := DailyKWh([]model.ApplianceSpec{
		{Name: "Bulb", PowerWatts: 10, HoursPerDay: 6},
		{Name: "Bulb", PowerWatts: 10, HoursPerDay: 6},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.12, got, 1e-12)
}

func TestDailyKWh_InvalidAppliance(t *testing.T) {
	for name, a := range map[string]model.ApplianceSpec{
		"negative power": {Name: "x", PowerWatts: -1, HoursPerDay: 1},
		"nan power":      {Name: "x", PowerWatts: math.NaN(), HoursPerDay: 1},
		"inf power":      {Name: "x", PowerWatts: math.Inf(1), HoursPerDay: 1},
		"negative hours": {Name: "x", PowerWatts: 10, HoursPerDay: -2},
		"too many hours": {Name: "x", PowerWatts: 10, HoursPerDay: 25},
		"nan hours":      {Name: "x", PowerWatts: 10, HoursPerDay: math.NaN()},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DailyKWh([]model.ApplianceSpec{a})
			assert.ErrorIs(t, err, numeric.ErrInvalidAppliance)
		})
	}
}

func TestBreakdown(t *testing.T) {
	shares, err := Breakdown(referenceAppliances())
	require.NoError(t, err)
	require.Len(t, shares, 4)

	assert.Equal(t, "Fridge", shares[1].Appliance.Name)
	assert.InDelta(t, 4.8, shares[1].KWh, 1e-12)
	assert.InDelta(t, 4.8/5.92*100, shares[1].SharePercent, 1e-9)

	var total float64
	for _, s := range shares {
		total += s.SharePercent
	}
	assert.InDelta(t, 100, total, 1e-9)
}

func TestWindow(t *testing.T) {
	win, err := Window(referenceHistory(), 3)
	require.NoError(t, err)
	assert.Equal(t, []model.UsageSample{{Day: 3, KWh: 6.1}, {Day: 4, KWh: 6.3}, {Day: 5, KWh: 6.4}}, win)

	win, err = Window(referenceHistory()[:2], 3)
	require.NoError(t, err)
	assert.Len(t, win, 2)

	_, err = Window(referenceHistory(), 1)
	assert.ErrorIs(t, err, numeric.ErrDegenerateInput)

	_, err = Window(referenceHistory()[:1], 3)
	assert.ErrorIs(t, err, numeric.ErrDegenerateInput)
}

func TestForecaster_QuadraticWindow(t *testing.T) {
	fc, err := NewForecaster(referenceHistory(), 3)
	require.NoError(t, err)

	points := fc.Points(DayRange(6, 5))
	require.Len(t, points, 5)

	// The quadratic through days 3-5 bends downward past the window.
	want := []float64{6.4, 6.3, 6.1, 5.8, 5.4}
	for i, p := range points {
		assert.Equal(t, 6+i, p.Day)
		assert.InDelta(t, want[i], p.KWh, 1e-9)
		assert.GreaterOrEqual(t, p.KWh, 0.0)
	}
}

func TestForecaster_LinearWindow(t *testing.T) {
	fc, err := NewForecaster(referenceHistory(), 2)
	require.NoError(t, err)

	var got []float64
	for _, kwh := range fc.Days(DayRange(6, 5)) {
		got = append(got, kwh)
	}
	assert.InDeltaSlice(t, []float64{6.5, 6.6, 6.7, 6.8, 6.9}, got, 1e-9)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1])
	}
}

func TestForecaster_ExactOnWindow(t *testing.T) {
	fc, err := NewForecaster(referenceHistory(), 5)
	require.NoError(t, err)
	for _, s := range referenceHistory() {
		assert.InDelta(t, s.KWh, fc.At(s.Day), 1e-9)
	}
}

func TestForecaster_NeverNegative(t *testing.T) {
	falling := []model.UsageSample{{Day: 1, KWh: 9}, {Day: 2, KWh: 5}, {Day: 3, KWh: 2}}
	fc, err := NewForecaster(falling, 3)
	require.NoError(t, err)
	for _, kwh := range fc.Days(DayRange(1, 60)) {
		assert.GreaterOrEqual(t, kwh, 0.0)
	}
}

func TestForecaster_RejectsUnorderedHistory(t *testing.T) {
	_, err := NewForecaster([]model.UsageSample{{Day: 2, KWh: 1}, {Day: 2, KWh: 3}}, 2)
	assert.ErrorIs(t, err, numeric.ErrDegenerateInput)

	_, err = NewForecaster([]model.UsageSample{{Day: 3, KWh: 1}, {Day: 1, KWh: 3}}, 2)
	assert.ErrorIs(t, err, numeric.ErrDegenerateInput)

	_, err = NewForecaster([]model.UsageSample{{Day: 1, KWh: -1}, {Day: 2, KWh: 3}}, 2)
	assert.ErrorIs(t, err, numeric.ErrDegenerateInput)
}

func TestNextDays(t *testing.T) {
	assert.Equal(t, []int{6, 7, 8}, NextDays(referenceHistory(), 3))
	assert.Equal(t, []int{1, 2}, NextDays(nil, 2))
	assert.Empty(t, DayRange(4, -1))
}

func TestFitTrend(t *testing.T) {
	trend, err := FitTrend(referenceHistory())
	require.NoError(t, err)
	assert.InDelta(t, 0.15, trend.Slope, 1e-9)
	assert.InDelta(t, 5.67, trend.Intercept, 1e-9)
	assert.InDelta(t, 6.57, trend.At(6), 1e-9)
}

func TestDaysRemaining(t *testing.T) {
	days, err := DaysRemaining(50, LinearCost(9.792), DefaultMaxDays, numeric.DefaultTolerance)
	require.NoError(t, err)
	assert.InDelta(t, 50/9.792, days, numeric.DefaultTolerance)
}

func TestDaysRemaining_NoRoot(t *testing.T) {
	_, err := DaysRemaining(500, LinearCost(9.472), DefaultMaxDays, numeric.DefaultTolerance)
	require.ErrorIs(t, err, numeric.ErrNoRootInRange)
	assert.Contains(t, err.Error(), "horizon")

	upfront := func(days float64) float64 { return 60 + 9.472*days }
	_, err = DaysRemaining(50, upfront, DefaultMaxDays, numeric.DefaultTolerance)
	require.ErrorIs(t, err, numeric.ErrNoRootInRange)
	assert.Contains(t, err.Error(), "day 0")
}

func TestDaysRemaining_ZeroBalance(t *testing.T) {
	days, err := DaysRemaining(0, LinearCost(9.472), DefaultMaxDays, numeric.DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, 0.0, days)
}

func TestDaysRemaining_InvalidBalance(t *testing.T) {
	for _, balance := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -5} {
		_, err := DaysRemaining(balance, LinearCost(9.472), DefaultMaxDays, numeric.DefaultTolerance)
		require.ErrorIs(t, err, numeric.ErrInvalidInterval, "balance %g", balance)
		assert.NotErrorIs(t, err, numeric.ErrNoRootInRange, "balance %g", balance)
	}
}

func TestReductionObjective(t *testing.T) {
	obj, err := ReductionObjective(5.92, 50, 1.6)
	require.NoError(t, err)
	assert.InDelta(t, -50/9.472, obj(0), 1e-12)
	assert.Less(t, obj(0.4), obj(0.2))

	_, err = ReductionObjective(5.92, 50, 0)
	assert.ErrorIs(t, err, numeric.ErrInvalidInterval)
	_, err = ReductionObjective(0, 50, 1.6)
	assert.ErrorIs(t, err, numeric.ErrInvalidInterval)
}

func TestOptimalReduction_Bounds(t *testing.T) {
	obj, err := ReductionObjective(5.92, 50, 1.6)
	require.NoError(t, err)

	for _, b := range [][2]float64{{-0.1, 0.5}, {0, 1}, {0.5, 0.5}, {0.6, 0.2}} {
		_, err := OptimalReduction(obj, b[0], b[1], numeric.DefaultTolerance)
		assert.ErrorIs(t, err, numeric.ErrInvalidInterval, "bounds %v", b)
	}

	narrow, err := OptimalReduction(obj, 0, 0.5, numeric.DefaultTolerance)
	require.NoError(t, err)
	wide, err := OptimalReduction(obj, 0, 0.8, numeric.DefaultTolerance)
	require.NoError(t, err)
	assert.Greater(t, narrow, 0.0)
	assert.Less(t, narrow, 0.5)
	assert.Less(t, wide, 0.8)
	assert.LessOrEqual(t, obj(wide), obj(narrow))
}

func TestEstimate_ReferenceScenario(t *testing.T) {
	est, err := Estimate(referenceInput())
	require.NoError(t, err)

	assert.InDelta(t, 5.92, est.DailyKWh, 1e-9)
	assert.InDelta(t, 9.472, est.DailyCost, 1e-9)
	assert.InDelta(t, 50/9.472, est.DaysRemaining, numeric.DefaultTolerance)
	assert.InDelta(t, 5.3, math.Round(est.DaysRemaining*10)/10, 1e-9)

	assert.Equal(t, []float64{6.4, 6.3, 6.1, 5.8, 5.4}, est.ForecastValues())
	assert.Equal(t, 10, est.Forecast[4].Day)
	assert.InDelta(t, 0.15, est.Trend.Slope, 1e-9)

	assert.InDelta(t, 0.486, est.OptimalReduction, 0.001)
	assert.InDelta(t, 5.92*(1-est.OptimalReduction), est.ReducedDailyKWh, 1e-12)
	assert.InDelta(t, 10.27, est.ExtendedDays, 0.01)
	assert.Greater(t, est.DaysGained, 4.9)
}

func TestEstimate_DefaultForecastDays(t *testing.T) {
	in := referenceInput()
	in.ForecastDays = nil

	est, err := Estimate(in)
	require.NoError(t, err)
	require.Len(t, est.Forecast, DefaultForecastCount)
	assert.Equal(t, 6, est.Forecast[0].Day)
}

func TestEstimate_Failures(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Input)
		want   error
		stage  string
	}{
		"zero rate": {
			mutate: func(in *Input) { in.CostPerKWh = 0 },
			want:   numeric.ErrInvalidInterval,
			stage:  "checking tariff",
		},
		"bad appliance": {
			mutate: func(in *Input) { in.Appliances[0].PowerWatts = -70 },
			want:   numeric.ErrInvalidAppliance,
			stage:  "aggregating appliances",
		},
		"single reading": {
			mutate: func(in *Input) { in.History = in.History[:1] },
			want:   numeric.ErrDegenerateInput,
			stage:  "forecasting usage",
		},
		"unordered forecast days": {
			mutate: func(in *Input) { in.ForecastDays = []int{8, 7} },
			want:   numeric.ErrDegenerateInput,
			stage:  "forecasting usage",
		},
		"NaN balance": {
			mutate: func(in *Input) { in.Balance = math.NaN() },
			want:   numeric.ErrInvalidInterval,
			stage:  "checking tariff",
		},
		"negative balance": {
			mutate: func(in *Input) { in.Balance = -10 },
			want:   numeric.ErrInvalidInterval,
			stage:  "checking tariff",
		},
		"reduced usage outlasts horizon": {
			mutate: func(in *Input) { in.MaxDays = 8 },
			want:   numeric.ErrNoRootInRange,
			stage:  "estimating extended life",
		},
		"balance outlasts horizon": {
			mutate: func(in *Input) { in.Balance = 1000 },
			want:   numeric.ErrNoRootInRange,
			stage:  "estimating days remaining",
		},
		"reduction reaches zero usage": {
			mutate: func(in *Input) { in.ReductionMax = 1 },
			want:   numeric.ErrInvalidInterval,
			stage:  "optimizing reduction",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := referenceInput()
			tc.mutate(&in)

			est, err := Estimate(in)
			require.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), tc.stage)
			assert.Equal(t, model.Estimate{}, est)
		})
	}
}

func TestEstimate_LongerHorizon(t *testing.T) {
	in := referenceInput()
	in.Balance = 1000
	in.MaxDays = 365

	est, err := Estimate(in)
	require.NoError(t, err)
	assert.InDelta(t, 1000/9.472, est.DaysRemaining, numeric.DefaultTolerance)
	assert.InDelta(t, 1000/(9.472*(1-est.OptimalReduction)), est.ExtendedDays, numeric.DefaultTolerance)
	assert.LessOrEqual(t, est.ExtendedDays, in.MaxDays)
}
