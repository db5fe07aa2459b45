package pipeline

import (
	"fmt"
	"iter"

	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/numeric"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is how many of the most recent readings feed the
// interpolating polynomial. Three points give a quadratic.
const DefaultWindow = 3

// DefaultForecastCount is how many days past the last reading are projected
// when no explicit days are requested.
const DefaultForecastCount = 5

// Window returns the most recent size samples. If fewer are available, all
// of them are used. At least two samples are required.
func Window(history []model.UsageSample, size int) ([]model.UsageSample, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: window size %d, need at least 2", numeric.ErrDegenerateInput, size)
	}
	if len(history) < 2 {
		return nil, fmt.Errorf("%w: %d readings, need at least 2", numeric.ErrDegenerateInput, len(history))
	}
	if size > len(history) {
		size = len(history)
	}
	return history[len(history)-size:], nil
}

// Forecaster projects daily usage from a window of historical readings.
type Forecaster struct {
	window []model.UsageSample
	poly   *numeric.Newton
}

// NewForecaster fits a Newton polynomial through the last size readings.
func NewForecaster(history []model.UsageSample, size int) (*Forecaster, error) {
	if err := checkHistory(history); err != nil {
		return nil, err
	}
	win, err := Window(history, size)
	if err != nil {
		return nil, err
	}

	xs := make([]float64, len(win))
	ys := make([]float64, len(win))
	for i, s := range win {
		xs[i] = float64(s.Day)
		ys[i] = s.KWh
	}
	poly, err := numeric.NewNewton(xs, ys)
	if err != nil {
		return nil, err
	}
	return &Forecaster{window: win, poly: poly}, nil
}

// Window returns the readings the polynomial was fitted to.
func (f *Forecaster) Window() []model.UsageSample { return f.window }

// At returns projected usage for day, never negative.
func (f *Forecaster) At(day int) float64 {
	return f.poly.At(float64(day))
}

// Days lazily yields (day, projected kWh) for each requested day in order.
func (f *Forecaster) Days(days []int) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for _, d := range days {
			if !yield(d, f.At(d)) {
				return
			}
		}
	}
}

// Points evaluates every requested day.
func (f *Forecaster) Points(days []int) []model.ForecastPoint {
	out := make([]model.ForecastPoint, 0, len(days))
	for d, kwh := range f.Days(days) {
		out = append(out, model.ForecastPoint{Day: d, KWh: kwh})
	}
	return out
}

// NextDays returns count consecutive days following the last reading.
func NextDays(history []model.UsageSample, count int) []int {
	start := 1
	if len(history) > 0 {
		start = history[len(history)-1].Day + 1
	}
	return DayRange(start, count)
}

// DayRange returns count consecutive days starting at from.
func DayRange(from, count int) []int {
	if count < 0 {
		count = 0
	}
	days := make([]int, count)
	for i := range days {
		days[i] = from + i
	}
	return days
}

// FitTrend fits a least-squares line through the full history.
func FitTrend(history []model.UsageSample) (model.Trend, error) {
	if err := checkHistory(history); err != nil {
		return model.Trend{}, err
	}
	if len(history) < 2 {
		return model.Trend{}, fmt.Errorf("%w: %d readings, need at least 2", numeric.ErrDegenerateInput, len(history))
	}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, s := range history {
		xs[i] = float64(s.Day)
		ys[i] = s.KWh
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return model.Trend{Intercept: alpha, Slope: beta}, nil
}

// checkHistory enforces strictly increasing positive days and
// non-negative readings.
func checkHistory(history []model.UsageSample) error {
	prev := 0
	for i, s := range history {
		if s.Day <= 0 {
			return fmt.Errorf("%w: reading %d has day %d", numeric.ErrDegenerateInput, i, s.Day)
		}
		if s.Day <= prev {
			return fmt.Errorf("%w: day %d follows day %d, readings must be in increasing day order",
				numeric.ErrDegenerateInput, s.Day, prev)
		}
		if !(s.KWh >= 0) {
			return fmt.Errorf("%w: day %d reading %g kWh", numeric.ErrDegenerateInput, s.Day, s.KWh)
		}
		prev = s.Day
	}
	return nil
}

func checkForecastDays(days []int) error {
	prev := 0
	for _, d := range days {
		if d <= prev {
			return fmt.Errorf("%w: forecast days must be positive and increasing, got %v",
				numeric.ErrDegenerateInput, days)
		}
		prev = d
	}
	return nil
}
