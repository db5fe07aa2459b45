// Package pipeline composes the numerical routines into a single estimate:
// appliance aggregation, usage forecasting, days remaining and the
// reduction suggestion.
package pipeline

import (
	"fmt"
	"math"

	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/numeric"

	"gonum.org/v1/gonum/floats"
)

// DailyKWh sums the daily energy draw of all appliances in kWh.
// An empty list draws nothing.
func DailyKWh(appliances []model.ApplianceSpec) (float64, error) {
	perAppliance := make([]float64, len(appliances))
	for i, a := range appliances {
		if err := validateAppliance(a); err != nil {
			return 0, err
		}
		perAppliance[i] = a.DailyKWh()
	}
	return floats.Sum(perAppliance), nil
}

func validateAppliance(a model.ApplianceSpec) error {
	switch {
	case math.IsNaN(a.PowerWatts) || math.IsInf(a.PowerWatts, 0) || a.PowerWatts < 0:
		return fmt.Errorf("%w: %q power %g W", numeric.ErrInvalidAppliance, a.Name, a.PowerWatts)
	case math.IsNaN(a.HoursPerDay) || a.HoursPerDay < 0 || a.HoursPerDay > 24:
		return fmt.Errorf("%w: %q runs %g h/day, want 0-24", numeric.ErrInvalidAppliance, a.Name, a.HoursPerDay)
	}
	return nil
}

// ApplianceShare is one appliance's contribution to daily usage.
type ApplianceShare struct {
	Appliance    model.ApplianceSpec `json:"appliance"`
	KWh          float64             `json:"kwh"`
	SharePercent float64             `json:"share_percent"`
}

// Breakdown returns each appliance's daily kWh and share of the total, in
// input order.
func Breakdown(appliances []model.ApplianceSpec) ([]ApplianceShare, error) {
	total, err := DailyKWh(appliances)
	if err != nil {
		return nil, err
	}

	shares := make([]ApplianceShare, len(appliances))
	for i, a := range appliances {
		shares[i] = ApplianceShare{Appliance: a, KWh: a.DailyKWh()}
		if total > 0 {
			shares[i].SharePercent = shares[i].KWh / total * 100
		}
	}
	return shares, nil
}
