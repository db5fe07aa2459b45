package model

// ApplianceSpec describes one appliance's steady daily draw.
type ApplianceSpec struct {
	Name        string  `json:"name"`
	PowerWatts  float64 `json:"power_watts"`
	HoursPerDay float64 `json:"hours_per_day"`
}

// DailyKWh returns the energy this appliance uses per day.
func (a ApplianceSpec) DailyKWh() float64 {
	return a.PowerWatts * a.HoursPerDay / 1000
}

// UsageSample is one historical meter reading: energy used on a given day.
type UsageSample struct {
	Day int     `json:"day"`
	KWh float64 `json:"kwh"`
}
