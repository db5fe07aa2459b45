// Package config loads kburn's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/pipeline"

	"github.com/BurntSushi/toml"
)

// Config holds all kburn configuration.
type Config struct {
	Tariff     TariffConfig      `toml:"tariff"`
	Appliances []ApplianceConfig `toml:"appliances"`
	History    HistoryConfig     `toml:"history"`
	Forecast   ForecastConfig    `toml:"forecast"`
	Search     SearchConfig      `toml:"search"`
	Appearance AppearanceConfig  `toml:"appearance"`
	Server     ServerConfig      `toml:"server"`
}

// TariffConfig holds the prepaid balance and the unit price.
type TariffConfig struct {
	Balance    float64 `toml:"balance"`
	CostPerKWh float64 `toml:"cost_per_kwh"`
	Currency   string  `toml:"currency"`
}

// ApplianceConfig is one [[appliances]] entry.
type ApplianceConfig struct {
	Name        string  `toml:"name"`
	Watts       float64 `toml:"watts"`
	HoursPerDay float64 `toml:"hours_per_day"`
}

// HistoryConfig holds historical daily readings. Days and Usage are parallel
// arrays. DBPath, when set, replaces them with the readings store.
type HistoryConfig struct {
	Days   []int     `toml:"days"`
	Usage  []float64 `toml:"usage"`
	Window int       `toml:"window"`
	DBPath string    `toml:"db_path,omitempty"`
}

// ForecastConfig selects the forecast days. From = 0 means the day after the
// last reading.
type ForecastConfig struct {
	From  int `toml:"from,omitempty"`
	Count int `toml:"count"`
}

// SearchConfig holds horizons and tolerances for the numerical searches.
type SearchConfig struct {
	MaxDays            float64 `toml:"max_days"`
	DayTolerance       float64 `toml:"day_tolerance"`
	ReductionMin       float64 `toml:"reduction_min"`
	ReductionMax       float64 `toml:"reduction_max"`
	ReductionTolerance float64 `toml:"reduction_tolerance"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the built-in sample household.
func DefaultConfig() Config {
	return Config{
		Tariff: TariffConfig{
			Balance:    50,
			CostPerKWh: 1.6,
			Currency:   "GHS",
		},
		Appliances: []ApplianceConfig{
			{Name: "Fan", Watts: 70, HoursPerDay: 8},
			{Name: "Fridge", Watts: 200, HoursPerDay: 24},
			{Name: "Bulb", Watts: 10, HoursPerDay: 6},
			{Name: "TV", Watts: 100, HoursPerDay: 5},
		},
		History: HistoryConfig{
			Days:   []int{1, 2, 3, 4, 5},
			Usage:  []float64{5.8, 6.0, 6.1, 6.3, 6.4},
			Window: pipeline.DefaultWindow,
		},
		Forecast: ForecastConfig{
			Count: pipeline.DefaultForecastCount,
		},
		Search: SearchConfig{
			MaxDays:            pipeline.DefaultMaxDays,
			DayTolerance:       0.01,
			ReductionMin:       pipeline.DefaultReductionMin,
			ReductionMax:       pipeline.DefaultReductionMax,
			ReductionTolerance: 0.01,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8788",
		},
	}
}

// pathOverride is set by SetPath (the --config flag).
var pathOverride string

// SetPath makes Load and Save use path instead of the XDG location.
func SetPath(path string) { pathOverride = path }

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "kburn")
}

// Path returns the full path to the config file.
func Path() string {
	if pathOverride != "" {
		return pathOverride
	}
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path on top of the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Specs converts the configured appliances.
func (c Config) Specs() []model.ApplianceSpec {
	specs := make([]model.ApplianceSpec, len(c.Appliances))
	for i, a := range c.Appliances {
		specs[i] = model.ApplianceSpec{Name: a.Name, PowerWatts: a.Watts, HoursPerDay: a.HoursPerDay}
	}
	return specs
}

// Samples converts the configured history arrays into readings.
func (h HistoryConfig) Samples() ([]model.UsageSample, error) {
	if len(h.Days) != len(h.Usage) {
		return nil, fmt.Errorf("history has %d days but %d usage values", len(h.Days), len(h.Usage))
	}
	samples := make([]model.UsageSample, len(h.Days))
	for i, d := range h.Days {
		samples[i] = model.UsageSample{Day: d, KWh: h.Usage[i]}
	}
	return samples, nil
}

// Input builds the estimator input from the config and the given history.
func (c Config) Input(history []model.UsageSample) pipeline.Input {
	days := pipeline.NextDays(history, c.Forecast.Count)
	if c.Forecast.From > 0 {
		days = pipeline.DayRange(c.Forecast.From, c.Forecast.Count)
	}

	return pipeline.Input{
		Appliances:         c.Specs(),
		Balance:            c.Tariff.Balance,
		CostPerKWh:         c.Tariff.CostPerKWh,
		History:            history,
		Window:             c.History.Window,
		ForecastDays:       days,
		MaxDays:            c.Search.MaxDays,
		DayTolerance:       c.Search.DayTolerance,
		ReductionMin:       c.Search.ReductionMin,
		ReductionMax:       c.Search.ReductionMax,
		ReductionTolerance: c.Search.ReductionTolerance,
	}
}

// Validate reports config values that can never produce an estimate.
func (c Config) Validate() error {
	var errs []error
	if !finite(c.Tariff.Balance) || c.Tariff.Balance < 0 {
		errs = append(errs, fmt.Errorf("tariff.balance %g must be a non-negative number", c.Tariff.Balance))
	}
	if !finite(c.Tariff.CostPerKWh) || c.Tariff.CostPerKWh <= 0 {
		errs = append(errs, fmt.Errorf("tariff.cost_per_kwh %g must be positive", c.Tariff.CostPerKWh))
	}
	for i, a := range c.Appliances {
		if !finite(a.Watts) || !finite(a.HoursPerDay) || a.Watts < 0 || a.HoursPerDay < 0 || a.HoursPerDay > 24 {
			errs = append(errs, fmt.Errorf("appliances[%d] %q: watts must be >= 0 and hours_per_day 0-24", i, a.Name))
		}
	}
	if len(c.History.Days) != len(c.History.Usage) {
		errs = append(errs, fmt.Errorf("history.days has %d entries but history.usage has %d",
			len(c.History.Days), len(c.History.Usage)))
	}
	if c.History.Window < 2 {
		errs = append(errs, fmt.Errorf("history.window %d must be at least 2", c.History.Window))
	}
	if c.Forecast.Count < 1 {
		errs = append(errs, fmt.Errorf("forecast.count %d must be at least 1", c.Forecast.Count))
	}
	if !finite(c.Search.MaxDays) || c.Search.MaxDays <= 0 {
		errs = append(errs, fmt.Errorf("search.max_days %g must be positive", c.Search.MaxDays))
	}
	if !finite(c.Search.DayTolerance) || c.Search.DayTolerance < 0 ||
		!finite(c.Search.ReductionTolerance) || c.Search.ReductionTolerance < 0 {
		errs = append(errs, fmt.Errorf("search tolerances %g, %g must be non-negative numbers",
			c.Search.DayTolerance, c.Search.ReductionTolerance))
	}
	if !finite(c.Search.ReductionMin) || !finite(c.Search.ReductionMax) ||
		c.Search.ReductionMin < 0 || c.Search.ReductionMax >= 1 || c.Search.ReductionMin >= c.Search.ReductionMax {
		errs = append(errs, fmt.Errorf("search reduction bounds [%g, %g] must satisfy 0 <= min < max < 1",
			c.Search.ReductionMin, c.Search.ReductionMax))
	}
	return errors.Join(errs...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
