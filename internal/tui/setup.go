package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/kburn/internal/config"
	"github.com/theirongolddev/kburn/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup form.
type SetupValues struct {
	Balance  string
	Rate     string
	Currency string
	Theme    string
}

// NewSetupValues seeds the form from an existing config.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		Balance:  strconv.FormatFloat(cfg.Tariff.Balance, 'f', -1, 64),
		Rate:     strconv.FormatFloat(cfg.Tariff.CostPerKWh, 'f', -1, 64),
		Currency: cfg.Tariff.Currency,
		Theme:    cfg.Appearance.Theme,
	}
}

// NewSetupForm builds the first-run form. Answers are written into vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOpts[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Prepaid balance").
				Description("Credit left on the meter.").
				Value(&vals.Balance).
				Validate(validateAmount(false)),
			huh.NewInput().
				Title("Cost per kWh").
				Description("Unit price charged by the utility.").
				Value(&vals.Rate).
				Validate(validateAmount(true)),
			huh.NewInput().
				Title("Currency").
				Description("Shown next to amounts, e.g. GHS.").
				Value(&vals.Currency).
				CharLimit(8),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithShowHelp(true)
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	balance, err := parseAmount(v.Balance, false)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	rate, err := parseAmount(v.Rate, true)
	if err != nil {
		return fmt.Errorf("cost per kWh: %w", err)
	}

	cfg.Tariff.Balance = balance
	cfg.Tariff.CostPerKWh = rate
	if c := strings.TrimSpace(v.Currency); c != "" {
		cfg.Tariff.Currency = strings.ToUpper(c)
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return nil
}

// RunSetup runs the form on the terminal and saves the result.
func RunSetup(cfg config.Config) (config.Config, error) {
	vals := NewSetupValues(cfg)
	if err := NewSetupForm(vals).Run(); err != nil {
		return cfg, fmt.Errorf("setup form: %w", err)
	}
	if err := vals.Apply(&cfg); err != nil {
		return cfg, err
	}
	if err := config.Save(cfg); err != nil {
		return cfg, fmt.Errorf("saving config: %w", err)
	}
	theme.SetActive(cfg.Appearance.Theme)
	return cfg, nil
}

func validateAmount(positive bool) func(string) error {
	return func(s string) error {
		_, err := parseAmount(s, positive)
		return err
	}
}

func parseAmount(s string, positive bool) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	switch {
	case positive && v <= 0:
		return 0, errors.New("must be greater than 0")
	case v < 0:
		return 0, errors.New("must not be negative")
	}
	return v, nil
}
