package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvBalance    = "KBURN_BALANCE"
	EnvCostPerKWh = "KBURN_COST_PER_KWH"
	EnvCurrency   = "KBURN_CURRENCY"
	EnvHistoryDB  = "KBURN_HISTORY_DB"
)

// ApplyEnv loads the given .env files (".env" when none are given), then
// applies any KBURN_* overrides to cfg. Missing .env files are ignored;
// variables already in the environment win over .env values.
func ApplyEnv(cfg *Config, envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}

	if err := envFloat(EnvBalance, &cfg.Tariff.Balance); err != nil {
		return err
	}
	if err := envFloat(EnvCostPerKWh, &cfg.Tariff.CostPerKWh); err != nil {
		return err
	}
	if v := os.Getenv(EnvCurrency); v != "" {
		cfg.Tariff.Currency = v
	}
	if v := os.Getenv(EnvHistoryDB); v != "" {
		cfg.History.DBPath = v
	}
	return nil
}

func envFloat(key string, dst *float64) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parsing %s=%q: %w", key, raw, err)
	}
	*dst = v
	return nil
}
