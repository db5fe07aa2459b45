// Package cmd implements the kburn CLI commands.
package cmd

import (
	"fmt"

	"github.com/theirongolddev/kburn/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Tariff]")
	fmt.Printf("    Balance:      %g %s\n", cfg.Tariff.Balance, cfg.Tariff.Currency)
	fmt.Printf("    Cost per kWh: %g %s\n", cfg.Tariff.CostPerKWh, cfg.Tariff.Currency)
	fmt.Println()

	fmt.Printf("  [Appliances] %d\n", len(cfg.Appliances))
	for _, a := range cfg.Appliances {
		fmt.Printf("    %-14s %6g W  %4g h/day\n", a.Name, a.Watts, a.HoursPerDay)
	}
	fmt.Println()

	fmt.Println("  [History]")
	if cfg.History.DBPath != "" {
		fmt.Printf("    Database: %s\n", cfg.History.DBPath)
	} else {
		fmt.Printf("    Readings: %d (days %v)\n", len(cfg.History.Days), cfg.History.Days)
	}
	fmt.Printf("    Window:   %d\n", cfg.History.Window)
	fmt.Println()

	fmt.Println("  [Forecast]")
	if cfg.Forecast.From > 0 {
		fmt.Printf("    Days: %d from day %d\n", cfg.Forecast.Count, cfg.Forecast.From)
	} else {
		fmt.Printf("    Days: %d after the last reading\n", cfg.Forecast.Count)
	}
	fmt.Println()

	fmt.Println("  [Search]")
	fmt.Printf("    Max days:       %g (tolerance %g)\n", cfg.Search.MaxDays, cfg.Search.DayTolerance)
	fmt.Printf("    Reduction:      %g-%g (tolerance %g)\n",
		cfg.Search.ReductionMin, cfg.Search.ReductionMax, cfg.Search.ReductionTolerance)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  Environment overrides: " + config.EnvBalance + ", " + config.EnvCostPerKWh + ", " +
		config.EnvCurrency + ", " + config.EnvHistoryDB)
	fmt.Println("  Run `kburn setup` to reconfigure.")
	return nil
}
