package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/kburn/internal/config"
	"github.com/theirongolddev/kburn/internal/logger"
	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/numeric"
	"github.com/theirongolddev/kburn/internal/pipeline"
	"github.com/theirongolddev/kburn/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagBalance   float64
	flagRate      float64
	flagHistoryDB string
	flagWindow    int
	flagMaxDays   float64
	flagJSON      bool
	flagQuiet     bool
	flagLogLevel  string
)

var log zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "kburn",
	Short: "Prepaid electricity life estimator",
	Long: "Estimate how long a prepaid electricity balance lasts, forecast daily usage\n" +
		"from meter readings, and find the usage cut that stretches the balance furthest.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, numeric.ErrNoRootInRange) {
			fmt.Fprintln(os.Stderr, "  Hint: raise the search horizon with --max-days.")
		}
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to break the rootCmd
	// initialization cycle (runSummary -> loadConfig -> rootCmd).
	rootCmd.RunE = runSummary

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/kburn/config.toml)")
	rootCmd.PersistentFlags().Float64VarP(&flagBalance, "balance", "b", 0, "Prepaid balance, overrides config")
	rootCmd.PersistentFlags().Float64VarP(&flagRate, "rate", "r", 0, "Cost per kWh, overrides config")
	rootCmd.PersistentFlags().StringVar(&flagHistoryDB, "history-db", "", "SQLite readings database, replaces config history")
	rootCmd.PersistentFlags().IntVarP(&flagWindow, "window", "w", 0, "Readings used for the forecast polynomial")
	rootCmd.PersistentFlags().Float64Var(&flagMaxDays, "max-days", 0, "Horizon for the days-remaining search")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn, error, disabled")
}

func setup(_ *cobra.Command, _ []string) error {
	level := flagLogLevel
	if flagQuiet {
		level = "error"
	}
	log = logger.New(logger.Config{Level: level, Pretty: true})

	if flagConfig != "" {
		config.SetPath(flagConfig)
	}
	return nil
}

// loadConfig is the shared config path used by all commands: file, then
// .env and KBURN_* variables, then flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("balance") {
		cfg.Tariff.Balance = flagBalance
	}
	if flags.Changed("rate") {
		cfg.Tariff.CostPerKWh = flagRate
	}
	if flags.Changed("history-db") {
		cfg.History.DBPath = flagHistoryDB
	}
	if flags.Changed("window") {
		cfg.History.Window = flagWindow
	}
	if flags.Changed("max-days") {
		cfg.Search.MaxDays = flagMaxDays
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s:\n%w", config.Path(), err)
	}
	log.Debug().Str("path", config.Path()).Bool("exists", config.Exists()).Msg("config loaded")
	return cfg, nil
}

// loadHistory reads readings from the store when one is configured,
// otherwise from the config arrays.
func loadHistory(cfg config.Config) ([]model.UsageSample, error) {
	if cfg.History.DBPath == "" {
		return cfg.History.Samples()
	}

	samples, err := store.LoadSamples(cfg.History.DBPath)
	if err != nil {
		return nil, fmt.Errorf("reading history db: %w", err)
	}
	log.Debug().Str("db", cfg.History.DBPath).Int("readings", len(samples)).Msg("history loaded")
	return samples, nil
}

// loadInput builds the estimator input from config, env, flags and history.
func loadInput() (config.Config, pipeline.Input, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, pipeline.Input{}, err
	}
	history, err := loadHistory(cfg)
	if err != nil {
		return cfg, pipeline.Input{}, err
	}
	return cfg, cfg.Input(history), nil
}

func info(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
