package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/theirongolddev/kburn/internal/cli"
	"github.com/theirongolddev/kburn/internal/config"
	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/source"
	"github.com/theirongolddev/kburn/internal/store"

	"github.com/spf13/cobra"
)

var flagHistoryLast int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List daily meter readings",
	RunE:  runHistory,
}

var historyAddCmd = &cobra.Command{
	Use:     "add DAY KWH",
	Short:   "Record the energy used on a day",
	Example: "  kburn history add 6 6.2 --history-db ~/meter.db",
	Args:    cobra.ExactArgs(2),
	RunE:    runHistoryAdd,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm DAY",
	Short: "Delete the reading for a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

var historyImportCmd = &cobra.Command{
	Use:     "import PATH...",
	Short:   "Import readings from .jsonl or .csv meter exports",
	Example: "  kburn history import ~/Downloads/meter-exports --history-db ~/meter.db",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runHistoryImport,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLast, "last", "n", 0, "Show only the most recent n readings")
	historyCmd.AddCommand(historyAddCmd)
	historyCmd.AddCommand(historyRmCmd)
	historyCmd.AddCommand(historyImportCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var samples []model.UsageSample
	if cfg.History.DBPath != "" && flagHistoryLast > 0 {
		samples, err = recentReadings(cfg.History.DBPath, flagHistoryLast)
	} else {
		samples, err = loadHistory(cfg)
		if flagHistoryLast > 0 && len(samples) > flagHistoryLast {
			samples = samples[len(samples)-flagHistoryLast:]
		}
	}
	if err != nil {
		return err
	}
	source := "config " + config.Path()
	if cfg.History.DBPath != "" {
		source = "database " + cfg.History.DBPath
	}

	if flagJSON {
		return printJSON(samples)
	}
	if len(samples) == 0 {
		fmt.Printf("\n  No readings in %s.\n", source)
		fmt.Println("  Record one with `kburn history add DAY KWH`.")
		return nil
	}

	rows := make([][]string, len(samples))
	vals := make([]float64, len(samples))
	for i, s := range samples {
		rows[i] = []string{strconv.Itoa(s.Day), fmt.Sprintf("%.2f", s.KWh)}
		vals[i] = s.KWh
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Readings",
		Headers: []string{"Day", "kWh"},
		Rows:    rows,
	}))
	fmt.Printf("  %s\n", cli.RenderSparkline(vals))
	fmt.Println(cli.RenderMuted("  from " + source))
	return nil
}

func runHistoryAdd(_ *cobra.Command, args []string) error {
	day, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("parsing day %q: %w", args[0], err)
	}
	kwh, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("parsing kWh %q: %w", args[1], err)
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Record(model.UsageSample{Day: day, KWh: kwh}); err != nil {
		return err
	}
	n, err := db.Count()
	if err != nil {
		return err
	}
	log.Info().Int("day", day).Float64("kwh", kwh).Int("stored", n).Msg("reading recorded")
	info("  Recorded day %d: %s (%d readings stored)\n", day, cli.FormatKWh(kwh), n)
	return nil
}

func runHistoryRm(_ *cobra.Command, args []string) error {
	day, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("parsing day %q: %w", args[0], err)
	}

	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Delete(day); err != nil {
		return err
	}
	info("  Deleted day %d\n", day)
	return nil
}

func runHistoryImport(_ *cobra.Command, args []string) error {
	var files []source.DiscoveredFile
	for _, arg := range args {
		found, err := source.ScanDir(arg)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", arg, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return errors.New("no .jsonl or .csv exports found")
	}

	results := make([]source.ParseResult, 0, len(files))
	for _, df := range files {
		r := source.ParseFile(df)
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("file", df.Path).Msg("skipping export")
			continue
		}
		log.Debug().Str("file", df.Path).Str("format", df.Format.String()).
			Int("readings", len(r.Samples)).Int("errors", r.ParseErrors).Msg("parsed export")
		results = append(results, r)
	}
	samples, parseErrors := source.Merge(results)

	db, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.RecordAll(samples); err != nil {
		return err
	}
	n, err := db.Count()
	if err != nil {
		return err
	}

	info("  Imported %d readings from %d files (%d readings stored)\n", len(samples), len(files), n)
	if parseErrors > 0 {
		fmt.Println(cli.RenderWarning(fmt.Sprintf("%d malformed lines skipped", parseErrors)))
	}
	return nil
}

func openHistoryDB() (*store.Readings, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.History.DBPath == "" {
		return nil, errors.New("no history database: pass --history-db or set history.db_path")
	}
	return store.Open(cfg.History.DBPath)
}

func recentReadings(path string, n int) ([]model.UsageSample, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	return db.Recent(n)
}
