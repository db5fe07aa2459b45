package cmd

import (
	"fmt"

	"github.com/theirongolddev/kburn/internal/cli"
	"github.com/theirongolddev/kburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagForecastDays  []int
	flagForecastCount int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project daily usage from recent meter readings",
	Example: "  kburn forecast\n" +
		"  kburn forecast --days 6,7,8 --window 4\n" +
		"  kburn forecast --count 10",
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().IntSliceVar(&flagForecastDays, "days", nil, "Days to forecast (default: after the last reading)")
	forecastCmd.Flags().IntVar(&flagForecastCount, "count", 0, "Forecast this many days after the last reading")
	forecastCmd.MarkFlagsMutuallyExclusive("days", "count")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	cfg, in, err := loadInput()
	if err != nil {
		return err
	}

	switch {
	case len(flagForecastDays) > 0:
		in.ForecastDays = flagForecastDays
	case flagForecastCount > 0:
		in.ForecastDays = pipeline.NextDays(in.History, flagForecastCount)
	}

	points, trend, err := pipeline.Forecast(in)
	if err != nil {
		return fmt.Errorf("forecasting usage: %w", err)
	}
	if flagJSON {
		return printJSON(struct {
			Forecast any `json:"forecast"`
			Trend    any `json:"trend"`
		}{points, trend})
	}

	daily, err := pipeline.DailyKWh(in.Appliances)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("USAGE FORECAST  window %d", cfg.History.Window)))
	fmt.Println()
	fmt.Print(cli.RenderForecastChart(in.History, points, daily))
	fmt.Println()

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Day),
			fmt.Sprintf("%.2f", p.KWh),
			fmt.Sprintf("%.2f", trend.At(p.Day)),
			cli.FormatMoney(p.KWh*in.CostPerKWh, cfg.Tariff.Currency),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Day", "Forecast kWh", "Trend kWh", "Cost"},
		Rows:    rows,
	}))
	return nil
}
