package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/theirongolddev/kburn/internal/cli"
	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Full estimate: usage, days remaining, forecast and best usage cut",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	cfg, in, err := loadInput()
	if err != nil {
		return err
	}

	est, err := pipeline.Estimate(in)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(est)
	}

	cur := cfg.Tariff.Currency

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PREPAID ELECTRICITY  %s left", cli.FormatMoney(in.Balance, cur))))
	fmt.Println()

	rows := [][]string{
		{"Appliances", fmt.Sprintf("%d", len(in.Appliances))},
		{"Daily usage", cli.FormatKWh(est.DailyKWh)},
		{"Daily cost", cli.FormatMoney(est.DailyCost, cur)},
		{"---"},
		{"Days remaining", cli.FormatDays(est.DaysRemaining)},
		{"---"},
		{"Best usage cut", cli.FormatPercent(est.OptimalReduction)},
		{"Reduced usage", cli.FormatKWh(est.ReducedDailyKWh)},
		{"Days at cut", cli.FormatDays(est.ExtendedDays)},
		{"Days gained", "+" + cli.FormatDays(est.DaysGained)},
		{"---"},
		{"Forecast", forecastLabel(est.Forecast)},
		{"Trend", fmt.Sprintf("%+.2f kWh/day", est.Trend.Slope)},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if est.DaysRemaining < 3 {
		fmt.Println()
		fmt.Println(cli.RenderWarning("Balance runs out within 3 days. Top up soon."))
	}
	return nil
}

func forecastLabel(points []model.ForecastPoint) string {
	if len(points) == 0 {
		return "none"
	}
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.KWh
	}
	return fmt.Sprintf("%s  days %d-%d", cli.RenderSparkline(vals), points[0].Day, points[len(points)-1].Day)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
