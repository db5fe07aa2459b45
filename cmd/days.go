package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/kburn/internal/cli"
	"github.com/theirongolddev/kburn/internal/numeric"
	"github.com/theirongolddev/kburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var daysCmd = &cobra.Command{
	Use:   "days",
	Short: "Days until the balance runs out at current usage",
	RunE:  runDays,
}

func init() {
	rootCmd.AddCommand(daysCmd)
}

func runDays(_ *cobra.Command, _ []string) error {
	cfg, in, err := loadInput()
	if err != nil {
		return err
	}

	daily, err := pipeline.DailyKWh(in.Appliances)
	if err != nil {
		return fmt.Errorf("aggregating appliances: %w", err)
	}
	dailyCost := daily * in.CostPerKWh

	cur := cfg.Tariff.Currency
	days, err := pipeline.DaysRemaining(in.Balance, pipeline.LinearCost(dailyCost), in.MaxDays, in.DayTolerance)
	if errors.Is(err, numeric.ErrNoRootInRange) && !flagJSON {
		log.Debug().Err(err).Msg("balance outlasts horizon")
		fmt.Println()
		fmt.Printf("  %s at %s/day lasts more than %s\n",
			cli.FormatMoney(in.Balance, cur), cli.FormatMoney(dailyCost, cur), cli.FormatDays(in.MaxDays))
		fmt.Printf("  %s\n", cli.RenderLifeBar(1, 40))
		return nil
	}
	if err != nil {
		return fmt.Errorf("estimating days remaining: %w", err)
	}
	log.Debug().Float64("daily_cost", dailyCost).Float64("days", days).Msg("days remaining")

	if flagJSON {
		return printJSON(map[string]float64{
			"daily_kwh":      daily,
			"daily_cost":     dailyCost,
			"days_remaining": days,
		})
	}

	fmt.Println()
	fmt.Printf("  %s at %s/day lasts %s\n",
		cli.FormatMoney(in.Balance, cur), cli.FormatMoney(dailyCost, cur), cli.FormatDays(days))
	fmt.Printf("  %s\n", cli.RenderLifeBar(days/in.MaxDays, 40))
	fmt.Println(cli.RenderMuted(fmt.Sprintf("  of a %g-day horizon", in.MaxDays)))
	return nil
}
