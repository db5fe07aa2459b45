package cmd

import (
	"fmt"

	"github.com/theirongolddev/kburn/internal/cli"
	"github.com/theirongolddev/kburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagReduceMin float64
	flagReduceMax float64
)

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Short: "Find the usage cut that stretches the balance furthest",
	RunE:  runReduce,
}

func init() {
	reduceCmd.Flags().Float64Var(&flagReduceMin, "min", 0, "Smallest cut to consider, 0-1")
	reduceCmd.Flags().Float64Var(&flagReduceMax, "max", 0, "Largest cut to consider, 0-1 (exclusive of 1)")
	rootCmd.AddCommand(reduceCmd)
}

func runReduce(cmd *cobra.Command, _ []string) error {
	cfg, in, err := loadInput()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("min") {
		in.ReductionMin = flagReduceMin
	}
	if cmd.Flags().Changed("max") {
		in.ReductionMax = flagReduceMax
	}

	daily, err := pipeline.DailyKWh(in.Appliances)
	if err != nil {
		return fmt.Errorf("aggregating appliances: %w", err)
	}
	objective, err := pipeline.ReductionObjective(daily, in.Balance, in.CostPerKWh)
	if err != nil {
		return fmt.Errorf("optimizing reduction: %w", err)
	}
	cut, err := pipeline.OptimalReduction(objective, in.ReductionMin, in.ReductionMax, in.ReductionTolerance)
	if err != nil {
		return fmt.Errorf("optimizing reduction: %w", err)
	}

	now, err := pipeline.DaysRemaining(in.Balance, pipeline.LinearCost(daily*in.CostPerKWh), in.MaxDays, in.DayTolerance)
	if err != nil {
		return fmt.Errorf("estimating days remaining: %w", err)
	}
	reducedCost := daily * (1 - cut) * in.CostPerKWh
	extended, err := pipeline.DaysRemaining(in.Balance, pipeline.LinearCost(reducedCost), in.MaxDays, in.DayTolerance)
	if err != nil {
		return fmt.Errorf("estimating extended life: %w", err)
	}
	if flagJSON {
		return printJSON(map[string]float64{
			"optimal_reduction": cut,
			"reduced_daily_kwh": daily * (1 - cut),
			"days_now":          now,
			"extended_days":     extended,
			"days_gained":       extended - now,
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BEST USAGE CUT  searched %s-%s",
		cli.FormatPercent(in.ReductionMin), cli.FormatPercent(in.ReductionMax))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Now", "With cut"},
		Rows: [][]string{
			{"Usage cut", "0.0%", cli.FormatPercent(cut)},
			{"Daily usage", cli.FormatKWh(daily), cli.FormatKWh(daily * (1 - cut))},
			{"Daily cost", cli.FormatMoney(daily*in.CostPerKWh, cfg.Tariff.Currency),
				cli.FormatMoney(reducedCost, cfg.Tariff.Currency)},
			{"Balance lasts", cli.FormatDays(now), cli.FormatDays(extended)},
		},
	}))
	fmt.Println()
	fmt.Printf("  Cutting usage by %s buys %s.\n", cli.FormatPercent(cut), cli.FormatDays(extended-now))
	return nil
}
