package cmd

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/theirongolddev/kburn/internal/cli"
	"github.com/theirongolddev/kburn/internal/config"
	"github.com/theirongolddev/kburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var appliancesCmd = &cobra.Command{
	Use:     "appliances",
	Aliases: []string{"app"},
	Short:   "Daily energy and cost per appliance",
	RunE:    runAppliances,
}

func init() {
	rootCmd.AddCommand(appliancesCmd)
}

func runAppliances(_ *cobra.Command, _ []string) error {
	cfg, in, err := loadInput()
	if err != nil {
		return err
	}

	shares, err := pipeline.Breakdown(in.Appliances)
	if err != nil {
		return fmt.Errorf("aggregating appliances: %w", err)
	}
	if flagJSON {
		return printJSON(shares)
	}
	if len(shares) == 0 {
		fmt.Println("\n  No appliances configured.")
		fmt.Printf("  Add [[appliances]] entries to %s\n", config.Path())
		return nil
	}

	slices.SortStableFunc(shares, func(a, b pipeline.ApplianceShare) int {
		return cmp.Compare(b.KWh, a.KWh)
	})

	peak := shares[0].KWh
	cur := cfg.Tariff.Currency
	var total float64
	rows := make([][]string, 0, len(shares)+2)
	for _, s := range shares {
		total += s.KWh
		rows = append(rows, []string{
			s.Appliance.Name,
			fmt.Sprintf("%g W", s.Appliance.PowerWatts),
			cli.FormatHours(s.Appliance.HoursPerDay),
			fmt.Sprintf("%.2f", s.KWh),
			cli.FormatMoney(s.KWh*in.CostPerKWh, cur),
			fmt.Sprintf("%5.1f%% %s", s.SharePercent, cli.RenderBar(s.KWh, peak, 12, cli.ColorAccent)),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", "", "", fmt.Sprintf("%.2f", total), cli.FormatMoney(total*in.CostPerKWh, cur), ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Appliances",
		Headers: []string{"Name", "Power", "Hours/day", "kWh/day", "Cost/day", "Share"},
		Rows:    rows,
	}))
	return nil
}
