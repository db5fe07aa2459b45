package cmd

import (
	"fmt"

	"github.com/theirongolddev/kburn/internal/config"
	"github.com/theirongolddev/kburn/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup of balance, tariff and theme",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Start from the file alone so env and flag overrides are not persisted.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("  Welcome to kburn!")
	fmt.Println()

	if _, err := tui.RunSetup(cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Add appliances and readings there, or record readings with `kburn history add`.")
	fmt.Println()
	return nil
}
