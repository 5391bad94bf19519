package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/budgie/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Fprintln(out, "  Status: loaded")
	} else {
		fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Server]")
	fmt.Fprintf(out, "    Base URL:  %s\n", cfg.Server.BaseURL)
	if env := os.Getenv("BUDGIE_SERVER_URL"); env != "" {
		fmt.Fprintf(out, "    Effective: %s (BUDGIE_SERVER_URL)\n", config.GetServerURL(cfg))
	}
	fmt.Fprintf(out, "    Timeout:   %s\n", cfg.Timeout())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Ledger]")
	fmt.Fprintf(out, "    Page size: %d\n", cfg.Ledger.PageSize)
	fmt.Fprintf(out, "    Order:     %s\n", cfg.Ledger.Order)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Appearance]")
	fmt.Fprintf(out, "    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Files]")
	fmt.Fprintf(out, "    Session store: %s\n", config.StatePath())
	fmt.Fprintf(out, "    Log file:      %s\n", config.LogPath())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  Run `budgie setup` to reconfigure.")
	return nil
}
