package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/theirongolddev/budgie/internal/config"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	serverURL := cfg.Server.BaseURL
	pageSize := strconv.Itoa(cfg.Ledger.PageSize)
	order := cfg.Ledger.Order
	themeName := cfg.Appearance.Theme

	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, th := range theme.All {
		themeOpts[i] = huh.NewOption(th.Name, th.Name)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Budget service URL").
				Placeholder(config.DefaultServerURL).
				Validate(func(s string) error {
					u, err := url.Parse(strings.TrimSpace(s))
					if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
						return fmt.Errorf("enter a URL like %s", config.DefaultServerURL)
					}
					return nil
				}).
				Value(&serverURL),
			huh.NewInput().
				Title("History page size").
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 1 {
						return errors.New("enter a positive whole number")
					}
					return nil
				}).
				Value(&pageSize),
			huh.NewSelect[string]().
				Title("History order").
				Options(
					huh.NewOption("Newest first", config.OrderNewestFirst),
					huh.NewOption("Oldest first", config.OrderOldestFirst),
				).
				Value(&order),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeName),
		).Title("Welcome to budgie"),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("setup: %w", err)
	}

	cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	cfg.Ledger.PageSize, _ = strconv.Atoi(strings.TrimSpace(pageSize))
	cfg.Ledger.Order = order
	cfg.Appearance.Theme = themeName

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Saved to %s\n", config.Path())
	fmt.Fprintln(out, "  Run `budgie setup` anytime to reconfigure.")
	fmt.Fprintln(out)

	return nil
}
