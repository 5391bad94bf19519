package cmd

import (
	"fmt"

	"github.com/theirongolddev/budgie/internal/cli"
	"github.com/theirongolddev/budgie/internal/session"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the budget, spend and remaining balance",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	id, ok := a.session.Current()
	if !ok {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Not logged in.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Log in or create an account:")
		fmt.Fprintln(out, "    budgie login -u <name>")
		fmt.Fprintln(out, "    budgie register -u <name>")
		fmt.Fprintln(out)
		return nil
	}

	if err := a.ledger.Load(cmd.Context()); err != nil {
		return userError(err)
	}
	st := a.ledger.Snapshot()

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("BUDGIE STATUS"))
	fmt.Fprintln(out)

	since := "unknown"
	if t, err := a.store.UpdatedAt(session.Key); err == nil {
		since = cli.FormatAgo(t)
	}

	rows := [][]string{
		{"User", st.Profile.Username},
		{"Budget", cli.FormatMoney(st.Profile.Budget)},
		{"Spent", cli.FormatMoney(st.Spent())},
		{"Remaining", cli.FormatMoney(st.Remaining)},
		{"Entries", cli.FormatNumber(int64(len(st.Entries)))},
		{"Server", a.client.BaseURL()},
		{"Session", fmt.Sprintf("user %s, stored %s", id, since)},
	}
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}))

	fmt.Fprintf(out, "  %s\n\n", cli.RenderBudgetBar(st.Spent(), st.Profile.Budget, 30))
	if st.Remaining.IsNegative() {
		fmt.Fprintln(out, cli.RenderNotice("Over budget.", true))
		fmt.Fprintln(out)
	}
	return nil
}
