package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/theirongolddev/budgie/internal/cli"
	"github.com/theirongolddev/budgie/internal/ledger"

	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show or change the budget",
	Args:  cobra.NoArgs,
	RunE:  runBudgetShow,
}

var budgetSetCmd = &cobra.Command{
	Use:     "set <amount>",
	Short:   "Replace the budget with a new positive amount",
	Example: "  budgie budget set 500\n  budgie budget set 1250,50",
	Args:    cobra.ExactArgs(1),
	RunE:    runBudgetSet,
}

func init() {
	budgetCmd.AddCommand(budgetSetCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireSession(); err != nil {
		return err
	}
	if err := a.ledger.Load(cmd.Context()); err != nil {
		return userError(err)
	}
	st := a.ledger.Snapshot()

	fmt.Fprintf(cmd.OutOrStdout(), "  Budget:    %s\n", cli.FormatMoney(st.Profile.Budget))
	fmt.Fprintf(cmd.OutOrStdout(), "  Remaining: %s\n", cli.FormatMoney(st.Remaining))
	return nil
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireSession(); err != nil {
		return err
	}

	msg, err := a.ledger.SetBudgetInput(cmd.Context(), args[0])
	out := cmd.OutOrStdout()
	refreshed, err := reportWrite(out, msg, "Budget updated", err)
	if err != nil || !refreshed {
		return err
	}
	st := a.ledger.Snapshot()
	fmt.Fprintf(out, "  Budget %s, remaining %s\n", cli.FormatMoney(st.Profile.Budget), cli.FormatMoney(st.Remaining))
	return nil
}

// reportWrite prints the outcome of a budget or expenditure write. A write the
// service stored is reported as saved even when the follow-up reload failed;
// refreshed tells the caller whether the ledger snapshot is current.
func reportWrite(out io.Writer, msg, fallback string, err error) (refreshed bool, _ error) {
	if err != nil && !errors.Is(err, ledger.ErrNotRefreshed) {
		return false, userError(err)
	}
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintln(out, cli.RenderNotice(msg, false))
	if err != nil {
		fmt.Fprintln(out, cli.RenderNotice(ledger.Notice(err), true))
		return false, nil
	}
	return true, nil
}
