package cmd

import (
	"fmt"

	"github.com/theirongolddev/budgie/internal/cli"
	"github.com/theirongolddev/budgie/internal/ledger"

	"github.com/spf13/cobra"
)

var (
	flagSpendDate string
	flagSpendNote string
)

var spendCmd = &cobra.Command{
	Use:     "spend <amount>",
	Short:   "Log an expenditure against the budget",
	Example: "  budgie spend 12.50 --note lunch\n  budgie spend 40 --date 2024-01-15",
	Args:    cobra.ExactArgs(1),
	RunE:    runSpend,
}

func init() {
	spendCmd.Flags().StringVar(&flagSpendDate, "date", "", "Date as YYYY-MM-DD (default today)")
	spendCmd.Flags().StringVar(&flagSpendNote, "note", "", "Free-text note")
	rootCmd.AddCommand(spendCmd)
}

func runSpend(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireSession(); err != nil {
		return err
	}

	// Remaining must be known before the overspend check.
	if err := a.ledger.Load(cmd.Context()); err != nil {
		return userError(err)
	}

	msg, err := a.ledger.AddExpenditure(cmd.Context(), ledger.Pending{
		Amount: args[0],
		Date:   flagSpendDate,
		Note:   flagSpendNote,
	})
	out := cmd.OutOrStdout()
	refreshed, err := reportWrite(out, msg, "Expenditure added", err)
	if err != nil || !refreshed {
		return err
	}

	st := a.ledger.Snapshot()
	fmt.Fprintf(out, "  Remaining: %s\n", cli.FormatMoney(st.Remaining))
	return nil
}
