package cmd

import (
	"fmt"

	"github.com/theirongolddev/budgie/internal/cli"
	"github.com/theirongolddev/budgie/internal/ledger"
	"github.com/theirongolddev/budgie/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagHistoryPage  int
	flagHistoryAll   bool
	flagHistoryDaily bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List expenditures one page at a time",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryPage, "page", "p", 1, "Page to show (1-based)")
	historyCmd.Flags().BoolVarP(&flagHistoryAll, "all", "a", false, "Show every entry")
	historyCmd.Flags().BoolVar(&flagHistoryDaily, "daily", false, "Show totals per day")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
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

	out := cmd.OutOrStdout()

	if flagHistoryDaily {
		return printDaily(cmd, a.ledger.Snapshot())
	}

	for i := 1; i < flagHistoryPage; i++ {
		if !a.ledger.Paginate(ledger.Next) {
			break
		}
	}
	st := a.ledger.Snapshot()
	if len(st.Entries) == 0 {
		fmt.Fprintln(out, "\n  No expenditures yet.")
		return nil
	}

	entries := st.Window()
	title := fmt.Sprintf("Page %d of %d", st.Pager.Page, st.Pager.PageCount(len(st.Entries)))
	if flagHistoryAll {
		entries = st.Entries
		title = fmt.Sprintf("All %d entries", len(entries))
	}

	rows := make([][]string, 0, len(entries)+1)
	for _, e := range entries {
		rows = append(rows, []string{
			e.Date,
			cli.FormatDayOfWeek(e.Date),
			cli.FormatMoney(e.Amount),
			cli.FormatNote(e.Note, 40),
		})
	}
	rows = append(rows, []string{"Total", "", cli.FormatMoney(model.Total(entries)), ""})

	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:      title,
		Headers:    []string{"Date", "Day", "Amount", "Note"},
		Rows:       rows,
		RightAlign: []int{2},
	}))

	if !flagHistoryAll && st.Pager.HasNext(len(st.Entries)) {
		fmt.Fprintf(out, "  Next: budgie history --page %d\n", st.Pager.Page+1)
	}
	return nil
}

func printDaily(cmd *cobra.Command, st ledger.State) error {
	out := cmd.OutOrStdout()
	days := ledger.DailyTotals(st.Entries)
	if len(days) == 0 {
		fmt.Fprintln(out, "\n  No expenditures yet.")
		return nil
	}

	values := make([]float64, len(days))
	rows := make([][]string, 0, len(days))
	for i, d := range days {
		values[i], _ = d.Total.Float64()
		rows = append(rows, []string{
			d.Date,
			cli.FormatDayOfWeek(d.Date),
			cli.FormatNumber(int64(d.Count)),
			cli.FormatMoney(d.Total),
		})
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:      "Spend by Day",
		Headers:    []string{"Date", "Day", "Entries", "Spent"},
		Rows:       rows,
		RightAlign: []int{2, 3},
	}))
	fmt.Fprintf(out, "  Trend: %s\n\n", cli.RenderSparkline(values))

	// Last week as bars
	recent := days
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}
	peak := 0.0
	for _, v := range values[len(values)-len(recent):] {
		peak = max(peak, v)
	}
	for i, d := range recent {
		v := values[len(values)-len(recent)+i]
		label := fmt.Sprintf("%s %-3s %10s", d.Date, cli.FormatDayOfWeek(d.Date), cli.FormatMoney(d.Total))
		fmt.Fprintln(out, cli.RenderHorizontalBar(label, v, peak, 30))
	}
	fmt.Fprintln(out)
	return nil
}
