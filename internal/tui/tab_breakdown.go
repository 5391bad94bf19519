package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/budgie/internal/cli"
	"github.com/theirongolddev/budgie/internal/ledger"
	"github.com/theirongolddev/budgie/internal/tui/components"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// maxChartDays caps how many days the spend chart shows.
const maxChartDays = 30

func (a App) renderDailyChart(days []ledger.DayTotal, cw int) string {
	if len(days) > maxChartDays {
		days = days[len(days)-maxChartDays:]
	}

	var total decimal.Decimal
	for _, d := range days {
		total = total.Add(d.Total)
	}
	avg := total.Div(decimal.NewFromInt(int64(max(1, len(days)))))

	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}
	chart := components.SpendChart{
		Days:   days,
		Mark:   avg,
		Width:  components.CardInnerWidth(cw),
		Height: chartH,
	}.Render()

	title := fmt.Sprintf("Daily Spend [%dd] ┄ avg %s", len(days), cli.FormatMoney(avg))
	return components.ContentCard(title, chart, cw)
}

func (a App) renderDailyTable(days []ledger.DayTotal, cw int) string {
	t := theme.Active

	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	costStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	shareStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface)

	spent := a.state.Spent()

	var tableBody strings.Builder
	tableBody.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-4s %7s %12s %6s", "Date", "Day", "Entries", "Spent", "Share")))
	tableBody.WriteString("\n")
	tableBody.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	tableBody.WriteString("\n")

	// Newest day first
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		share := 0.0
		if spent.IsPositive() {
			share, _ = d.Total.Div(spent).Float64()
		}
		tableBody.WriteString(rowStyle.Render(fmt.Sprintf("%-10s %-4s %7d", d.Date, cli.FormatDayOfWeek(d.Date), d.Count)))
		tableBody.WriteString(costStyle.Render(fmt.Sprintf(" %12s", cli.FormatMoney(d.Total))))
		tableBody.WriteString(shareStyle.Render(fmt.Sprintf(" %5.1f%%", share*100)))
		tableBody.WriteString("\n")
	}

	return components.ContentCard("By Day", tableBody.String(), cw)
}

func (a App) renderBreakdownTab(cw int) string {
	t := theme.Active

	days := ledger.DailyTotals(a.state.Entries)
	if len(days) == 0 {
		msg := "Nothing to break down yet."
		if !a.state.Loaded {
			msg = "Loading..."
		}
		return components.ContentCard("Breakdown", lipgloss.NewStyle().Foreground(t.TextMuted).Render(msg), cw)
	}

	var b strings.Builder
	b.WriteString(a.renderDailyChart(days, cw))
	b.WriteString("\n")
	b.WriteString(a.renderDailyTable(days, cw))
	return b.String()
}
