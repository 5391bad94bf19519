package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/budgie/internal/cli"
	"github.com/theirongolddev/budgie/internal/ledger"
	"github.com/theirongolddev/budgie/internal/model"
	"github.com/theirongolddev/budgie/internal/tui/components"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"
)

// historyPaginator mirrors the ledger's pager into a bubbles paginator.
// The ledger owns the page; this is display only.
func historyPaginator(p ledger.Pager, n int) paginator.Model {
	t := theme.Active
	pg := paginator.New()
	pg.Type = paginator.Dots
	pg.PerPage = p.Size
	pg.SetTotalPages(n)
	if pg.TotalPages < 1 {
		pg.TotalPages = 1
	}
	pg.Page = p.Page - 1
	pg.ActiveDot = lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Render("●")
	pg.InactiveDot = lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("○")
	return pg
}

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active
	st := a.state
	n := len(st.Entries)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	activeStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	disabledStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	totalStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	title := fmt.Sprintf("History [%d]", n)
	if n == 0 {
		msg := "No expenditures yet."
		if !st.Loaded {
			msg = "Loading..."
		}
		return components.ContentCard(title, mutedStyle.Render(msg), cw)
	}

	innerW := components.CardInnerWidth(cw)
	window := st.Window()

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %12s %s", "Date", "Amount", "Note")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	body.WriteString(renderEntryRows(window, innerW))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(fmt.Sprintf("%-10s", "Page")))
	body.WriteString(totalStyle.Render(fmt.Sprintf(" %12s", cli.FormatMoney(model.Total(window)))))
	body.WriteString("\n\n")

	prev, next := "◂ prev [p]", "next [n] ▸"
	prevStr := disabledStyle.Render(prev)
	if st.Pager.HasPrev() {
		prevStr = activeStyle.Render(prev)
	}
	nextStr := disabledStyle.Render(next)
	if st.Pager.HasNext(n) {
		nextStr = activeStyle.Render(next)
	}
	pg := historyPaginator(st.Pager, n)

	body.WriteString(prevStr)
	body.WriteString(mutedStyle.Render("  "))
	body.WriteString(pg.View())
	if !a.isCompactLayout() {
		body.WriteString(mutedStyle.Render(fmt.Sprintf("  page %d of %d", st.Pager.Page, st.Pager.PageCount(n))))
	}
	body.WriteString(mutedStyle.Render("  "))
	body.WriteString(nextStr)

	if a.notice.text != "" {
		body.WriteString("\n\n")
		body.WriteString(noticeStyle(a.notice).Render(a.notice.text))
	}

	return components.ContentCard(title, body.String(), cw)
}
