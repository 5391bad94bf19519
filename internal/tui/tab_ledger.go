package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/budgie/internal/cli"
	"github.com/theirongolddev/budgie/internal/ledger"
	"github.com/theirongolddev/budgie/internal/model"
	"github.com/theirongolddev/budgie/internal/tui/components"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// entryValues backs the add-expenditure form.
type entryValues struct {
	amount string
	date   string
	note   string
}

func newBudgetInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "e.g. 500"
	ti.CharLimit = 16
	ti.Width = 20
	ti.Prompt = "$ "
	return ti
}

func (a App) startBudgetEdit() (tea.Model, tea.Cmd) {
	if a.busy() {
		return a, nil
	}
	ti := newBudgetInput()
	if a.state.Profile.Budget.IsPositive() {
		ti.SetValue(a.state.Profile.Budget.String())
	}
	ti.Focus()
	a.budgetInput = ti
	a.editingBudget = true
	a.activeTab = tabLedger
	a.notice = notice{}
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateBudgetInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.editingBudget = false
		a.budgetInput.Blur()
		a.mutating = true
		return a, a.setBudgetCmd(a.budgetInput.Value())
	case "esc":
		a.editingBudget = false
		a.budgetInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.budgetInput, cmd = a.budgetInput.Update(msg)
	return a, cmd
}

func newEntryForm(vals *entryValues) *huh.Form {
	today := time.Now().Format(model.DateLayout)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Placeholder("12.50").
				Value(&vals.amount).
				Validate(func(s string) error {
					_, err := model.ParseAmount(s)
					return err
				}),
			huh.NewInput().
				Title("Date").
				Placeholder(today+" (empty for today)").
				Value(&vals.date).
				Validate(func(s string) error {
					_, err := model.ParseDate(s, time.Now())
					return err
				}),
			huh.NewInput().
				Title("Note").
				CharLimit(120).
				Value(&vals.note),
		).Title("Add expenditure"),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func (a App) startEntryForm() (tea.Model, tea.Cmd) {
	if a.busy() {
		return a, nil
	}
	p := a.state.Pending
	a.entryVals = &entryValues{amount: p.Amount, date: p.Date, note: p.Note}
	a.entryForm = newEntryForm(a.entryVals)
	a.activeTab = tabLedger
	a.notice = notice{}
	a.resizeForms()
	return a, a.entryForm.Init()
}

func (a App) updateEntryForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.entryForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.entryForm = f
	}

	switch a.entryForm.State {
	case huh.StateCompleted:
		v := a.entryVals
		a.entryForm = nil
		p := ledger.Pending{Amount: v.amount, Date: v.date, Note: strings.TrimSpace(v.note)}
		a.mutating = true
		return a, a.addEntryCmd(p)
	case huh.StateAborted:
		a.entryForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) renderLedgerTab(cw int) string {
	t := theme.Active
	st := a.state

	var b strings.Builder

	// Row 1: metric cards
	remainingColor := t.GreenBright
	if st.Remaining.IsNegative() {
		remainingColor = t.Red
	}
	spentPct := model.SpentPercent(st.Profile.Budget, st.Remaining)
	cards := []components.Metric{
		{Label: "Budget", Value: cli.FormatMoney(st.Profile.Budget), Delta: "[b] set"},
		{Label: "Spent", Value: cli.FormatMoney(st.Spent()), Delta: cli.FormatPercent(spentPct) + " of budget"},
		{Label: "Remaining", Value: cli.FormatMoney(st.Remaining), Color: remainingColor,
			Delta: fmt.Sprintf("%d entries", len(st.Entries))},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: budget used
	innerW := components.CardInnerWidth(cw)
	barW := innerW - 18
	if barW < 10 {
		barW = 10
	}
	var usage string
	if st.Profile.Budget.IsPositive() {
		usage = components.BudgetBar("Budget used", spentPct, 11, barW)
	} else {
		usage = lipgloss.NewStyle().Foreground(t.TextMuted).Render("No budget set. Press b to set one.")
	}
	b.WriteString(components.ContentCard("Usage", usage, cw))
	b.WriteString("\n")

	// Row 3: input or recent entries
	switch {
	case a.editingBudget:
		body := a.budgetInput.View() + "\n\n" +
			lipgloss.NewStyle().Foreground(t.TextDim).Render("[Enter] save  [Esc] cancel")
		b.WriteString(components.ContentCard("New budget", body, cw))
	case a.entryForm != nil:
		b.WriteString(components.ContentCard("", a.entryForm.View(), cw))
	default:
		b.WriteString(components.ContentCard("Recent", a.renderRecent(innerW, 5), cw))
	}

	if a.notice.text != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle(a.notice).Render("  " + a.notice.text))
	}

	return b.String()
}

// renderRecent lists the first n entries in display order.
func (a App) renderRecent(innerW, n int) string {
	t := theme.Active
	entries := a.state.Entries

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	if len(entries) == 0 {
		if !a.state.Loaded {
			return mutedStyle.Render("Loading...")
		}
		return mutedStyle.Render("No expenditures yet. Press a to add one.")
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return renderEntryRows(entries, innerW)
}

// renderEntryRows renders date, amount and note columns. The positional index
// is only a render key.
func renderEntryRows(entries []model.Expenditure, innerW int) string {
	t := theme.Active

	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	amountStyle := lipgloss.NewStyle().Foreground(t.GreenBright)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	noteW := innerW - 10 - 12 - 2
	if noteW < 8 {
		noteW = 8
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(dateStyle.Render(fmt.Sprintf("%-10s", e.Date)))
		b.WriteString(amountStyle.Render(fmt.Sprintf(" %12s", cli.FormatMoney(e.Amount))))
		b.WriteString(noteStyle.Render(" " + truncStr(cli.FormatNote(e.Note, 0), noteW)))
	}
	return b.String()
}
