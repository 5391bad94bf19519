package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/budgie/internal/ledger"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(date, total string) ledger.DayTotal {
	return ledger.DayTotal{Date: date, Total: decimal.RequireFromString(total), Count: 1}
}

func TestSpendChart_Empty(t *testing.T) {
	assert.Empty(t, SpendChart{Width: 60, Height: 8}.Render())
	assert.Empty(t, SpendChart{Days: []ledger.DayTotal{day("2024-01-01", "0")}, Width: 60, Height: 8}.Render())
}

func TestSpendChart_MoneyAxisAndDateLabels(t *testing.T) {
	theme.SetActive("flexoki-dark")

	out := SpendChart{
		Days: []ledger.DayTotal{
			day("2024-01-30", "12.50"),
			day("2024-01-31", "40"),
			day("2024-02-01", "7.25"),
			day("2024-02-02", "100"),
		},
		Width:  60,
		Height: 6,
	}.Render()

	assert.Equal(t, 6+2, lipgloss.Height(out), "rows, axis, dates")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "$50.00", "midpoint label")
	assert.Contains(t, out, "01-30")
	assert.Contains(t, out, "02-02")
	assert.LessOrEqual(t, lipgloss.Width(out), 60)
}

func TestSpendChart_MarkAboveEveryDayScalesAxis(t *testing.T) {
	out := SpendChart{
		Days:   []ledger.DayTotal{day("2024-01-01", "5"), day("2024-01-02", "10")},
		Mark:   decimal.NewFromInt(20),
		Width:  40,
		Height: 4,
	}.Render()

	assert.Contains(t, out, "$20.00")
	assert.Contains(t, out, "┄")
}

func TestSpendChart_NarrowKeepsRecentDays(t *testing.T) {
	days := make([]ledger.DayTotal, 0, 30)
	for i := 1; i <= 30; i++ {
		d := "2024-03-" + string(rune('0'+i/10)) + string(rune('0'+i%10))
		days = append(days, day(d, "3"))
	}

	out := SpendChart{Days: days, Width: 20, Height: 4}.Render()
	assert.Contains(t, out, "03-30")
	assert.NotContains(t, out, "03-01")
	assert.LessOrEqual(t, lipgloss.Width(out), 20)
}

func TestSpendChart_TinyAreaIsOneLine(t *testing.T) {
	out := SpendChart{
		Days:   []ledger.DayTotal{day("2024-01-01", "1"), day("2024-01-02", "4")},
		Width:  40,
		Height: 2,
	}.Render()

	assert.Equal(t, 1, lipgloss.Height(out))
	assert.True(t, strings.ContainsRune(out, '█'))
}
