package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/budgie/internal/cli"
	"github.com/theirongolddev/budgie/internal/ledger"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// eighths are the partial-cell glyphs, index 0 empty.
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SpendChart draws one column per day of spend, scaled to the busiest day.
// Days above Mark are drawn in the warning color and Mark itself is a dotted
// rule. When Width cannot fit every day the oldest days are dropped.
type SpendChart struct {
	Days   []ledger.DayTotal
	Mark   decimal.Decimal
	Width  int
	Height int
}

// Render returns the chart, or "" when there is nothing to plot.
func (c SpendChart) Render() string {
	days := c.Days
	if len(days) == 0 {
		return ""
	}

	peak := c.Mark
	for _, d := range days {
		peak = decimal.Max(peak, d.Total)
	}
	if !peak.IsPositive() {
		return ""
	}

	top := cli.FormatMoney(peak)
	labelW := len(top)
	plotW := c.Width - labelW - 1
	if c.Height < 3 || plotW < 1 {
		return c.strip(days, peak)
	}
	if len(days) > plotW {
		days = days[len(days)-plotW:]
	}

	// Bars are up to 3 cells wide with a one-cell gap once there is room.
	step := min(4, plotW/len(days))
	barW := max(1, step-1)
	if step < 2 {
		step, barW = 1, 1
	}
	axisLen := (len(days)-1)*step + barW

	t := theme.Active
	bg := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	under := lipgloss.NewStyle().Foreground(t.BlueBright).Background(t.Surface)
	over := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	rule := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	units := make([]int, len(days))
	for i, d := range days {
		units[i] = scaledEighths(d.Total, peak, c.Height)
	}
	markRow := 0
	if c.Mark.IsPositive() {
		markRow = max(1, (scaledEighths(c.Mark, peak, c.Height)+4)/8)
	}

	var b strings.Builder
	for row := c.Height; row >= 1; row-- {
		var label string
		switch row {
		case c.Height:
			label = top
		case (c.Height + 1) / 2:
			label = cli.FormatMoney(peak.Mul(decimal.NewFromInt(int64(row))).Div(decimal.NewFromInt(int64(c.Height))))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", labelW, label)))

		for i, d := range days {
			if i > 0 && step > barW {
				b.WriteString(cellOrRule(bg, rule, row == markRow, step-barW))
			}
			fill := units[i] - (row-1)*8
			if fill <= 0 {
				b.WriteString(cellOrRule(bg, rule, row == markRow, barW))
				continue
			}
			style := under
			if c.Mark.IsPositive() && d.Total.GreaterThan(c.Mark) {
				style = over
			}
			b.WriteString(style.Render(strings.Repeat(string(eighths[min(fill, 8)]), barW)))
		}
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", labelW, "0", strings.Repeat("─", axisLen))))
	b.WriteString("\n")
	b.WriteString(bg.Render(strings.Repeat(" ", labelW+1)))
	b.WriteString(axis.Render(dateAxis(days, step, axisLen)))
	return b.String()
}

// strip is the one-line fallback for tiny areas.
func (c SpendChart) strip(days []ledger.DayTotal, peak decimal.Decimal) string {
	if c.Width > 0 && len(days) > c.Width {
		days = days[len(days)-c.Width:]
	}
	var buf strings.Builder
	for _, d := range days {
		buf.WriteRune(eighths[max(1, scaledEighths(d.Total, peak, 1))])
	}
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.BlueBright).Background(t.Surface).Render(buf.String())
}

// scaledEighths maps v onto height rows of eight steps each.
func scaledEighths(v, peak decimal.Decimal, height int) int {
	n := v.Div(peak).Mul(decimal.NewFromInt(int64(height * 8))).Round(0).IntPart()
	return int(max(0, min(n, int64(height*8))))
}

func cellOrRule(bg, rule lipgloss.Style, onRule bool, w int) string {
	if onRule {
		return rule.Render(strings.Repeat("┄", w))
	}
	return bg.Render(strings.Repeat(" ", w))
}

// dateAxis labels the first day, each first of a month, and the last day as
// MM-DD, skipping any label that would collide with the previous one.
func dateAxis(days []ledger.DayTotal, step, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	lastEnd := -1
	put := func(i int) {
		lbl := shortDate(days[i].Date)
		pos := min(i*step, axisLen-len(lbl))
		if pos < 0 || pos <= lastEnd {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}

	last := len(days) - 1
	put(0)
	for i := 1; i < last; i++ {
		if strings.HasSuffix(days[i].Date, "-01") && (last-i)*step > len(shortDate(days[last].Date)) {
			put(i)
		}
	}
	if last > 0 {
		put(last)
	}
	return strings.TrimRight(string(buf), " ")
}

func shortDate(date string) string {
	if len(date) == len("2006-01-02") {
		return date[5:]
	}
	return date
}
