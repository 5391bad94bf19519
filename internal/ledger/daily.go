package ledger

import (
	"sort"

	"github.com/theirongolddev/budgie/internal/model"

	"github.com/shopspring/decimal"
)

// DayTotal is the summed spend for one calendar date.
type DayTotal struct {
	Date  string
	Total decimal.Decimal
	Count int
}

// DailyTotals groups entries by date, sorted by date ascending.
func DailyTotals(entries []model.Expenditure) []DayTotal {
	idx := make(map[string]int)
	var out []DayTotal
	for _, e := range entries {
		i, ok := idx[e.Date]
		if !ok {
			idx[e.Date] = len(out)
			out = append(out, DayTotal{Date: e.Date, Total: decimal.Zero})
			i = len(out) - 1
		}
		out[i].Total = out[i].Total.Add(e.Amount)
		out[i].Count++
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}
