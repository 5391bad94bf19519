package ledger

import (
	"testing"

	"github.com/theirongolddev/budgie/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyTotals(t *testing.T) {
	got := DailyTotals([]model.Expenditure{
		{Amount: dec("5"), Date: "2024-01-03"},
		{Amount: dec("2.5"), Date: "2024-01-01"},
		{Amount: dec("1.5"), Date: "2024-01-03"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].Date)
	assert.True(t, got[0].Total.Equal(dec("2.5")))
	assert.Equal(t, "2024-01-03", got[1].Date)
	assert.True(t, got[1].Total.Equal(dec("6.5")))
	assert.Equal(t, 2, got[1].Count)
}

func TestDailyTotals_Empty(t *testing.T) {
	assert.Empty(t, DailyTotals(nil))
}
