package ledger

import (
	"testing"

	"github.com/theirongolddev/budgie/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestPager_PageCount(t *testing.T) {
	p := NewPager(5)
	assert.Equal(t, 1, p.PageCount(0))
	assert.Equal(t, 1, p.PageCount(5))
	assert.Equal(t, 2, p.PageCount(6))
	assert.Equal(t, 3, p.PageCount(12))
}

func TestPager_ClampAfterShrink(t *testing.T) {
	p := Pager{Page: 4, Size: 5}
	assert.Equal(t, 2, p.Clamp(7).Page)
	assert.Equal(t, 1, p.Clamp(0).Page)
}

func TestPager_WindowEmpty(t *testing.T) {
	assert.Empty(t, NewPager(5).Window(nil))
}

func TestPager_MoveBounded(t *testing.T) {
	p := NewPager(5)
	p = p.Move(Next, 3)
	assert.Equal(t, 1, p.Page)
	p = p.Move(Next, 6)
	assert.Equal(t, 2, p.Page)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext(6))
	assert.Len(t, p.Window(make([]model.Expenditure, 6)), 1)
}

func TestNewPager_MinimumSize(t *testing.T) {
	assert.Equal(t, 1, NewPager(0).Size)
}
