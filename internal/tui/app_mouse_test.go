package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := 0; active < 4; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < 4; i++ {
			w := tabWidthForTest(i, active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < 3 {
				pos++ // separator
			}
		}
	}
}

func TestTabAtXPastLastTab(t *testing.T) {
	a := App{}
	if got := a.tabAtX(500); got != -1 {
		t.Fatalf("tabAtX(500) = %d, want -1", got)
	}
}

func TestMouseWheelPaginatesHistory(t *testing.T) {
	a, _ := newTestApp(t, 100, twelveEntries()...)
	a = login(t, a, "ana", "pw")
	a.activeTab = tabHistory

	m, _ := a.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	a = m.(App)
	if a.state.Pager.Page != 2 {
		t.Fatalf("page after wheel down = %d, want 2", a.state.Pager.Page)
	}

	m, _ = a.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	a = m.(App)
	if a.state.Pager.Page != 1 {
		t.Fatalf("page after wheel up = %d, want 1", a.state.Pager.Page)
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	nameWidths := []int{
		len("Ledger"),
		len("History"),
		len("Breakdown"),
		len("Settings"),
	}

	w := nameWidths[tabIdx] + 2 // horizontal padding in tab renderer
	if tabIdx != activeIdx {
		w += 3 // inactive tabs add "[k]"
	}
	return w
}
