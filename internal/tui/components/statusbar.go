package components

import (
	"strings"

	"github.com/theirongolddev/budgie/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the status bar shows on its right side.
type StatusInfo struct {
	Username string
	Loaded   string // e.g. "loaded 2 minutes ago"
	Busy     string // spinner frame + label while a request is in flight
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [q]uit"

	var parts []string
	if info.Busy != "" {
		parts = append(parts, info.Busy)
	}
	if info.Username != "" {
		parts = append(parts, info.Username)
	}
	if info.Loaded != "" {
		parts = append(parts, info.Loaded)
	}
	right := strings.Join(parts, " · ")
	if right != "" {
		right += " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
