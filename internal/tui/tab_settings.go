package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/budgie/internal/config"
	"github.com/theirongolddev/budgie/internal/log"
	"github.com/theirongolddev/budgie/internal/tui/components"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldServerURL = iota
	settingsFieldPageSize
	settingsFieldOrder
	settingsFieldTheme
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
	invalid string
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := a.cfg
	a.settings.editing = true
	a.settings.saved = false
	a.settings.invalid = ""

	ti := newSettingsInput()

	switch a.settings.cursor {
	case settingsFieldServerURL:
		ti.Placeholder = config.DefaultServerURL
		ti.SetValue(cfg.Server.BaseURL)
	case settingsFieldPageSize:
		ti.Placeholder = strconv.Itoa(config.DefaultPageSize)
		ti.SetValue(strconv.Itoa(cfg.Ledger.PageSize))
	case settingsFieldOrder:
		ti.Placeholder = config.OrderNewestFirst + " or " + config.OrderOldestFirst
		ti.SetValue(cfg.Ledger.Order)
	case settingsFieldTheme:
		names := make([]string, len(theme.All))
		for i, th := range theme.All {
			names[i] = th.Name
		}
		ti.Placeholder = strings.Join(names, ", ")
		ti.SetValue(cfg.Appearance.Theme)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil && a.settings.invalid == ""
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited field. The theme takes effect immediately;
// the others on next launch.
func (a *App) settingsSave() {
	cfg := a.cfg
	val := strings.TrimSpace(a.settings.input.Value())
	a.settings.invalid = ""
	a.settings.saveErr = nil

	switch a.settings.cursor {
	case settingsFieldServerURL:
		if !strings.HasPrefix(val, "http://") && !strings.HasPrefix(val, "https://") {
			a.settings.invalid = "Server URL must start with http:// or https://"
			return
		}
		cfg.Server.BaseURL = strings.TrimRight(val, "/")
	case settingsFieldPageSize:
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			a.settings.invalid = "Page size must be a positive whole number"
			return
		}
		cfg.Ledger.PageSize = n
	case settingsFieldOrder:
		if val != config.OrderNewestFirst && val != config.OrderOldestFirst {
			a.settings.invalid = fmt.Sprintf("Order must be %s or %s", config.OrderNewestFirst, config.OrderOldestFirst)
			return
		}
		cfg.Ledger.Order = val
	case settingsFieldTheme:
		found := false
		for _, t := range theme.All {
			if t.Name == val {
				found = true
				break
			}
		}
		if !found {
			a.settings.invalid = "Unknown theme " + strconv.Quote(val)
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	}

	a.cfg = cfg
	a.settings.saveErr = a.deps.SaveConfig(cfg)
	if a.settings.saveErr != nil {
		a.log.Warn("saving settings", log.FieldError, a.settings.saveErr)
	}
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	type field struct {
		label string
		value string
	}

	fields := []field{
		{"Server URL", cfg.Server.BaseURL},
		{"Page Size", strconv.Itoa(cfg.Ledger.PageSize)},
		{"Order", cfg.Ledger.Order},
		{"Theme", cfg.Appearance.Theme},
	}

	innerW := components.CardInnerWidth(cw)

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker)
			formBody.WriteString(label)
			formBody.WriteString(value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := innerW - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	switch {
	case a.settings.invalid != "":
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(a.settings.invalid))
	case a.settings.saveErr != nil:
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	case a.settings.saved:
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved! Server and ledger settings apply on next launch."))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	active := a.deps.ServerURL
	if active == "" {
		active = config.GetServerURL(a.deps.Config)
	}

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Signed in as:  ") + valueStyle.Render(a.state.Profile.Username) + "\n")
	infoBody.WriteString(labelStyle.Render("Active server: ") + valueStyle.Render(active) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:   ") + valueStyle.Render(config.Path()) + "\n")
	infoBody.WriteString(labelStyle.Render("Session store: ") + valueStyle.Render(config.StatePath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Log file:      ") + valueStyle.Render(config.LogPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))

	return b.String()
}
