package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/theirongolddev/budgie/internal/api"
	"github.com/theirongolddev/budgie/internal/auth"
	"github.com/theirongolddev/budgie/internal/model"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// authValues backs the login/register form. It lives on the heap so the
// form's field pointers stay valid across App copies.
type authValues struct {
	username string
	password string
}

func newAuthForm(vals *authValues, mode model.Mode) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&vals.username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&vals.password),
		).
			Title(mode.String()).
			Description("ctrl+t switches between Login and Register"),
	).WithTheme(formTheme()).WithShowHelp(true)
}

// formTheme maps the active palette onto huh's base theme.
func formTheme() *huh.Theme {
	t := theme.Active
	ft := huh.ThemeBase()
	ft.Focused.Title = ft.Focused.Title.Foreground(t.AccentBright).Bold(true)
	ft.Focused.Description = ft.Focused.Description.Foreground(t.TextMuted)
	ft.Focused.Base = ft.Focused.Base.BorderForeground(t.BorderAccent)
	ft.Focused.TextInput.Prompt = ft.Focused.TextInput.Prompt.Foreground(t.Accent)
	ft.Focused.ErrorMessage = ft.Focused.ErrorMessage.Foreground(t.Red)
	ft.Focused.ErrorIndicator = ft.Focused.ErrorIndicator.Foreground(t.Red)
	ft.Blurred.Title = ft.Blurred.Title.Foreground(t.TextMuted)
	return ft
}

func (a App) updateAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.submitting {
		return a, nil
	}

	switch msg.String() {
	case "ctrl+t":
		a.deps.Auth.Toggle()
		a.authForm = newAuthForm(a.authVals, a.deps.Auth.Mode)
		a.resizeForms()
		return a, a.authForm.Init()
	case "esc":
		return a, tea.Quit
	}
	return a.updateAuthForm(msg)
}

func (a App) updateAuthForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.authForm == nil {
		return a, nil
	}
	form, cmd := a.authForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.authForm = f
	}

	switch a.authForm.State {
	case huh.StateCompleted:
		a.deps.Auth.Username = strings.TrimSpace(a.authVals.username)
		a.deps.Auth.Password = a.authVals.password
		a.submitting = true
		a.notice = notice{}
		return a, a.submitAuthCmd()
	case huh.StateAborted:
		return a, tea.Quit
	}
	return a, cmd
}

func (a App) submitAuthCmd() tea.Cmd {
	au := a.deps.Auth
	return func() tea.Msg {
		res, err := au.Submit(context.Background())
		return authResultMsg{res: res, err: err}
	}
}

func (a App) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	a.submitting = false

	if msg.err != nil {
		text := auth.FailureNotice
		if m := api.Message(msg.err); m != "" {
			text += " " + m
		} else if errors.Is(msg.err, auth.ErrNoUserID) && msg.res.Message != "" {
			text = msg.res.Message
		}
		a.notice = notice{text: text, isErr: true}

		// Keep what the user typed.
		a.authForm = newAuthForm(a.authVals, a.deps.Auth.Mode)
		a.resizeForms()
		return a, a.authForm.Init()
	}

	a.authed = true
	a.authForm = nil
	a.authVals.password = ""
	a.deps.Auth.Password = ""
	a.notice = notice{text: msg.res.Message}
	return a.startLoad()
}

func (a App) viewAuth() string {
	t := theme.Active

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ budgie"))
	b.WriteString(subtitleStyle.Render(" · budget tracker"))
	b.WriteString("\n\n")

	if a.submitting {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Signing in..."))
	} else if a.authForm != nil {
		b.WriteString(a.authForm.View())
	}

	if a.notice.text != "" {
		b.WriteString("\n\n")
		b.WriteString(noticeStyle(a.notice).Render(a.notice.text))
	}

	card := cardStyle.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func noticeStyle(n notice) lipgloss.Style {
	t := theme.Active
	if n.isErr {
		return lipgloss.NewStyle().Foreground(t.Red)
	}
	return lipgloss.NewStyle().Foreground(t.GreenBright)
}
