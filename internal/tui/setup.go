package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/budgie/internal/config"
	"github.com/theirongolddev/budgie/internal/log"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// setupValues holds form-bound values for the setup wizard.
type setupValues struct {
	serverURL string
	order     string
	theme     string
	saveErr   error
}

func newSetupValues(cfg config.Config) *setupValues {
	return &setupValues{
		serverURL: cfg.Server.BaseURL,
		order:     cfg.Ledger.Order,
		theme:     cfg.Appearance.Theme,
	}
}

// validateServerURL accepts absolute http(s) URLs.
func validateServerURL(s string) error {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter a URL like %s", config.DefaultServerURL)
	}
	return nil
}

// newSetupForm builds the huh form for first-run setup.
func newSetupForm(sv *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, th := range theme.All {
		themeOpts[i] = huh.NewOption(th.Name, th.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to budgie").
				Description("Track a budget and what you spend against it.\nLet's point budgie at your budget service."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Budget service URL").
				Description("Where the budget REST service listens.").
				Placeholder(config.DefaultServerURL).
				Validate(validateServerURL).
				Value(&sv.serverURL),
			huh.NewSelect[string]().
				Title("History order").
				Options(
					huh.NewOption("Newest first", config.OrderNewestFirst),
					huh.NewOption("Oldest first", config.OrderOldestFirst),
				).
				Value(&sv.order),
			huh.NewSelect[string]().
				Title("Color theme").
				Description("Choose a color scheme for the interface.").
				Options(themeOpts...).
				Value(&sv.theme),
		),
	).WithTheme(formTheme()).WithShowHelp(false)
}

// applySetup copies wizard values into cfg and persists it.
func (a *App) applySetup() {
	sv := a.setupVals
	cfg := a.cfg

	if u := strings.TrimRight(strings.TrimSpace(sv.serverURL), "/"); u != "" {
		cfg.Server.BaseURL = u
	}
	if sv.order != "" {
		cfg.Ledger.Order = sv.order
	}
	if sv.theme != "" {
		cfg.Appearance.Theme = sv.theme
		theme.SetActive(sv.theme)
	}

	a.cfg = cfg
	sv.saveErr = a.deps.SaveConfig(cfg)
	if sv.saveErr != nil {
		a.log.Warn("saving setup", log.FieldError, sv.saveErr)
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.applySetup()
		a.needSetup = false
		a.setupForm = nil
		if a.setupVals.saveErr != nil {
			a.notice = notice{text: "Could not save config: " + a.setupVals.saveErr.Error(), isErr: true}
		}
		// Form styles captured the old theme.
		if a.authForm != nil {
			a.authForm = newAuthForm(a.authVals, a.deps.Auth.Mode)
			a.resizeForms()
		}
		if a.authed {
			return a.startLoad()
		}
		return a, a.authForm.Init()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		if a.authed {
			return a.startLoad()
		}
		return a, a.authForm.Init()
	}

	return a, cmd
}
