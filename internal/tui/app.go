// Package tui provides the interactive Bubble Tea client for budgie.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/budgie/internal/auth"
	"github.com/theirongolddev/budgie/internal/cli"
	"github.com/theirongolddev/budgie/internal/config"
	"github.com/theirongolddev/budgie/internal/ledger"
	"github.com/theirongolddev/budgie/internal/log"
	"github.com/theirongolddev/budgie/internal/session"
	"github.com/theirongolddev/budgie/internal/tui/components"
	"github.com/theirongolddev/budgie/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Deps are the collaborators the App drives.
type Deps struct {
	Session *session.Holder
	Auth    *auth.Authenticator
	Ledger  *ledger.Ledger
	Config  config.Config
	Log     *log.Logger

	// ServerURL is the address the client actually uses, after flag and
	// environment overrides.
	ServerURL string
	// NeedSetup shows the first-run wizard before anything else.
	NeedSetup bool
	// SaveConfig persists settings. Defaults to config.Save.
	SaveConfig func(config.Config) error
}

// authResultMsg is sent when a login or register request finishes.
type authResultMsg struct {
	res auth.Result
	err error
}

// loadResultMsg is sent when a ledger load finishes.
type loadResultMsg struct {
	err error
}

// mutationResultMsg is sent when set-budget or add-expenditure finishes.
type mutationResultMsg struct {
	op  string
	msg string
	err error
}

// logoutResultMsg is sent after the session has been cleared.
type logoutResultMsg struct {
	err error
}

type tickMsg struct{}

type notice struct {
	text  string
	isErr bool
}

// App is the root Bubble Tea model.
type App struct {
	deps Deps
	log  *log.Logger
	cfg  config.Config

	// Auth view
	authed     bool
	authVals   *authValues
	authForm   *huh.Form
	submitting bool

	// Ledger view
	state    ledger.State
	loads    int // outstanding load commands
	mutating bool
	notice   notice

	budgetInput   textinput.Model
	editingBudget bool
	entryVals     *entryValues
	entryForm     *huh.Form

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	settings  settingsState
	spinner   spinner.Model
}

const (
	minTerminalWidth = 60
	compactWidth     = 100
	maxContentWidth  = 140

	minContentHeight = 5
	tickInterval     = 30 * time.Second
)

const (
	tabLedger = iota
	tabHistory
	tabBreakdown
	tabSettings
)

// NewApp creates the TUI model. The route is chosen from whether a session
// identifier is already stored.
func NewApp(deps Deps) App {
	if deps.SaveConfig == nil {
		deps.SaveConfig = config.Save
	}
	logger := deps.Log.WithComponent(log.ComponentTUI)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	_, authed := deps.Session.Current()

	a := App{
		deps:        deps,
		log:         logger,
		cfg:         deps.Config,
		authed:      authed,
		authVals:    &authValues{},
		needSetup:   deps.NeedSetup,
		spinner:     sp,
		budgetInput: newBudgetInput(),
		state:       deps.Ledger.Snapshot(),
	}
	if a.needSetup {
		a.setupVals = newSetupValues(a.cfg)
		a.setupForm = newSetupForm(a.setupVals)
	}
	if !authed {
		a.authForm = newAuthForm(a.authVals, deps.Auth.Mode)
	}
	if authed && !a.needSetup {
		// Init issues the first load.
		a.loads = 1
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		tickCmd(),
	}
	switch {
	case a.setupForm != nil:
		cmds = append(cmds, a.setupForm.Init())
	case a.authed:
		cmds = append(cmds, a.loadCmd())
	case a.authForm != nil:
		cmds = append(cmds, a.authForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeForms()
		return a, nil

	case tea.MouseMsg:
		if !a.authed || a.showHelp || a.modal() {
			return a, nil
		}
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		if msg.Action == tea.MouseActionPress && a.activeTab == tabHistory {
			switch msg.Button {
			case tea.MouseButtonWheelDown:
				return a.paginate(ledger.Next), nil
			case tea.MouseButtonWheelUp:
				return a.paginate(ledger.Prev), nil
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case authResultMsg:
		return a.handleAuthResult(msg)

	case loadResultMsg:
		a.loads = max(0, a.loads-1)
		a.state = a.deps.Ledger.Snapshot()
		if msg.err != nil && !errors.Is(msg.err, ledger.ErrStale) {
			a.notice = notice{text: ledger.Notice(msg.err), isErr: true}
		}
		return a, nil

	case mutationResultMsg:
		a.mutating = false
		a.state = a.deps.Ledger.Snapshot()
		switch {
		case msg.err == nil:
			a.notice = notice{text: msg.msg}
		case errors.Is(msg.err, ledger.ErrStale):
		default:
			a.notice = notice{text: ledger.Notice(msg.err), isErr: true}
		}
		return a, nil

	case logoutResultMsg:
		a.authed = false
		a.state = a.deps.Ledger.Snapshot()
		a.activeTab = tabLedger
		a.editingBudget = false
		a.entryForm = nil
		a.authVals = &authValues{}
		a.authForm = newAuthForm(a.authVals, a.deps.Auth.Mode)
		a.resizeForms()
		a.notice = notice{text: "Logged out."}
		if msg.err != nil {
			a.notice = notice{text: "Logged out, but the session could not be removed from disk.", isErr: true}
		}
		return a, a.authForm.Init()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		// Re-render so relative times stay current.
		return a, tickCmd()
	}

	// Forward everything else (cursor blinks etc.) to the active form or input.
	switch {
	case a.needSetup && a.setupForm != nil:
		return a.updateSetupForm(msg)
	case !a.authed && a.authForm != nil:
		return a.updateAuthForm(msg)
	case a.entryForm != nil:
		return a.updateEntryForm(msg)
	case a.editingBudget:
		var cmd tea.Cmd
		a.budgetInput, cmd = a.budgetInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global: quit
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if !a.authed {
		return a.updateAuthKey(msg)
	}

	if a.entryForm != nil {
		if key == "esc" {
			a.entryForm = nil
			return a, nil
		}
		return a.updateEntryForm(msg)
	}

	if a.editingBudget {
		return a.updateBudgetInput(msg)
	}

	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	// Help toggle
	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}

	// Dismiss help
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// Settings tab navigation (non-editing mode)
	if a.activeTab == tabSettings {
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.busy() {
			return a, nil
		}
		return a.startLoad()
	case "b":
		return a.startBudgetEdit()
	case "a":
		return a.startEntryForm()
	case "L":
		return a, a.logoutCmd()
	case "n", "pgdown":
		return a.paginate(ledger.Next), nil
	case "p", "pgup":
		return a.paginate(ledger.Prev), nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	// Tab navigation
	if len(key) == 1 {
		if tab := components.TabIdxByKey(rune(key[0])); tab >= 0 {
			a.activeTab = tab
		}
	}
	return a, nil
}

// modal reports whether a form or input currently owns the keyboard.
func (a App) modal() bool {
	return a.entryForm != nil || a.editingBudget || a.settings.editing || (a.needSetup && a.setupForm != nil)
}

func (a App) loading() bool { return a.loads > 0 }

func (a App) busy() bool {
	return a.loading() || a.mutating || a.submitting || a.state.Busy
}

func (a App) paginate(dir ledger.Direction) App {
	a.deps.Ledger.Paginate(dir)
	a.state = a.deps.Ledger.Snapshot()
	return a
}

func (a *App) resizeForms() {
	if a.width == 0 {
		return
	}
	if a.setupForm != nil {
		a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
	}
	if a.authForm != nil {
		a.authForm = a.authForm.WithWidth(min(a.width, 60))
	}
	if a.entryForm != nil {
		a.entryForm = a.entryForm.WithWidth(min(a.width, 60))
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// startLoad issues a ledger load and counts it until its result arrives.
func (a App) startLoad() (App, tea.Cmd) {
	a.loads++
	return a, a.loadCmd()
}

func (a App) loadCmd() tea.Cmd {
	l := a.deps.Ledger
	return func() tea.Msg {
		return loadResultMsg{err: l.Load(context.Background())}
	}
}

func (a App) setBudgetCmd(raw string) tea.Cmd {
	l := a.deps.Ledger
	return func() tea.Msg {
		msg, err := l.SetBudgetInput(context.Background(), raw)
		return mutationResultMsg{op: log.OpSetBudget, msg: msg, err: err}
	}
}

func (a App) addEntryCmd(p ledger.Pending) tea.Cmd {
	l := a.deps.Ledger
	return func() tea.Msg {
		msg, err := l.AddExpenditure(context.Background(), p)
		return mutationResultMsg{op: log.OpAddExpenditure, msg: msg, err: err}
	}
}

func (a App) logoutCmd() tea.Cmd {
	l := a.deps.Ledger
	return func() tea.Msg {
		return logoutResultMsg{err: l.Logout(context.Background())}
	}
}

// ─── View ───────────────────────────────────────────────────────

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if !a.authed {
		return a.viewAuth()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  budgie needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active
	h := a.height
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Navigation"))
	b.WriteString("\n")
	navBindings := []struct{ key, desc string }{
		{"1 2 3 4", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"n p", "Next / Previous history page"},
		{"j k", "Move in settings"},
	}
	for _, bind := range navBindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Actions"))
	b.WriteString("\n")
	actionBindings := []struct{ key, desc string }{
		{"b", "Set budget"},
		{"a", "Add expenditure"},
		{"r", "Reload ledger"},
		{"L", "Log out"},
		{"Esc", "Cancel input"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range actionBindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header
	header := components.RenderTabBar(a.activeTab, w)

	// 2. Status bar
	info := components.StatusInfo{Username: a.state.Profile.Username}
	if a.state.Loaded {
		info.Loaded = "loaded " + cli.FormatAgo(a.state.LoadedAt)
	}
	if a.busy() {
		info.Busy = a.spinner.View() + " working"
	}
	statusBar := components.RenderStatusBar(w, info)

	// 3. Content zone height
	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabLedger:
		content = a.renderLedgerTab(cw)
	case tabHistory:
		content = a.renderHistoryTab(cw)
	case tabBreakdown:
		content = a.renderBreakdownTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Center when the terminal is wider than the content
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
