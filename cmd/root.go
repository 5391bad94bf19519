// Package cmd implements the budgie CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/theirongolddev/budgie/internal/api"
	"github.com/theirongolddev/budgie/internal/auth"
	"github.com/theirongolddev/budgie/internal/config"
	"github.com/theirongolddev/budgie/internal/ledger"
	"github.com/theirongolddev/budgie/internal/log"
	"github.com/theirongolddev/budgie/internal/model"
	"github.com/theirongolddev/budgie/internal/session"
	"github.com/theirongolddev/budgie/internal/store"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagServer  string
)

var errNotLoggedIn = errors.New("not logged in (run `budgie login` first)")

var rootCmd = &cobra.Command{
	Use:          "budgie",
	Short:        "Budget tracker for the terminal",
	Long:         "Track a budget and log expenditures against it on a remote budget service.",
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Write debug-level logs")
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Budget service URL (overrides config and BUDGIE_SERVER_URL)")
}

// app is the wired set of components every command works with.
type app struct {
	cfg     config.Config
	log     *log.Logger
	store   *store.Store
	session *session.Holder
	client  *api.Client
	auth    *auth.Authenticator
	ledger  *ledger.Ledger

	closers []io.Closer
}

// openApp loads configuration and wires storage, session, client, and the
// authenticator and ledger on top of them. Close must be called.
func openApp() (*app, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger, logFile, err := log.OpenFile(config.LogPath(), level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Logging disabled: %s\n", err)
		logger = log.Discard()
	} else {
		a.closers = append(a.closers, logFile)
	}
	log.SetDefault(logger)
	a.log = logger

	st, err := store.Open(config.StatePath())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, st)

	a.session, err = session.Open(st)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.session.OnChange(func(id model.UserID, present bool) {
		if present {
			logger.Info("session stored", log.FieldUserID, id.String())
			return
		}
		logger.Info("session cleared")
	})

	serverURL := config.GetServerURL(cfg)
	if flagServer != "" {
		serverURL = strings.TrimRight(flagServer, "/")
	}
	a.client, err = api.New(serverURL, api.WithTimeout(cfg.Timeout()), api.WithLogger(logger))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.auth = auth.New(a.client, a.session, logger)
	a.ledger = ledger.New(a.client, a.session,
		ledger.WithLogger(logger),
		ledger.WithPageSize(cfg.Ledger.PageSize),
		ledger.WithNewestFirst(cfg.NewestFirst()),
	)

	logger.Debug("budgie started", "server", serverURL, "state_db", config.StatePath())
	return a, nil
}

// Close releases everything openApp opened, in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}

// requireSession fails fast when no user is logged in.
func (a *app) requireSession() error {
	if _, ok := a.session.Current(); !ok {
		return errNotLoggedIn
	}
	return nil
}

// userError turns a ledger error into what a user should read. Details stay
// in the log.
func userError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ledger.ErrNoSession):
		return errNotLoggedIn
	case errors.Is(err, ledger.ErrStale):
		return errors.New("the ledger changed while the request ran; try again")
	case errors.Is(err, ledger.ErrNotRefreshed):
		return errors.New(ledger.Notice(err))
	}
	if m := api.Message(err); m != "" && !ledger.IsValidation(err) {
		return fmt.Errorf("%s (%s)", ledger.FailureNotice, m)
	}
	return errors.New(ledger.Notice(err))
}
