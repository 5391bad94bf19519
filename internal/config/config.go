// Package config loads and saves budgie's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultServerURL is where the budget service listens in local development.
	DefaultServerURL = "http://localhost:5001"
	// DefaultPageSize is the history window size.
	DefaultPageSize = 5

	OrderNewestFirst = "newest-first"
	OrderOldestFirst = "oldest-first"
)

// Config holds all budgie configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Ledger     LedgerConfig     `toml:"ledger"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// ServerConfig describes the remote budget service.
type ServerConfig struct {
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// LedgerConfig holds display preferences for the ledger.
type LedgerConfig struct {
	PageSize int    `toml:"page_size"`
	Order    string `toml:"order"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:    DefaultServerURL,
			TimeoutSec: 10,
		},
		Ledger: LedgerConfig{
			PageSize: DefaultPageSize,
			Order:    OrderNewestFirst,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgie")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "budgie")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the XDG-compliant directory for state and logs.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgie")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "budgie")
}

// StatePath returns the SQLite file holding the session identifier.
// BUDGIE_STATE_DB overrides the default location.
func StatePath() string {
	if p := os.Getenv("BUDGIE_STATE_DB"); p != "" {
		return p
	}
	return filepath.Join(CacheDir(), "state.db")
}

// LogPath returns the log file location.
func LogPath() string {
	return filepath.Join(CacheDir(), "budgie.log")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// GetServerURL returns the service URL from env var or config, in that order.
func GetServerURL(cfg Config) string {
	if u := os.Getenv("BUDGIE_SERVER_URL"); u != "" {
		return strings.TrimRight(u, "/")
	}
	return strings.TrimRight(cfg.Server.BaseURL, "/")
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.Server.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.TimeoutSec) * time.Second
}

// NewestFirst reports whether history is displayed newest entry first.
func (c Config) NewestFirst() bool {
	return c.Ledger.Order != OrderOldestFirst
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = def.Server.BaseURL
	}
	if c.Ledger.PageSize < 1 {
		c.Ledger.PageSize = def.Ledger.PageSize
	}
	if c.Ledger.Order != OrderNewestFirst && c.Ledger.Order != OrderOldestFirst {
		c.Ledger.Order = def.Ledger.Order
	}
	if c.Appearance.Theme == "" {
		c.Appearance.Theme = def.Appearance.Theme
	}
}
