package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.Server.BaseURL = "https://budget.example.com"
	cfg.Ledger.PageSize = 10
	cfg.Ledger.Order = OrderOldestFirst
	cfg.Appearance.Theme = "tokyo-night"

	require.NoError(t, SaveTo(path, cfg))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.False(t, got.NewestFirst())
}

func TestLoadFrom_NormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[ledger]\npage_size = 0\norder = \"sideways\"\n[server]\ntimeout_sec = -1\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, cfg.Ledger.PageSize)
	assert.Equal(t, OrderNewestFirst, cfg.Ledger.Order)
	assert.Equal(t, DefaultServerURL, cfg.Server.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\n"), 0o600))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestGetServerURL_EnvOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "http://from-config:5001/"

	t.Setenv("BUDGIE_SERVER_URL", "")
	assert.Equal(t, "http://from-config:5001", GetServerURL(cfg))

	t.Setenv("BUDGIE_SERVER_URL", "http://from-env:9000/")
	assert.Equal(t, "http://from-env:9000", GetServerURL(cfg))
}

func TestStatePath_EnvOverride(t *testing.T) {
	t.Setenv("BUDGIE_STATE_DB", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", StatePath())

	t.Setenv("BUDGIE_STATE_DB", "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "budgie", "state.db"), StatePath())
}
