package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withHome points the base directory at a fresh temp dir and resets the cache.
func withHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	ClearCache()
	t.Cleanup(ClearCache)
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))
}

func TestBaseDirFromEnv(t *testing.T) {
	dir := withHome(t)

	got, err := BaseDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	lock, err := TrayLockPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, TrayLockFileName), lock)
}

func TestBaseDirDefault(t *testing.T) {
	t.Setenv(EnvHome, "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := BaseDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName), got)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := withHome(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultStaleCutoff, cfg.Staleness.StaleCutoff())
	assert.True(t, cfg.Staleness.GetPruneOnWrite())
	assert.Equal(t, 40, cfg.Session.GetTitleLimit())
	assert.Equal(t, 8, cfg.Tray.GetMaxRows())
	assert.Equal(t, time.Second, cfg.Tray.Interval())
	assert.Equal(t, "dark", cfg.Tray.GetTheme())
	assert.Equal(t, 10, cfg.Locator.GetMaxHops())
	assert.True(t, cfg.Logs.GetCompress())

	path, err := cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, StoreFileName), path)
}

func TestLoadFromFile(t *testing.T) {
	dir := withHome(t)
	writeConfig(t, dir, `
[store]
path = "/var/tmp/tray.json"

[staleness]
cutoff = "15m"
prune_on_write = false

[session]
title_limit = 12

[tray]
max_rows = 3
poll_interval = "250ms"
theme = "light"

[locator]
max_hops = 4
extra_terminals = ["rio", "warp"]

[logs]
debug = true
level = "warn"
compress = false
ring_buffer_mb = 2
`)

	cfg, err := Load()
	require.NoError(t, err)

	path, err := cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/tray.json", path)
	assert.Equal(t, 15*time.Minute, cfg.Staleness.StaleCutoff())
	assert.False(t, cfg.Staleness.GetPruneOnWrite())
	assert.Equal(t, 12, cfg.Session.GetTitleLimit())
	assert.Equal(t, 3, cfg.Tray.GetMaxRows())
	assert.Equal(t, 250*time.Millisecond, cfg.Tray.Interval())
	assert.Equal(t, "light", cfg.Tray.ResolveTheme())
	assert.Equal(t, 4, cfg.Locator.GetMaxHops())
	assert.Equal(t, []string{"rio", "warp"}, cfg.Locator.ExtraTerminals)

	lc := cfg.Logs.LoggingConfig(dir)
	assert.True(t, lc.Debug)
	assert.Equal(t, dir, lc.LogDir)
	assert.Equal(t, "warn", lc.Level)
	assert.False(t, lc.Compress)
	assert.Equal(t, 2*1024*1024, lc.RingBufferSize)
}

func TestLoadIsCached(t *testing.T) {
	dir := withHome(t)
	writeConfig(t, dir, "[tray]\nmax_rows = 3\n")

	first, err := Load()
	require.NoError(t, err)

	writeConfig(t, dir, "[tray]\nmax_rows = 5\n")
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 3, second.Tray.GetMaxRows())

	reloaded, err := Reload()
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Tray.GetMaxRows())
}

func TestLoadParseErrorFallsBack(t *testing.T) {
	dir := withHome(t)
	writeConfig(t, dir, "[tray\nmax_rows = ")

	cfg, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.toml parse error")
	require.NotNil(t, cfg)
	assert.Equal(t, 8, cfg.Tray.GetMaxRows())

	assert.NotNil(t, Get())
}

func TestBadDurationsFallBack(t *testing.T) {
	s := StalenessSettings{Cutoff: "soon"}
	assert.Equal(t, DefaultStaleCutoff, s.StaleCutoff())

	s.Cutoff = "0"
	assert.Zero(t, s.StaleCutoff(), "zero disables eviction")

	tr := TraySettings{PollInterval: "0"}
	assert.Equal(t, DefaultPollInterval, tr.Interval(), "a zero interval would spin")

	tr.PollInterval = "-1s"
	assert.Equal(t, DefaultPollInterval, tr.Interval())
}

func TestUnknownThemeIsDark(t *testing.T) {
	assert.Equal(t, "dark", TraySettings{Theme: "solarized"}.GetTheme())
	assert.Equal(t, "system", TraySettings{Theme: "system"}.GetTheme())
}

func TestLoggingConfigDiscardsWithoutDebug(t *testing.T) {
	t.Setenv(EnvDebug, "")
	lc := LogSettings{}.LoggingConfig("/somewhere")
	assert.False(t, lc.Debug)
	assert.Empty(t, lc.LogDir)
}

func TestDebugFromEnv(t *testing.T) {
	t.Setenv(EnvDebug, "1")
	assert.True(t, DebugFromEnv())

	lc := LogSettings{}.LoggingConfig("/logs")
	assert.Equal(t, "/logs", lc.LogDir)
	assert.Equal(t, "debug", lc.Level)

	t.Setenv(EnvDebug, "no")
	assert.False(t, DebugFromEnv())
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x/y"), expandTilde("~/x/y"))
	assert.Equal(t, "/abs", expandTilde("/abs"))
	assert.Equal(t, "~user/x", expandTilde("~user/x"))
}
