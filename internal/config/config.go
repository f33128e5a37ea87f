package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/asheshgoplani/claude-tray/internal/logging"
)

var configLog = logging.ForComponent(logging.CompConfig)

// Defaults for unset keys.
const (
	DefaultStaleCutoff  = time.Hour
	DefaultTitleLimit   = 40
	DefaultMaxRows      = 8
	DefaultPollInterval = time.Second
	DefaultMaxHops      = 10
	DefaultTheme        = "dark"
)

// UserConfig is the contents of config.toml.
type UserConfig struct {
	Store     StoreSettings     `toml:"store"`
	Staleness StalenessSettings `toml:"staleness"`
	Session   SessionSettings   `toml:"session"`
	Tray      TraySettings      `toml:"tray"`
	Locator   LocatorSettings   `toml:"locator"`
	Logs      LogSettings       `toml:"logs"`
}

// StoreSettings locates the shared session file.
type StoreSettings struct {
	// Path overrides ~/.claude-tray/sessions.json
	Path string `toml:"path"`
}

// StalenessSettings controls when a session is considered abandoned.
type StalenessSettings struct {
	// Cutoff is a Go duration string (default "1h"). "0" disables eviction.
	Cutoff string `toml:"cutoff"`

	// PruneOnWrite makes hooks drop stale records too (default: true)
	PruneOnWrite *bool `toml:"prune_on_write"`
}

// SessionSettings controls how hook events are recorded.
type SessionSettings struct {
	// TitleLimit is the number of prompt characters kept as title (default: 40)
	TitleLimit int `toml:"title_limit"`
}

// TraySettings controls the consumer.
type TraySettings struct {
	// MaxRows is the number of session rows shown (default: 8)
	MaxRows int `toml:"max_rows"`

	// PollInterval is a Go duration string (default "1s")
	PollInterval string `toml:"poll_interval"`

	// Theme: "dark" (default), "light" or "system"
	Theme string `toml:"theme"`
}

// LocatorSettings controls the terminal search.
type LocatorSettings struct {
	// MaxHops bounds the ancestor walk (default: 10)
	MaxHops int `toml:"max_hops"`

	// ExtraTerminals are appended to the built-in terminal names
	ExtraTerminals []string `toml:"extra_terminals"`
}

// LogSettings mirrors logging.Config.
type LogSettings struct {
	Debug        bool   `toml:"debug"`
	Level        string `toml:"level"`
	Format       string `toml:"format"`
	MaxSizeMB    int    `toml:"max_size_mb"`
	MaxBackups   int    `toml:"max_backups"`
	MaxAgeDays   int    `toml:"max_age_days"`
	Compress     *bool  `toml:"compress"`
	RingBufferMB int    `toml:"ring_buffer_mb"`
	Pprof        bool   `toml:"pprof"`
}

var defaultUserConfig = UserConfig{}

var (
	userConfigCache   *UserConfig
	userConfigCacheMu sync.RWMutex
)

// Load reads config.toml once and caches the result. A missing file yields
// defaults; a parse error yields defaults plus the error so callers can report it.
func Load() (*UserConfig, error) {
	userConfigCacheMu.RLock()
	if userConfigCache != nil {
		defer userConfigCacheMu.RUnlock()
		return userConfigCache, nil
	}
	userConfigCacheMu.RUnlock()

	userConfigCacheMu.Lock()
	defer userConfigCacheMu.Unlock()

	if userConfigCache != nil {
		return userConfigCache, nil
	}

	configPath, err := Path()
	if err != nil {
		userConfigCache = &defaultUserConfig
		return userConfigCache, nil
	}

	cfg, err := decodeFile(configPath)
	if err != nil {
		// Cache the defaults anyway so the file is not re-parsed on every call.
		userConfigCache = &defaultUserConfig
		return userConfigCache, err
	}
	userConfigCache = cfg
	return userConfigCache, nil
}

func decodeFile(path string) (*UserConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &defaultUserConfig, nil
	}
	var cfg UserConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config.toml parse error: %w", err)
	}
	return &cfg, nil
}

// Reload drops the cache and reads config.toml again.
func Reload() (*UserConfig, error) {
	ClearCache()
	return Load()
}

// ClearCache resets the cached config without reloading it.
func ClearCache() {
	userConfigCacheMu.Lock()
	userConfigCache = nil
	userConfigCacheMu.Unlock()
}

// Get returns the cached config, logging and falling back to defaults on a
// parse error.
func Get() *UserConfig {
	cfg, err := Load()
	if err != nil {
		configLog.Warn("config_parse_failed", slog.String("error", err.Error()))
	}
	if cfg == nil {
		return &defaultUserConfig
	}
	return cfg
}

// StorePath returns the session store location.
func (c *UserConfig) StorePath() (string, error) {
	if c.Store.Path != "" {
		return expandTilde(c.Store.Path), nil
	}
	dir, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StoreFileName), nil
}

// StaleCutoff returns the staleness cutoff, defaulting to one hour.
// An explicit "0" disables eviction.
func (s StalenessSettings) StaleCutoff() time.Duration {
	return parseDuration(s.Cutoff, DefaultStaleCutoff, true)
}

// GetPruneOnWrite defaults to true.
func (s StalenessSettings) GetPruneOnWrite() bool {
	if s.PruneOnWrite == nil {
		return true
	}
	return *s.PruneOnWrite
}

// GetTitleLimit defaults to 40.
func (s SessionSettings) GetTitleLimit() int {
	if s.TitleLimit <= 0 {
		return DefaultTitleLimit
	}
	return s.TitleLimit
}

// GetMaxRows defaults to 8.
func (t TraySettings) GetMaxRows() int {
	if t.MaxRows <= 0 {
		return DefaultMaxRows
	}
	return t.MaxRows
}

// Interval returns the poll interval, defaulting to one second.
func (t TraySettings) Interval() time.Duration {
	return parseDuration(t.PollInterval, DefaultPollInterval, false)
}

// GetTheme returns "dark", "light" or "system", defaulting to dark.
func (t TraySettings) GetTheme() string {
	switch t.Theme {
	case "dark", "light", "system":
		return t.Theme
	default:
		return DefaultTheme
	}
}

// ResolveTheme resolves the configured theme to "dark" or "light".
// "system" asks the OS and falls back to dark when detection fails.
func (t TraySettings) ResolveTheme() string {
	theme := t.GetTheme()
	if theme != "system" {
		return theme
	}
	return DetectSystemTheme()
}

// DetectSystemTheme reports the OS color scheme as "dark" or "light".
func DetectSystemTheme() string {
	isDark, err := dark.IsDarkMode()
	if err != nil || isDark {
		return "dark"
	}
	return "light"
}

// GetMaxHops defaults to 10.
func (l LocatorSettings) GetMaxHops() int {
	if l.MaxHops <= 0 {
		return DefaultMaxHops
	}
	return l.MaxHops
}

// GetCompress defaults to true.
func (l LogSettings) GetCompress() bool {
	if l.Compress == nil {
		return true
	}
	return *l.Compress
}

// LoggingConfig converts the [logs] section into a logging.Config writing
// to logDir. Debug is on when the file or CLAUDE_TRAY_DEBUG says so.
func (l LogSettings) LoggingConfig(logDir string) logging.Config {
	cfg := logging.Config{
		Level:        l.Level,
		Format:       l.Format,
		MaxSizeMB:    l.MaxSizeMB,
		MaxBackups:   l.MaxBackups,
		MaxAgeDays:   l.MaxAgeDays,
		Compress:     l.GetCompress(),
		PprofEnabled: l.Pprof,
		Debug:        l.Debug || DebugFromEnv(),
	}
	if l.RingBufferMB > 0 {
		cfg.RingBufferSize = l.RingBufferMB * 1024 * 1024
	}
	if cfg.Debug {
		cfg.LogDir = logDir
		if cfg.Level == "" {
			cfg.Level = "debug"
		}
	}
	return cfg
}

func parseDuration(s string, def time.Duration, allowZero bool) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		configLog.Warn("config_bad_duration", slog.String("value", s))
		return def
	}
	return d
}
