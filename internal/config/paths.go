package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DirName is the base directory under the user's home.
	DirName = ".claude-tray"

	// FileName is the TOML config file inside the base directory.
	FileName = "config.toml"

	// StoreFileName is the shared session store.
	StoreFileName = "sessions.json"

	// TrayLockFileName is held by the running tray for its whole lifetime.
	TrayLockFileName = "tray.lock"

	// EnvHome overrides the base directory.
	EnvHome = "CLAUDE_TRAY_HOME"

	// EnvDebug turns on file logging when set to "1" or "true".
	EnvDebug = "CLAUDE_TRAY_DEBUG"

	// EnvPluginRoot is set by Claude Code for plugin hooks.
	EnvPluginRoot = "CLAUDE_PLUGIN_ROOT"
)

// BaseDir returns the claude-tray directory (~/.claude-tray unless
// CLAUDE_TRAY_HOME is set).
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return expandTilde(dir), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// Path returns the path to config.toml.
func Path() (string, error) {
	dir, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// TrayLockPath returns the tray singleton lock path.
func TrayLockPath() (string, error) {
	dir, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TrayLockFileName), nil
}

// DebugFromEnv reports whether CLAUDE_TRAY_DEBUG asks for debug logging.
func DebugFromEnv() bool {
	switch strings.ToLower(os.Getenv(EnvDebug)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
