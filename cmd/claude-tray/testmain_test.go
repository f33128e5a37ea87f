package main

import (
	"os"
	"testing"

	"github.com/asheshgoplani/claude-tray/internal/config"
)

// TestMain points every command at a throwaway base directory so tests never
// touch ~/.claude-tray, and at a plugin root without a tray binary so hook
// tests never spawn one.
func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", "claude-tray-test-")
	if err != nil {
		panic(err)
	}
	plugin, err := os.MkdirTemp("", "claude-tray-plugin-")
	if err != nil {
		panic(err)
	}
	os.Setenv(config.EnvHome, home)
	os.Setenv(config.EnvPluginRoot, plugin)
	os.Unsetenv(config.EnvDebug)
	config.ClearCache()

	code := m.Run()

	os.RemoveAll(home)
	os.RemoveAll(plugin)
	os.Exit(code)
}
