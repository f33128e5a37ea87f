package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/claude-tray/internal/config"
	"github.com/asheshgoplani/claude-tray/internal/session"
	"github.com/asheshgoplani/claude-tray/internal/store"
)

func readStore(t *testing.T) session.Sessions {
	t.Helper()
	base, err := config.BaseDir()
	require.NoError(t, err)
	s, err := store.New(filepath.Join(base, config.StoreFileName)).Read()
	require.NoError(t, err)
	return s
}

func TestHookLifecycle(t *testing.T) {
	handleHook(strings.NewReader(`{"hook_event_name":"SessionStart","session_id":"hook-life","cwd":"/src/app","source":"startup"}`))
	rec, ok := readStore(t)["hook-life"]
	require.True(t, ok)
	assert.Equal(t, session.StatusActive, rec.Status)
	assert.Equal(t, "/src/app", rec.WorkingDirectory)
	assert.Empty(t, rec.Title)

	handleHook(strings.NewReader(`{"hook_event_name":"UserPromptSubmit","session_id":"hook-life","prompt":"refactor the parser please"}`))
	rec = readStore(t)["hook-life"]
	assert.Equal(t, session.StatusWorking, rec.Status)
	assert.Equal(t, "refactor the parser please", rec.Title)

	handleHook(strings.NewReader(`{"hook_event_name":"PreToolUse","session_id":"hook-life","tool_name":"Edit"}`))
	assert.Equal(t, "Edit", readStore(t)["hook-life"].ToolName)

	handleHook(strings.NewReader(`{"hook_event_name":"Notification","session_id":"hook-life","matcher":"permission_prompt"}`))
	assert.Equal(t, session.StatusWaiting, readStore(t)["hook-life"].Status)

	handleHook(strings.NewReader(`{"hook_event_name":"SessionEnd","session_id":"hook-life"}`))
	assert.NotContains(t, readStore(t), "hook-life")
}

func TestHookGarbageIsRecordedAsUnknown(t *testing.T) {
	handleHook(strings.NewReader("this is not json"))

	rec, ok := readStore(t)[session.UnknownSessionID]
	require.True(t, ok)
	assert.Equal(t, session.StatusUnknown, rec.Status)
}

func TestHookEmptyStdin(t *testing.T) {
	assert.NotPanics(t, func() { handleHook(strings.NewReader("")) })
}

func TestHookDoesNotLaunchWithoutBinary(t *testing.T) {
	handleHook(strings.NewReader(`{"hook_event_name":"SessionStart","session_id":"no-launch"}`))

	// The plugin root has no bin/claude-tray, so nothing could have started.
	_, err := os.Stat(filepath.Join(os.Getenv(config.EnvPluginRoot), "bin", "claude-tray"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, readStore(t), "no-launch")
}
