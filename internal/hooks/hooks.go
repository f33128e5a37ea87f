// Package hooks registers the claude-tray hook command in Claude's
// settings.json, for installs that do not go through the plugin manifest.
package hooks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/asheshgoplani/claude-tray/internal/logging"
	"github.com/asheshgoplani/claude-tray/internal/session"
)

var hooksLog = logging.ForComponent(logging.CompConfig)

// Marker identifies our entries among the user's own hooks.
const Marker = "claude-tray hook"

// EnvConfigDir overrides the Claude config directory.
const EnvConfigDir = "CLAUDE_CONFIG_DIR"

const settingsFile = "settings.json"

type entry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// matcher keeps each hook raw so fields we do not model survive a rewrite.
type matcher struct {
	Matcher string            `json:"matcher,omitempty"`
	Hooks   []json.RawMessage `json:"hooks"`
}

// Events are the hook events the tray subscribes to. Tool events use the
// catch-all matcher so every tool call refreshes the row.
var Events = []struct {
	Kind    session.Kind
	Matcher string
}{
	{Kind: session.KindSessionStart},
	{Kind: session.KindUserPromptSubmit},
	{Kind: session.KindPreToolUse, Matcher: "*"},
	{Kind: session.KindPostToolUse, Matcher: "*"},
	{Kind: session.KindStop},
	{Kind: session.KindSubagentStop},
	{Kind: session.KindPermissionRequest},
	{Kind: session.KindNotification},
	{Kind: session.KindSessionEnd},
}

// ConfigDir returns $CLAUDE_CONFIG_DIR or ~/.claude.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".claude"), nil
}

// Command builds the hook command line for binary.
func Command(binary string) string {
	if binary == "" {
		return Marker
	}
	return binary + " hook"
}

// settings is settings.json with every key we do not own kept verbatim.
type settings struct {
	path  string
	raw   map[string]json.RawMessage
	hooks map[string]json.RawMessage
}

func load(configDir string) (*settings, error) {
	s := &settings{
		path:  filepath.Join(configDir, settingsFile),
		raw:   map[string]json.RawMessage{},
		hooks: map[string]json.RawMessage{},
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", settingsFile, err)
	}
	if err := json.Unmarshal(data, &s.raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", settingsFile, err)
	}
	if raw, ok := s.raw["hooks"]; ok {
		// A malformed hooks value is replaced rather than failing the install.
		if err := json.Unmarshal(raw, &s.hooks); err != nil || s.hooks == nil {
			s.hooks = map[string]json.RawMessage{}
		}
	}
	return s, nil
}

func (s *settings) save() error {
	if len(s.hooks) == 0 {
		delete(s.raw, "hooks")
	} else {
		data, err := json.Marshal(s.hooks)
		if err != nil {
			return fmt.Errorf("marshal hooks: %w", err)
		}
		s.raw["hooks"] = data
	}
	out, err := json.MarshalIndent(s.raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", settingsFile, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", settingsFile, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", settingsFile, err)
	}
	return nil
}

// Install adds command to every subscribed event. It reports false when
// all events already carry a claude-tray hook.
func Install(configDir, command string) (bool, error) {
	s, err := load(configDir)
	if err != nil {
		return false, err
	}
	if s.complete() {
		return false, nil
	}
	for _, ev := range Events {
		name := string(ev.Kind)
		s.hooks[name] = addEntry(s.hooks[name], ev.Matcher, command)
	}
	if err := s.save(); err != nil {
		return false, err
	}
	hooksLog.Info("hooks_installed", slog.String("settings", s.path), slog.String("command", command))
	return true, nil
}

// Remove strips every claude-tray hook and reports whether any was found.
// User hooks and unrelated settings are preserved.
func Remove(configDir string) (bool, error) {
	s, err := load(configDir)
	if err != nil {
		return false, err
	}
	removed := false
	for name, raw := range s.hooks {
		cleaned, changed := removeEntries(raw)
		if !changed {
			continue
		}
		removed = true
		if cleaned == nil {
			delete(s.hooks, name)
		} else {
			s.hooks[name] = cleaned
		}
	}
	if !removed {
		return false, nil
	}
	if err := s.save(); err != nil {
		return false, err
	}
	hooksLog.Info("hooks_removed", slog.String("settings", s.path))
	return true, nil
}

// Installed reports whether every subscribed event carries a claude-tray hook.
func Installed(configDir string) bool {
	s, err := load(configDir)
	if err != nil {
		return false
	}
	return s.complete()
}

func (s *settings) complete() bool {
	for _, ev := range Events {
		raw, ok := s.hooks[string(ev.Kind)]
		if !ok || !hasEntry(raw) {
			return false
		}
	}
	return true
}

func ours(raw json.RawMessage) bool {
	var e entry
	if json.Unmarshal(raw, &e) != nil {
		return false
	}
	return strings.Contains(e.Command, Marker)
}

func hasEntry(raw json.RawMessage) bool {
	var ms []matcher
	if json.Unmarshal(raw, &ms) != nil {
		return false
	}
	for _, m := range ms {
		for _, e := range m.Hooks {
			if ours(e) {
				return true
			}
		}
	}
	return false
}

// addEntry appends our hook under the block with the same matcher, creating
// the block when none exists.
func addEntry(raw json.RawMessage, pattern, command string) json.RawMessage {
	var ms []matcher
	if raw != nil && json.Unmarshal(raw, &ms) != nil {
		ms = nil
	}
	hook, _ := json.Marshal(entry{Type: "command", Command: command, Timeout: 10})

	placed := false
	for i := range ms {
		if ms[i].Matcher != pattern {
			continue
		}
		for _, e := range ms[i].Hooks {
			if ours(e) {
				placed = true
			}
		}
		if !placed {
			ms[i].Hooks = append(ms[i].Hooks, hook)
			placed = true
		}
		break
	}
	if !placed {
		ms = append(ms, matcher{Matcher: pattern, Hooks: []json.RawMessage{hook}})
	}
	out, _ := json.Marshal(ms)
	return out
}

// removeEntries drops our hooks from one event. It returns nil when no
// block is left.
func removeEntries(raw json.RawMessage) (json.RawMessage, bool) {
	var ms []matcher
	if json.Unmarshal(raw, &ms) != nil {
		return raw, false
	}
	changed := false
	kept := ms[:0]
	for _, m := range ms {
		hooks := m.Hooks[:0]
		for _, e := range m.Hooks {
			if ours(e) {
				changed = true
				continue
			}
			hooks = append(hooks, e)
		}
		if len(hooks) > 0 {
			m.Hooks = hooks
			kept = append(kept, m)
		}
	}
	if !changed {
		return raw, false
	}
	if len(kept) == 0 {
		return nil, true
	}
	out, _ := json.Marshal(kept)
	return out, true
}
