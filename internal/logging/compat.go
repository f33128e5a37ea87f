package logging

import (
	"bytes"
	"log/slog"
	"strings"
)

// BridgeWriter lets stdlib log output (ours and our dependencies') flow
// into slog. A leading "[category] " prefix becomes the component field.
type BridgeWriter struct {
	logger    *slog.Logger
	component string
}

// NewBridgeWriter creates a writer forwarding each write as one record.
// defaultComponent is used when a line carries no category prefix.
func NewBridgeWriter(defaultComponent string) *BridgeWriter {
	return &BridgeWriter{
		logger:    Logger(),
		component: defaultComponent,
	}
}

// Write implements io.Writer.
func (bw *BridgeWriter) Write(p []byte) (int, error) {
	n := len(p)
	msg := string(bytes.TrimSpace(p))
	if msg == "" {
		return n, nil
	}

	msg = stripLogTimestamp(msg)

	component := bw.component
	if strings.HasPrefix(msg, "[") {
		if idx := strings.Index(msg, "] "); idx > 0 {
			component = strings.ToLower(msg[1:idx])
			msg = msg[idx+2:]
		}
	}

	bw.logger.Info(msg, slog.String("component", canonicalComponent(component)))
	return n, nil
}

// stripLogTimestamp removes the prefix added by log.Ltime or
// log.Ltime|log.Lmicroseconds; slog stamps its own time.
func stripLogTimestamp(s string) string {
	if len(s) > 16 && s[2] == ':' && s[5] == ':' && s[8] == '.' && s[15] == ' ' {
		return s[16:]
	}
	if len(s) > 9 && s[2] == ':' && s[5] == ':' && s[8] == ' ' {
		return s[9:]
	}
	return s
}

func canonicalComponent(cat string) string {
	switch cat {
	case "store", "lock", "codec":
		return CompStore
	case "hook", "writer", "launch":
		return CompHook
	case "tray", "sync", "watcher":
		return CompTray
	case "proc", "locator":
		return CompProc
	case "focus", "wm":
		return CompFocus
	case "ui", "tea", "bubbletea":
		return CompUI
	case "config":
		return CompConfig
	default:
		return cat
	}
}
