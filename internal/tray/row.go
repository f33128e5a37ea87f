package tray

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/asheshgoplani/claude-tray/internal/session"
)

// LabelSeparator joins the parts of a row label.
const LabelSeparator = " · "

// Row is the content of one display slot.
type Row struct {
	Visible     bool
	SessionID   string
	Label       string
	Status      session.Status
	TerminalPID int
}

// FormatLabel renders "<short id> · <dir> · <title> · <status> (<tool>)",
// leaving out empty parts.
func FormatLabel(id string, rec session.Record) string {
	parts := make([]string, 0, 4)
	parts = append(parts, session.ShortID(id))
	if dir := dirName(rec.WorkingDirectory); dir != "" {
		parts = append(parts, dir)
	}
	if rec.Title != "" {
		parts = append(parts, rec.Title)
	}
	status := string(rec.Status)
	if status == "" {
		status = string(session.StatusUnknown)
	}
	if rec.ToolName != "" {
		status += " (" + rec.ToolName + ")"
	}
	parts = append(parts, status)
	return strings.Join(parts, LabelSeparator)
}

func dirName(path string) string {
	path = strings.TrimRight(path, "/")
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// BuildRows lays out the alive sessions ordered by id into exactly capacity
// rows; rows past the number of sessions are hidden.
func BuildRows(alive session.Sessions, capacity int) []Row {
	ids := make([]string, 0, len(alive))
	for id := range alive {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]Row, capacity)
	for i := 0; i < capacity && i < len(ids); i++ {
		id := ids[i]
		rec := alive[id]
		rows[i] = Row{
			Visible:     true,
			SessionID:   id,
			Label:       FormatLabel(id, rec),
			Status:      rec.Status,
			TerminalPID: rec.TerminalPID,
		}
	}
	return rows
}
