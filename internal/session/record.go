package session

import (
	"time"
	"unicode/utf8"
)

// Record is the stored state of one session. The session id is the key
// in Sessions and is not repeated here.
type Record struct {
	Status           Status    `json:"status"`
	Event            string    `json:"event"`
	Title            string    `json:"title,omitempty"`
	WorkingDirectory string    `json:"cwd,omitempty"`
	ToolName         string    `json:"tool_name,omitempty"`
	TerminalPID      int       `json:"terminal_pid,omitempty"`
	UpdatedAt        time.Time `json:"timestamp"`
}

// Sessions is the whole store: session id -> record.
type Sessions map[string]Record

// Clone returns a shallow copy that can be mutated independently.
func (s Sessions) Clone() Sessions {
	out := make(Sessions, len(s))
	for id, rec := range s {
		out[id] = rec
	}
	return out
}

// DefaultTitleLimit is the number of characters kept from the first prompt.
const DefaultTitleLimit = 40

// Ellipsis marks a truncated title.
const Ellipsis = "..."

// TruncateTitle keeps the first limit characters of s and appends Ellipsis
// when anything was cut. Strings of at most limit characters are returned as is.
func TruncateTitle(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}

// ShortID is the first eight characters of a session id.
func ShortID(id string) string {
	if utf8.RuneCountInString(id) <= 8 {
		return id
	}
	return string([]rune(id)[:8])
}
