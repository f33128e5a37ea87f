package proc

import (
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/asheshgoplani/claude-tray/internal/logging"
)

var procLog = logging.ForComponent(logging.CompProc)

// DefaultMaxHops bounds the ancestor walk.
const DefaultMaxHops = 10

// KnownTerminals are process names of terminal hosts worth focusing. Names
// are matched exactly or as a prefix followed by a non-letter, which covers
// gnome-terminal-server and Linux's 15-byte comm truncation.
var KnownTerminals = []string{
	"gnome-terminal",
	"konsole",
	"xterm",
	"kitty",
	"alacritty",
	"wezterm",
	"tilix",
	"terminator",
	"xfce4-terminal",
	"foot",
	"urxvt",
	"st",
	"ghostty",
	"Terminal",
	"iTerm2",
	"code",
	"cursor",
	"WindowsTerminal",
}

// Locator finds the nearest terminal ancestor of the current process.
type Locator struct {
	table   ProcessTable
	hosts   []string
	maxHops int
	start   func() int
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithMaxHops overrides DefaultMaxHops.
func WithMaxHops(n int) LocatorOption {
	return func(l *Locator) {
		if n > 0 {
			l.maxHops = n
		}
	}
}

// WithExtraTerminals adds host names to KnownTerminals.
func WithExtraTerminals(names ...string) LocatorOption {
	return func(l *Locator) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				l.hosts = append(l.hosts, n)
			}
		}
	}
}

// WithStartPID starts the walk at pid instead of the parent process.
func WithStartPID(pid int) LocatorOption {
	return func(l *Locator) { l.start = func() int { return pid } }
}

// NewLocator returns a Locator reading table.
func NewLocator(table ProcessTable, opts ...LocatorOption) *Locator {
	l := &Locator{
		table:   table,
		hosts:   append([]string(nil), KnownTerminals...),
		maxHops: DefaultMaxHops,
		start:   os.Getppid,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate walks up from the parent process for at most maxHops entries and
// returns the first whose name is a known terminal. ok is false when the
// walk reaches init, hits the hop limit or a lookup fails.
func (l *Locator) Locate() (pid int, ok bool) {
	cur := l.start()
	for hop := 0; hop < l.maxHops; hop++ {
		if cur <= 1 {
			return 0, false
		}
		p, err := l.table.Lookup(cur)
		if err != nil {
			procLog.Debug("locator_lookup_failed",
				slog.Int("pid", cur),
				slog.String("error", err.Error()),
			)
			return 0, false
		}
		if l.isTerminal(p.Name) {
			procLog.Debug("locator_found", slog.Int("pid", cur), slog.String("name", p.Name), slog.Int("hops", hop))
			return cur, true
		}
		cur = p.PPID
	}
	return 0, false
}

func (l *Locator) isTerminal(name string) bool {
	for _, host := range l.hosts {
		if matchHost(name, host) {
			return true
		}
	}
	return false
}

func matchHost(name, host string) bool {
	if !strings.HasPrefix(name, host) {
		return false
	}
	if len(name) == len(host) {
		return true
	}
	next := rune(name[len(host)])
	return !unicode.IsLetter(next)
}
