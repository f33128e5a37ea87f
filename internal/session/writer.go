package session

import (
	"log/slog"
	"time"

	"github.com/asheshgoplani/claude-tray/internal/logging"
)

var hookLog = logging.ForComponent(logging.CompHook)

// Committer applies a transform to the full store under mutual exclusion.
// *store.Store is the production implementation.
type Committer interface {
	Commit(fn func(Sessions) Sessions) error
}

// Locator resolves the terminal process hosting the current session.
type Locator interface {
	Locate() (pid int, ok bool)
}

// Launcher starts the tray when it is not already running.
type Launcher interface {
	Running() bool
	Launch() error
}

// Writer is the producer side: it turns one hook event into one store
// transaction. A hook process creates a Writer, calls Handle once and exits.
type Writer struct {
	store    Committer
	locator  Locator
	launcher Launcher
	now      func() time.Time

	titleLimit   int
	staleCutoff  time.Duration
	pruneOnWrite bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLocator sets the terminal locator consulted on SessionStart.
func WithLocator(l Locator) WriterOption {
	return func(w *Writer) { w.locator = l }
}

// WithLauncher sets the tray launcher consulted on SessionStart.
func WithLauncher(l Launcher) WriterOption {
	return func(w *Writer) { w.launcher = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) { w.now = now }
}

// WithTitleLimit sets how many characters of the first prompt become the title.
func WithTitleLimit(n int) WriterOption {
	return func(w *Writer) {
		if n > 0 {
			w.titleLimit = n
		}
	}
}

// WithStalePruning makes every commit also drop records older than cutoff.
// A non-positive cutoff turns pruning off.
func WithStalePruning(cutoff time.Duration) WriterOption {
	return func(w *Writer) {
		w.staleCutoff = cutoff
		w.pruneOnWrite = cutoff > 0
	}
}

// NewWriter creates a Writer committing to store.
func NewWriter(store Committer, opts ...WriterOption) *Writer {
	w := &Writer{
		store:      store,
		now:        time.Now,
		titleLimit: DefaultTitleLimit,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Handle records ev. Failures are logged and dropped: the store is advisory
// telemetry and the agent must never be slowed down or failed by it.
func (w *Writer) Handle(ev Event) {
	if ev.SessionID == "" {
		ev.SessionID = UnknownSessionID
	}
	status, removal := StatusFor(ev)

	var terminalPID int
	if ev.Kind == KindSessionStart {
		w.ensureTray()
		if w.locator != nil {
			if pid, ok := w.locator.Locate(); ok {
				terminalPID = pid
			}
		}
	}

	now := w.now()
	err := w.store.Commit(func(s Sessions) Sessions {
		if s == nil {
			s = Sessions{}
		}
		if w.pruneOnWrite {
			s = PruneStale(now, w.staleCutoff)(s)
		}
		if removal {
			delete(s, ev.SessionID)
			return s
		}
		s[ev.SessionID] = w.merge(s[ev.SessionID], ev, status, terminalPID, now)
		return s
	})
	if err != nil {
		hookLog.Warn("hook_commit_dropped",
			slog.String("session", ev.SessionID),
			slog.String("event", string(ev.Kind)),
			slog.String("error", err.Error()),
		)
		return
	}

	hookLog.Debug("hook_event_committed",
		slog.String("session", ev.SessionID),
		slog.String("event", string(ev.Kind)),
		slog.String("status", string(status)),
		slog.Bool("removed", removal),
	)
}

// merge folds ev onto prev (the zero Record for a new session). Title and
// terminal pid are write-once, tool and directory follow the latest event,
// and UpdatedAt never moves backwards.
func (w *Writer) merge(prev Record, ev Event, status Status, terminalPID int, now time.Time) Record {
	rec := Record{
		Status:           status,
		Event:            string(ev.Kind),
		Title:            prev.Title,
		WorkingDirectory: ev.WorkingDirectory,
		ToolName:         ev.ToolName,
		TerminalPID:      prev.TerminalPID,
		UpdatedAt:        now,
	}
	if rec.Title == "" && ev.Kind == KindUserPromptSubmit {
		rec.Title = TruncateTitle(ev.Prompt, w.titleLimit)
	}
	if rec.TerminalPID == 0 && ev.Kind == KindSessionStart {
		rec.TerminalPID = terminalPID
	}
	if prev.UpdatedAt.After(now) {
		rec.UpdatedAt = prev.UpdatedAt
	}
	return rec
}

// ensureTray launches the tray when none is running. Two hooks starting at
// the same moment may both launch; the second tray exits on its own.
func (w *Writer) ensureTray() {
	if w.launcher == nil || w.launcher.Running() {
		return
	}
	if err := w.launcher.Launch(); err != nil {
		hookLog.Warn("tray_launch_failed", slog.String("error", err.Error()))
	}
}
