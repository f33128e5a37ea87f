// Package tray is the consumer side: it polls the shared store and turns
// every full read into the smallest set of display updates.
package tray

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asheshgoplani/claude-tray/internal/focus"
	"github.com/asheshgoplani/claude-tray/internal/logging"
	"github.com/asheshgoplani/claude-tray/internal/session"
)

var trayLog = logging.ForComponent(logging.CompTray)

const (
	// DefaultCapacity is the number of pre-allocated row slots.
	DefaultCapacity = 8

	// DefaultInterval is the poll period.
	DefaultInterval = time.Second
)

// Renderer draws the tray. Calls arrive only when something visible changed.
type Renderer interface {
	RenderAggregate(status session.Status)
	RenderRow(slot int, row Row)
}

// Source is the store as seen by the consumer.
type Source interface {
	Read() (session.Sessions, error)
	Commit(fn func(session.Sessions) session.Sessions) error
}

// Sync keeps a fixed set of slots in step with the store.
type Sync struct {
	src      Source
	renderer Renderer
	focuser  focus.Focuser
	cutoff   time.Duration
	interval time.Duration
	watcher  *Watcher

	mu        sync.Mutex
	slots     []Row
	pending   []Row
	aggregate session.Status
	drawn     bool
	menuOpen  bool
}

// Option configures a Sync.
type Option func(*Sync)

// WithCapacity sets the number of slots.
func WithCapacity(n int) Option {
	return func(s *Sync) {
		if n > 0 {
			s.slots = make([]Row, n)
		}
	}
}

// WithStaleCutoff sets the staleness cutoff; non-positive disables eviction.
func WithStaleCutoff(d time.Duration) Option {
	return func(s *Sync) { s.cutoff = d }
}

// WithInterval sets the poll period used by Run.
func WithInterval(d time.Duration) Option {
	return func(s *Sync) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithFocuser sets the focuser used by Activate.
func WithFocuser(f focus.Focuser) Option {
	return func(s *Sync) { s.focuser = f }
}

// WithWatcher adds change notifications on top of the poll interval.
func WithWatcher(w *Watcher) Option {
	return func(s *Sync) { s.watcher = w }
}

// NewSync returns a Sync reading src and drawing on r.
func NewSync(src Source, r Renderer, opts ...Option) *Sync {
	s := &Sync{
		src:      src,
		renderer: r,
		focuser:  focus.Noop{},
		cutoff:   session.DefaultStaleCutoff,
		interval: DefaultInterval,
		slots:    make([]Row, DefaultCapacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the poll period.
func (s *Sync) Interval() time.Duration {
	return s.interval
}

// Capacity returns the number of slots.
func (s *Sync) Capacity() int {
	return len(s.slots)
}

// Tick reads the store once and pushes what changed to the renderer.
// A failed read leaves the current view untouched.
func (s *Sync) Tick(now time.Time) {
	all, err := s.src.Read()
	if err != nil {
		trayLog.Warn("tray_read_failed", slog.String("error", err.Error()))
		return
	}

	alive, stale := session.Partition(all, now, s.cutoff)
	if len(stale) > 0 {
		if err := s.src.Commit(session.PruneStale(now, s.cutoff)); err != nil {
			trayLog.Warn("tray_prune_failed", slog.String("error", err.Error()))
		} else {
			trayLog.Info("tray_pruned_stale", slog.Int("count", len(stale)))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	agg := session.Aggregate(alive)
	if !s.drawn || agg != s.aggregate {
		if s.drawn {
			trayLog.Debug("tray_aggregate_changed",
				slog.String("from", string(s.aggregate)),
				slog.String("to", string(agg)),
			)
		}
		s.aggregate = agg
		s.drawn = true
		s.renderer.RenderAggregate(agg)
	}

	rows := BuildRows(alive, len(s.slots))
	if s.menuOpen {
		s.pending = rows
		return
	}
	s.apply(rows)
}

// apply renders the slots whose visibility or label changed and silently
// refreshes the rest. Callers hold mu.
func (s *Sync) apply(rows []Row) {
	for i, next := range rows {
		cur := s.slots[i]
		s.slots[i] = next
		if cur.Visible == next.Visible && cur.Label == next.Label {
			continue
		}
		s.renderer.RenderRow(i, next)
	}
}

// SetMenuOpen freezes row updates while the menu is open. Closing it applies
// the latest rows computed in the meantime.
func (s *Sync) SetMenuOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.menuOpen = open
	if !open && s.pending != nil {
		s.apply(s.pending)
		s.pending = nil
	}
}

// MenuOpen reports whether row updates are deferred.
func (s *Sync) MenuOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuOpen
}

// Slot returns the current contents of slot i.
func (s *Sync) Slot(i int) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.slots) {
		return Row{}, false
	}
	return s.slots[i], true
}

// Activate focuses the terminal of the session shown in slot i. Hidden slots
// and sessions without a terminal are ignored.
func (s *Sync) Activate(ctx context.Context, i int) error {
	row, ok := s.Slot(i)
	if !ok {
		return nil
	}
	return s.Focus(ctx, row)
}

// Focus brings row's terminal forward. Callers that picked row from a frozen
// menu pass it here rather than a slot index, since the slots may have moved
// on once the menu closed.
func (s *Sync) Focus(ctx context.Context, row Row) error {
	if !row.Visible || row.TerminalPID == 0 {
		return nil
	}
	if err := s.focuser.Focus(ctx, row.TerminalPID); err != nil {
		trayLog.Warn("tray_focus_failed",
			slog.String("session", row.SessionID),
			slog.Int("pid", row.TerminalPID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("focus session %s: %w", session.ShortID(row.SessionID), err)
	}
	return nil
}

// Run ticks immediately, then on every interval and watcher wake-up, until
// ctx is cancelled.
func (s *Sync) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	var wake <-chan struct{}
	if s.watcher != nil {
		wake = s.watcher.Wake()
		g.Go(func() error { return s.watcher.Run(ctx) })
	}
	g.Go(func() error { return s.loop(ctx, wake) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Sync) loop(ctx context.Context, wake <-chan struct{}) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(time.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Tick(now)
		case <-wake:
			s.Tick(time.Now())
		}
	}
}
