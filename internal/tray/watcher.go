package tray

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/asheshgoplani/claude-tray/internal/platform"
)

// MaxWakeRate caps store change notifications per second. The poll interval
// catches anything dropped by the limiter.
const MaxWakeRate = 5

// Watcher turns writes to the store file into wake-ups for Sync.
type Watcher struct {
	dir     string
	name    string
	fs      *fsnotify.Watcher
	limiter *rate.Limiter
	wake    chan struct{}
}

// NewWatcher watches the directory holding storePath. It fails when the
// filesystem cannot deliver reliable events, in which case the caller should
// fall back to polling alone.
func NewWatcher(storePath string) (*Watcher, error) {
	dir := filepath.Dir(storePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	if warning := platform.CheckFsnotifySupport(dir); warning != "" {
		return nil, fmt.Errorf("fsnotify unsupported: %s", warning)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		name:    filepath.Base(storePath),
		fs:      fsw,
		limiter: rate.NewLimiter(rate.Every(time.Second/MaxWakeRate), 1),
		wake:    make(chan struct{}, 1),
	}, nil
}

// Wake delivers at most one pending notification at a time.
func (w *Watcher) Wake() <-chan struct{} {
	return w.wake
}

// Run forwards events until ctx is cancelled, then closes the underlying
// watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			// Commits land as a rename of sessions.json.tmp onto sessions.json.
			if filepath.Base(event.Name) != w.name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.limiter.Allow() {
				continue
			}
			select {
			case w.wake <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			trayLog.Warn("tray_watcher_error", slog.String("dir", w.dir), slog.String("error", err.Error()))
		}
	}
}
