// Package launch starts the tray from a hook process and keeps a single tray
// running per user.
package launch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/asheshgoplani/claude-tray/internal/flock"
	"github.com/asheshgoplani/claude-tray/internal/logging"
)

var launchLog = logging.ForComponent(logging.CompHook)

// BinaryRelPath is the tray executable relative to the plugin root.
const BinaryRelPath = "bin/claude-tray"

// TrayArg is the subcommand that runs the consumer.
const TrayArg = "tray"

// ErrAlreadyRunning is returned by ClaimTray when another tray holds the lock.
var ErrAlreadyRunning = errors.New("tray already running")

// Launcher probes the tray singleton lock and starts a detached tray.
type Launcher struct {
	lockPath string
	binary   string
	spawn    func(path string, args ...string) error
}

// New returns a Launcher probing lockPath and starting binary. An empty
// binary disables Launch.
func New(lockPath, binary string) *Launcher {
	return &Launcher{lockPath: lockPath, binary: binary, spawn: spawnDetached}
}

// BinaryPath resolves the tray executable: the plugin's bin/claude-tray when
// pluginRoot is set, otherwise the running executable if it is claude-tray.
func BinaryPath(pluginRoot string) string {
	if pluginRoot != "" {
		return filepath.Join(pluginRoot, filepath.FromSlash(BinaryRelPath))
	}
	exe, err := os.Executable()
	if err != nil || !strings.HasPrefix(filepath.Base(exe), "claude-tray") {
		return ""
	}
	return exe
}

// Running reports whether a tray holds the singleton lock. The probe takes
// and immediately releases the lock, so it never blocks a starting tray for
// longer than one syscall. Probe failures count as not running.
func (l *Launcher) Running() bool {
	lock := flock.New(l.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		launchLog.Debug("tray_probe_failed", slog.String("error", err.Error()))
		return false
	}
	if !ok {
		return true
	}
	_ = lock.Unlock()
	return false
}

// Launch starts `<binary> tray` detached from the caller. A missing binary
// is not an error: the plugin may be installed without the tray.
func (l *Launcher) Launch() error {
	if l.binary == "" {
		return nil
	}
	info, err := os.Stat(l.binary)
	if err != nil || info.IsDir() {
		launchLog.Debug("tray_binary_missing", slog.String("path", l.binary))
		return nil
	}
	if err := l.spawn(l.binary, TrayArg); err != nil {
		return fmt.Errorf("launch tray: %w", err)
	}
	launchLog.Info("tray_launched", slog.String("path", l.binary))
	return nil
}

// ClaimTray takes the tray singleton lock for the life of the process. The
// caller releases it with Unlock on shutdown; the kernel releases it on crash.
func ClaimTray(lockPath string) (*flock.Lock, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o700); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return lock, nil
}
