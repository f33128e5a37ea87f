// Package focus raises the window of a terminal process.
package focus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/asheshgoplani/claude-tray/internal/logging"
	"github.com/asheshgoplani/claude-tray/internal/platform"
)

var focusLog = logging.ForComponent(logging.CompFocus)

// ErrUnsupported means no focusing tool is available on this system.
var ErrUnsupported = errors.New("window focus not supported")

// ErrNoWindow means the tools ran but no window belongs to the pid.
var ErrNoWindow = errors.New("no window for process")

// Focuser brings the window owned by pid to the front.
type Focuser interface {
	Focus(ctx context.Context, pid int) error
}

// runFunc runs a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// New picks the focuser for the current platform.
func New() Focuser {
	switch platform.Detect() {
	case platform.PlatformMacOS:
		return &MacOS{run: execRun}
	case platform.PlatformLinux:
		if !platform.HasX11() {
			return Noop{}
		}
		return &X11{run: execRun, lookPath: exec.LookPath}
	default:
		return Noop{}
	}
}

// Noop reports ErrUnsupported for every pid except 0.
type Noop struct{}

func (Noop) Focus(_ context.Context, pid int) error {
	if pid <= 0 {
		return nil
	}
	return ErrUnsupported
}

// X11 focuses through xdotool, falling back to wmctrl.
type X11 struct {
	run      runFunc
	lookPath func(string) (string, error)
}

func (x *X11) Focus(ctx context.Context, pid int) error {
	if pid <= 0 {
		return nil
	}
	var errs []error
	if _, err := x.lookPath("xdotool"); err == nil {
		err = x.xdotool(ctx, pid)
		if err == nil {
			focusLog.Debug("focus_ok", slog.String("method", "xdotool"), slog.Int("pid", pid))
			return nil
		}
		errs = append(errs, err)
	}
	if _, err := x.lookPath("wmctrl"); err == nil {
		err = x.wmctrl(ctx, pid)
		if err == nil {
			focusLog.Debug("focus_ok", slog.String("method", "wmctrl"), slog.Int("pid", pid))
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return fmt.Errorf("%w (install xdotool or wmctrl)", ErrUnsupported)
	}
	return errors.Join(errs...)
}

func (x *X11) xdotool(ctx context.Context, pid int) error {
	out, err := x.run(ctx, "xdotool", "search", "--pid", strconv.Itoa(pid))
	if err != nil {
		// xdotool search exits 1 when nothing matches.
		return fmt.Errorf("xdotool search: %w", ErrNoWindow)
	}
	wid := firstField(string(out))
	if wid == "" {
		return fmt.Errorf("xdotool search: %w", ErrNoWindow)
	}
	if _, err := x.run(ctx, "xdotool", "windowactivate", wid); err != nil {
		return fmt.Errorf("xdotool windowactivate %s: %w", wid, err)
	}
	return nil
}

func (x *X11) wmctrl(ctx context.Context, pid int) error {
	out, err := x.run(ctx, "wmctrl", "-lp")
	if err != nil {
		return fmt.Errorf("wmctrl -lp: %w", err)
	}
	wid := windowForPID(string(out), pid)
	if wid == "" {
		return fmt.Errorf("wmctrl: %w", ErrNoWindow)
	}
	if _, err := x.run(ctx, "wmctrl", "-ia", wid); err != nil {
		return fmt.Errorf("wmctrl -ia %s: %w", wid, err)
	}
	return nil
}

// windowForPID scans `wmctrl -lp` output ("<wid> <desktop> <pid> <host> <title>").
func windowForPID(listing string, pid int) string {
	want := strconv.Itoa(pid)
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[2] == want {
			return fields[0]
		}
	}
	return ""
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// MacOS focuses through System Events.
type MacOS struct {
	run runFunc
}

func (m *MacOS) Focus(ctx context.Context, pid int) error {
	if pid <= 0 {
		return nil
	}
	script := fmt.Sprintf(
		`tell application "System Events" to set frontmost of (first process whose unix id is %d) to true`, pid)
	if _, err := m.run(ctx, "osascript", "-e", script); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("osascript: %w", ErrNoWindow)
		}
		return fmt.Errorf("osascript: %w", err)
	}
	focusLog.Debug("focus_ok", slog.String("method", "osascript"), slog.Int("pid", pid))
	return nil
}
