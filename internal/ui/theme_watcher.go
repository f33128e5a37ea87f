package ui

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	dark "github.com/thiagokokada/dark-mode-go"
)

// themeMsg carries a theme change from the OS.
type themeMsg Theme

// ThemeWatcher follows the OS dark mode setting for the "system" theme.
type ThemeWatcher struct {
	changes chan Theme
	stop    context.CancelFunc
	once    sync.Once
}

// NewThemeWatcher starts watching. It returns nil when the platform cannot
// report changes; the theme then stays as resolved at startup.
func NewThemeWatcher(parent context.Context) *ThemeWatcher {
	ctx, cancel := context.WithCancel(parent)

	events, errs, err := dark.WatchDarkMode(ctx)
	if err != nil {
		cancel()
		uiLog.Warn("theme_watcher_init_failed", slog.String("error", err.Error()))
		return nil
	}

	tw := &ThemeWatcher{changes: make(chan Theme, 1), stop: cancel}
	go tw.forward(ctx, events, errs)
	return tw
}

func (tw *ThemeWatcher) forward(ctx context.Context, events <-chan bool, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case isDark, ok := <-events:
			if !ok {
				return
			}
			theme := ThemeLight
			if isDark {
				theme = ThemeDark
			}
			// Keep only the newest value if the UI is behind.
			select {
			case <-tw.changes:
			default:
			}
			tw.changes <- theme
		case err, ok := <-errs:
			if ok && err != nil {
				uiLog.Warn("theme_watcher_error", slog.String("error", err.Error()))
			}
		}
	}
}

// Next returns a command that waits for the next theme change.
func (tw *ThemeWatcher) Next() tea.Cmd {
	return func() tea.Msg {
		return themeMsg(<-tw.changes)
	}
}

// Close stops watching. Safe to call more than once.
func (tw *ThemeWatcher) Close() {
	tw.once.Do(tw.stop)
}
