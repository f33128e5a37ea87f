package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/asheshgoplani/claude-tray/internal/config"
	"github.com/asheshgoplani/claude-tray/internal/focus"
	"github.com/asheshgoplani/claude-tray/internal/launch"
	"github.com/asheshgoplani/claude-tray/internal/logging"
	"github.com/asheshgoplani/claude-tray/internal/platform"
	"github.com/asheshgoplani/claude-tray/internal/store"
	"github.com/asheshgoplani/claude-tray/internal/tray"
	"github.com/asheshgoplani/claude-tray/internal/ui"
)

// handleTray runs the consumer until interrupted or quit.
func handleTray(args []string) int {
	fs := flag.NewFlagSet("tray", flag.ContinueOnError)
	headless := fs.Bool("headless", false, "Print changes as lines instead of running the terminal UI")
	force := fs.Bool("force", false, "Run even if another tray holds the lock")
	fs.Usage = func() {
		fmt.Println("Usage: claude-tray tray [--headless] [--force]")
		fmt.Println()
		fmt.Println("Show the aggregate status and live sessions, refreshed every poll interval.")
		fmt.Println()
		fs.PrintDefaults()
	}
	if err := parseNoArgs(fs, args); err != nil {
		return 2
	}

	env, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer env.initLogging(logging.CompTray)()
	defer env.watchDumpSignal()()
	trayLog := logging.ForComponent(logging.CompTray)

	if !*force {
		lockPath, err := config.TrayLockPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		lock, err := launch.ClaimTray(lockPath)
		if errors.Is(err, launch.ErrAlreadyRunning) {
			trayLog.Info("tray_already_running", slog.String("lock", lockPath))
			fmt.Fprintln(os.Stderr, "claude-tray is already running")
			return 0
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer lock.Unlock()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := env.store()
	watcher, err := tray.NewWatcher(st.Path())
	if err != nil {
		trayLog.Info("tray_watcher_disabled", slog.String("reason", err.Error()))
		watcher = nil
	}

	trayLog.Info("tray_started",
		slog.Int("pid", os.Getpid()),
		slog.String("store", st.Path()),
		slog.Bool("headless", *headless),
		slog.String("platform", platform.Detect().String()),
	)

	if *headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		err = runHeadless(ctx, env, st, watcher)
	} else {
		err = runInteractive(ctx, env, st, watcher)
	}
	if err != nil {
		trayLog.Error("tray_exited", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (e *appEnv) syncOptions() []tray.Option {
	return []tray.Option{
		tray.WithCapacity(e.cfg.Tray.GetMaxRows()),
		tray.WithInterval(e.cfg.Tray.Interval()),
		tray.WithStaleCutoff(e.cfg.Staleness.StaleCutoff()),
		tray.WithFocuser(focus.New()),
	}
}

func runHeadless(ctx context.Context, env *appEnv, st *store.Store, watcher *tray.Watcher) error {
	opts := env.syncOptions()
	if watcher != nil {
		opts = append(opts, tray.WithWatcher(watcher))
	}
	return tray.NewSync(st, tray.NewLogRenderer(os.Stdout), opts...).Run(ctx)
}

func runInteractive(ctx context.Context, env *appEnv, st *store.Store, watcher *tray.Watcher) error {
	initColorProfile()

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var wake <-chan struct{}
	if watcher != nil {
		wake = watcher.Wake()
		g.Go(func() error { return watcher.Run(ctx) })
	}

	m := ui.New(ctx, st, ui.Options{
		Theme:       env.cfg.Tray.GetTheme(),
		SystemTheme: config.DetectSystemTheme,
		Wake:        wake,
		SyncOptions: env.syncOptions(),
	})
	g.Go(func() error {
		// Quitting the UI stops the watcher too.
		defer stop()
		return ui.Run(ctx, m)
	})
	return g.Wait()
}
