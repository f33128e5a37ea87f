package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/asheshgoplani/claude-tray/internal/config"
	"github.com/asheshgoplani/claude-tray/internal/launch"
	"github.com/asheshgoplani/claude-tray/internal/logging"
	"github.com/asheshgoplani/claude-tray/internal/proc"
	"github.com/asheshgoplani/claude-tray/internal/session"
)

// maxHookPayload caps how much of stdin is read. Prompts can be long but a
// title only needs the first few dozen characters.
const maxHookPayload = 4 << 20

// handleHook records one Claude Code hook event read from r. It never
// returns an error: the agent must not be slowed down or failed by the tray.
func handleHook(r io.Reader) {
	env, err := loadEnv()
	if err != nil {
		return
	}
	defer env.initLogging(logging.CompHook)()

	data, err := io.ReadAll(io.LimitReader(r, maxHookPayload))
	if err != nil {
		logging.ForComponent(logging.CompHook).Warn("hook_stdin_failed", slog.String("error", err.Error()))
	}

	ev := session.ParseHookPayload(data)
	env.newWriter().Handle(ev)
}

// newWriter wires a session.Writer to the store, the terminal locator and
// the tray launcher according to config.
func (e *appEnv) newWriter() *session.Writer {
	opts := []session.WriterOption{
		session.WithTitleLimit(e.cfg.Session.GetTitleLimit()),
		session.WithLocator(proc.NewLocator(proc.NewTable(),
			proc.WithMaxHops(e.cfg.Locator.GetMaxHops()),
			proc.WithExtraTerminals(e.cfg.Locator.ExtraTerminals...),
		)),
	}
	if e.cfg.Staleness.GetPruneOnWrite() {
		opts = append(opts, session.WithStalePruning(e.cfg.Staleness.StaleCutoff()))
	}
	if lockPath, err := config.TrayLockPath(); err == nil {
		binary := launch.BinaryPath(os.Getenv(config.EnvPluginRoot))
		opts = append(opts, session.WithLauncher(launch.New(lockPath, binary)))
	}
	return session.NewWriter(e.store(), opts...)
}
