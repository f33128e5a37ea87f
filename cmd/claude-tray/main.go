package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/asheshgoplani/claude-tray/internal/config"
	"github.com/asheshgoplani/claude-tray/internal/logging"
	"github.com/asheshgoplani/claude-tray/internal/store"
)

const Version = "0.3.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("claude-tray v%s\n", Version)
		return
	case "help", "--help", "-h":
		printHelp()
		return
	case "hook":
		// Never fail the agent: every error inside is logged and dropped.
		handleHook(os.Stdin)
		return
	}

	var code int
	switch args[0] {
	case "tray":
		code = handleTray(args[1:])
	case "status":
		code = handleStatus(args[1:])
	case "focus":
		code = handleFocus(args[1:])
	case "prune":
		code = handlePrune(args[1:])
	case "install-hooks":
		code = handleHooks(args[1:], true)
	case "uninstall-hooks":
		code = handleHooks(args[1:], false)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printHelp()
		code = 2
	}
	os.Exit(code)
}

// appEnv is the resolved configuration shared by all subcommands.
type appEnv struct {
	cfg       *config.UserConfig
	cfgErr    error
	baseDir   string
	storePath string
}

func loadEnv() (*appEnv, error) {
	cfg, cfgErr := config.Load()
	baseDir, err := config.BaseDir()
	if err != nil {
		return nil, err
	}
	storePath, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	return &appEnv{cfg: cfg, cfgErr: cfgErr, baseDir: baseDir, storePath: storePath}, nil
}

func (e *appEnv) store() *store.Store {
	return store.New(e.storePath)
}

// initLogging starts file logging when debug is on and routes stdlib log
// output through slog.
func (e *appEnv) initLogging(component string) func() {
	logging.Init(e.cfg.Logs.LoggingConfig(e.baseDir))
	log.SetOutput(logging.NewBridgeWriter(component))
	log.SetFlags(0)
	// A broken config.toml still runs on defaults.
	if e.cfgErr != nil {
		logging.ForComponent(logging.CompConfig).Warn("config_parse_failed", slog.String("error", e.cfgErr.Error()))
	}
	return logging.Shutdown
}

// watchDumpSignal writes the in-memory log ring to disk on SIGUSR1.
func (e *appEnv) watchDumpSignal() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ch:
				path := filepath.Join(e.baseDir, fmt.Sprintf("crash-dump-%d.jsonl", time.Now().Unix()))
				if err := logging.DumpRingBuffer(path); err != nil {
					logging.ForComponent(logging.CompTray).Error("crash_dump_failed", slog.String("error", err.Error()))
				} else {
					logging.ForComponent(logging.CompTray).Info("crash_dump_written", slog.String("path", path))
				}
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func printHelp() {
	fmt.Printf("claude-tray v%s\n", Version)
	fmt.Println("Session status tray for Claude Code.")
	fmt.Println()
	fmt.Println("Usage: claude-tray <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  hook                 Record one hook event read from stdin (used by Claude Code)")
	fmt.Println("  tray [--headless]    Run the tray (singleton; --force skips the lock)")
	fmt.Println("  status [--json]      Print live sessions (--all includes stale ones)")
	fmt.Println("  focus <session-id>   Focus the terminal running a session")
	fmt.Println("  prune                Remove stale sessions now")
	fmt.Println("  install-hooks        Register the hook in Claude's settings.json")
	fmt.Println("  uninstall-hooks      Remove the hook from Claude's settings.json")
	fmt.Println("  version              Print the version")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Printf("  %-20s base directory (default ~/%s)\n", config.EnvHome, config.DirName)
	fmt.Printf("  %-20s write debug logs to <base>/%s\n", config.EnvDebug+"=1", logging.LogFileName)
	fmt.Printf("  %-20s plugin root holding %s\n", config.EnvPluginRoot, "bin/claude-tray")
	fmt.Printf("  %-20s force truecolor, 256, 16 or none\n", EnvColor)
}
