package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/asheshgoplani/claude-tray/internal/hooks"
	"github.com/asheshgoplani/claude-tray/internal/launch"
	"github.com/asheshgoplani/claude-tray/internal/logging"
)

// handleHooks implements install-hooks and uninstall-hooks.
func handleHooks(args []string, install bool) int {
	name := "uninstall-hooks"
	if install {
		name = "install-hooks"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configDir := fs.String("config-dir", "", "Claude config directory (default $"+hooks.EnvConfigDir+" or ~/.claude)")
	command := fs.String("command", "", "hook command to register (default: this binary)")
	if err := parseNoArgs(fs, args); err != nil {
		return 2
	}

	env, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer env.initLogging(logging.CompConfig)()

	dir := *configDir
	if dir == "" {
		if dir, err = hooks.ConfigDir(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if !install {
		removed, err := hooks.Remove(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if removed {
			fmt.Printf("Removed claude-tray hooks from %s/settings.json\n", dir)
		} else {
			fmt.Println("No claude-tray hooks found.")
		}
		return 0
	}

	cmd := *command
	if cmd == "" {
		cmd = hooks.Command(launch.BinaryPath(""))
	}
	installed, err := hooks.Install(dir, cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if installed {
		fmt.Printf("Installed claude-tray hooks in %s/settings.json (%s)\n", dir, cmd)
	} else {
		fmt.Println("claude-tray hooks are already installed.")
	}
	return 0
}
