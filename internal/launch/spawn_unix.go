//go:build unix

package launch

import (
	"fmt"
	"os/exec"
	"syscall"
)

// spawnDetached starts path in a new session so closing the agent's terminal
// does not take the tray down with it.
func spawnDetached(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start tray: %w", err)
	}
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("failed to release tray process: %w", err)
	}
	return nil
}
