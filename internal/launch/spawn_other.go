//go:build !unix

package launch

import (
	"fmt"
	"os/exec"
)

func spawnDetached(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start tray: %w", err)
	}
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("failed to release tray process: %w", err)
	}
	return nil
}
