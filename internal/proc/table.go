// Package proc walks the process tree to find the terminal emulator hosting
// the current agent session.
package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/asheshgoplani/claude-tray/internal/platform"
)

// ErrNotFound is returned when a pid has no readable process entry.
var ErrNotFound = errors.New("process not found")

// Process is the subset of a process table entry the locator needs.
type Process struct {
	PID  int
	PPID int
	Name string
}

// ProcessTable looks up one process by pid.
type ProcessTable interface {
	Lookup(pid int) (Process, error)
}

// NewTable returns the process table for the current platform: /proc where
// it exists, ps(1) everywhere else.
func NewTable() ProcessTable {
	if platform.SupportsProcFS() {
		return ProcFS{Root: "/proc"}
	}
	return PSTable{}
}

// ProcFS reads /proc/<pid>/stat.
type ProcFS struct {
	Root string
}

func (p ProcFS) Lookup(pid int) (Process, error) {
	root := p.Root
	if root == "" {
		root = "/proc"
	}
	data, err := os.ReadFile(filepath.Join(root, strconv.Itoa(pid), "stat"))
	if err != nil {
		if os.IsNotExist(err) {
			return Process{}, fmt.Errorf("pid %d: %w", pid, ErrNotFound)
		}
		return Process{}, fmt.Errorf("read stat for pid %d: %w", pid, err)
	}
	name, ppid, err := parseStat(string(data))
	if err != nil {
		return Process{}, fmt.Errorf("pid %d: %w", pid, err)
	}
	return Process{PID: pid, PPID: ppid, Name: name}, nil
}

// parseStat extracts comm and ppid from a /proc/<pid>/stat line. comm sits
// between the first '(' and the last ')' and may itself contain spaces and
// parentheses; state and ppid follow the closing one.
func parseStat(stat string) (name string, ppid int, err error) {
	open := strings.IndexByte(stat, '(')
	end := strings.LastIndexByte(stat, ')')
	if open < 0 || end < open {
		return "", 0, fmt.Errorf("malformed stat %q", stat)
	}
	name = stat[open+1 : end]

	fields := strings.Fields(stat[end+1:])
	if len(fields) < 2 {
		return "", 0, fmt.Errorf("malformed stat %q", stat)
	}
	ppid, err = strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, fmt.Errorf("bad ppid in stat: %w", err)
	}
	return name, ppid, nil
}

// PSTable shells out to ps(1).
type PSTable struct {
	// run is overridden in tests.
	run func(pid int) ([]byte, error)
}

func (p PSTable) Lookup(pid int) (Process, error) {
	run := p.run
	if run == nil {
		run = runPS
	}
	out, err := run(pid)
	if err != nil {
		// ps exits 1 for an unknown pid.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Process{}, fmt.Errorf("pid %d: %w", pid, ErrNotFound)
		}
		return Process{}, fmt.Errorf("ps for pid %d: %w", pid, err)
	}
	ppid, name, err := parsePS(string(out))
	if err != nil {
		return Process{}, fmt.Errorf("pid %d: %w", pid, err)
	}
	return Process{PID: pid, PPID: ppid, Name: name}, nil
}

func runPS(pid int) ([]byte, error) {
	return exec.Command("ps", "-o", "ppid=,comm=", "-p", strconv.Itoa(pid)).Output()
}

// parsePS reads "<ppid> <command>" where command may be a full path with spaces.
func parsePS(out string) (ppid int, name string, err error) {
	line := strings.TrimSpace(out)
	if line == "" {
		return 0, "", ErrNotFound
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	head, rest, _ := strings.Cut(line, " ")
	ppid, err = strconv.Atoi(head)
	if err != nil {
		return 0, "", fmt.Errorf("bad ps output %q: %w", out, err)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return 0, "", fmt.Errorf("bad ps output %q", out)
	}
	return ppid, filepath.Base(rest), nil
}
