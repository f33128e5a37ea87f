package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/asheshgoplani/claude-tray/internal/focus"
	"github.com/asheshgoplani/claude-tray/internal/logging"
	"github.com/asheshgoplani/claude-tray/internal/session"
	"github.com/asheshgoplani/claude-tray/internal/tray"
)

// focusTimeout bounds one focus attempt from the CLI.
const focusTimeout = 5 * time.Second

type statusEntry struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Event       string    `json:"event,omitempty"`
	Title       string    `json:"title,omitempty"`
	Cwd         string    `json:"cwd,omitempty"`
	Tool        string    `json:"tool_name,omitempty"`
	TerminalPID int       `json:"terminal_pid,omitempty"`
	UpdatedAt   time.Time `json:"timestamp"`
	Stale       bool      `json:"stale,omitempty"`
}

type statusReport struct {
	Aggregate string        `json:"aggregate"`
	Sessions  []statusEntry `json:"sessions"`
}

// handleStatus prints the current sessions once.
func handleStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	all := fs.Bool("all", false, "Include stale sessions")
	fs.Usage = func() {
		fmt.Println("Usage: claude-tray status [--json] [--all]")
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

	sessions, err := env.store().Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read sessions: %v\n", err)
		return 1
	}
	report := buildReport(sessions, time.Now(), env.cfg.Staleness.StaleCutoff(), *all)
	if err := printReport(os.Stdout, report, *jsonOutput, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// buildReport orders sessions by id. The aggregate counts live sessions only.
func buildReport(s session.Sessions, now time.Time, cutoff time.Duration, all bool) statusReport {
	alive, stale := session.Partition(s, now, cutoff)
	report := statusReport{
		Aggregate: string(session.Aggregate(alive)),
		Sessions:  []statusEntry{},
	}
	add := func(set session.Sessions, isStale bool) {
		for id, rec := range set {
			report.Sessions = append(report.Sessions, statusEntry{
				ID:          id,
				Status:      string(rec.Status),
				Event:       rec.Event,
				Title:       rec.Title,
				Cwd:         rec.WorkingDirectory,
				Tool:        rec.ToolName,
				TerminalPID: rec.TerminalPID,
				UpdatedAt:   rec.UpdatedAt,
				Stale:       isStale,
			})
		}
	}
	add(alive, false)
	if all {
		add(stale, true)
	}
	sort.Slice(report.Sessions, func(i, j int) bool {
		return report.Sessions[i].ID < report.Sessions[j].ID
	})
	return report
}

func printReport(w io.Writer, report statusReport, jsonOutput bool, now time.Time) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	noun := "sessions"
	if len(report.Sessions) == 1 {
		noun = "session"
	}
	fmt.Fprintf(w, "%s%s%d %s\n", report.Aggregate, tray.LabelSeparator, len(report.Sessions), noun)
	for _, e := range report.Sessions {
		rec := session.Record{
			Status:           session.Status(e.Status),
			Title:            e.Title,
			WorkingDirectory: e.Cwd,
			ToolName:         e.Tool,
		}
		line := "  " + tray.FormatLabel(e.ID, rec) + "  " + formatRelativeTime(e.UpdatedAt, now)
		if e.Stale {
			line += " (stale)"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// formatRelativeTime renders "just now", "2m ago", "1h ago", "3d ago".
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// handleFocus focuses the terminal recorded for a session.
func handleFocus(args []string) int {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Println("Usage: claude-tray focus <session-id>")
		fmt.Println()
		fmt.Println("The id may be any unique prefix, such as the 8-character short id.")
	}
	positional, err := parseFlags(fs, args)
	if err != nil {
		return 2
	}
	if len(positional) != 1 {
		fs.Usage()
		return 2
	}
	query := positional[0]

	env, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer env.initLogging(logging.CompFocus)()

	sessions, err := env.store().Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read sessions: %v\n", err)
		return 1
	}
	id, rec, err := focusTarget(sessions, query, time.Now(), env.cfg.Staleness.StaleCutoff())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	pid := rec.TerminalPID
	if pid == 0 {
		fmt.Fprintf(os.Stderr, "Error: no terminal recorded for session %s\n", session.ShortID(id))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), focusTimeout)
	defer cancel()
	if err := focus.New().Focus(ctx, pid); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// focusTarget resolves query among the sessions still alive at now.
func focusTarget(s session.Sessions, query string, now time.Time, cutoff time.Duration) (string, session.Record, error) {
	alive, _ := session.Partition(s, now, cutoff)
	id, err := findSession(alive, query)
	if err != nil {
		return "", session.Record{}, err
	}
	return id, alive[id], nil
}

// findSession resolves an exact id or a unique id prefix.
func findSession(s session.Sessions, query string) (string, error) {
	if _, ok := s[query]; ok {
		return query, nil
	}
	var matches []string
	for id := range s {
		if strings.HasPrefix(id, query) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("session %q not found", query)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("session %q is ambiguous: %s", query, strings.Join(matches, ", "))
	}
}

// handlePrune removes stale sessions immediately.
func handlePrune(args []string) int {
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	if err := parseNoArgs(fs, args); err != nil {
		return 2
	}

	env, err := loadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer env.initLogging(logging.CompStore)()

	cutoff := env.cfg.Staleness.StaleCutoff()
	if cutoff <= 0 {
		fmt.Println("Staleness is disabled (staleness.cutoff = 0); nothing to prune.")
		return 0
	}
	removed, err := pruneNow(env.store(), time.Now(), cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Pruned %d stale session(s).\n", removed)
	return 0
}

func pruneNow(c session.Committer, now time.Time, cutoff time.Duration) (int, error) {
	removed := 0
	prune := session.PruneStale(now, cutoff)
	err := c.Commit(func(s session.Sessions) session.Sessions {
		before := len(s)
		s = prune(s)
		removed = before - len(s)
		return s
	})
	return removed, err
}
