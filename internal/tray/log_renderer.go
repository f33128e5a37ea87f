package tray

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/asheshgoplani/claude-tray/internal/session"
)

// LogRenderer prints view changes as plain lines. It backs the headless tray
// when no terminal is attached.
type LogRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLogRenderer writes to out.
func NewLogRenderer(out io.Writer) *LogRenderer {
	return &LogRenderer{out: out}
}

func (r *LogRenderer) RenderAggregate(status session.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "status %s\n", status)
	trayLog.Info("tray_aggregate", slog.String("status", string(status)))
}

func (r *LogRenderer) RenderRow(slot int, row Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !row.Visible {
		fmt.Fprintf(r.out, "row %d -\n", slot)
		return
	}
	fmt.Fprintf(r.out, "row %d %s\n", slot, row.Label)
}
