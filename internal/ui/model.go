// Package ui is the terminal tray: a bubbletea program that shows the
// aggregate status and one line per live session, with a picker that
// focuses a session's terminal.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/asheshgoplani/claude-tray/internal/clipboard"
	"github.com/asheshgoplani/claude-tray/internal/logging"
	"github.com/asheshgoplani/claude-tray/internal/session"
	"github.com/asheshgoplani/claude-tray/internal/tray"
)

var uiLog = logging.ForComponent(logging.CompUI)

// focusTimeout bounds one focus attempt (xdotool, osascript).
const focusTimeout = 3 * time.Second

type (
	tickMsg      time.Time
	wakeMsg      struct{}
	focusDoneMsg struct {
		session string
		err     error
	}
	copyDoneMsg struct {
		session string
		method  string
		err     error
	}
)

// Copier puts text on the clipboard. *clipboard.Copier implements it.
type Copier interface {
	Copy(text string) (*clipboard.CopyResult, error)
}

// Options configures the tray UI.
type Options struct {
	// Theme is "dark", "light" or "system".
	Theme string

	// SystemTheme resolves "system" at startup.
	SystemTheme func() string

	// Wake delivers store change notifications; nil polls only.
	Wake <-chan struct{}

	// SyncOptions are passed to the underlying tray.Sync.
	SyncOptions []tray.Option

	// Clipboard copies the selected session id; nil uses the system clipboard.
	Clipboard Copier
}

// Model is the tray program. It is also the tray.Renderer of its own Sync,
// so every tick and every render happens on the bubbletea event loop.
type Model struct {
	ctx   context.Context
	sync  *tray.Sync
	wake  <-chan struct{}
	theme *ThemeWatcher
	clip  Copier

	aggregate session.Status
	rows      []tray.Row

	picker    bool
	cursor    int
	filtering bool
	filter    textinput.Model

	keys  keyMap
	help  help.Model
	width int
	flash string
}

var _ tray.Renderer = (*Model)(nil)

// New builds the tray UI reading src.
func New(ctx context.Context, src tray.Source, opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter sessions"
	ti.CharLimit = 64

	m := &Model{
		ctx:       ctx,
		wake:      opts.Wake,
		clip:      opts.Clipboard,
		aggregate: session.StatusIdle,
		filter:    ti,
		keys:      defaultKeyMap(),
		help:      help.New(),
		width:     80,
	}
	m.sync = tray.NewSync(src, m, opts.SyncOptions...)
	m.rows = make([]tray.Row, m.sync.Capacity())
	if m.clip == nil {
		m.clip = clipboard.New()
	}

	switch opts.Theme {
	case "system":
		if opts.SystemTheme != nil {
			InitTheme(opts.SystemTheme())
		}
		m.theme = NewThemeWatcher(ctx)
	default:
		InitTheme(opts.Theme)
	}
	return m
}

// RenderAggregate implements tray.Renderer.
func (m *Model) RenderAggregate(status session.Status) {
	m.aggregate = status
}

// RenderRow implements tray.Renderer.
func (m *Model) RenderRow(slot int, row tray.Row) {
	if slot >= 0 && slot < len(m.rows) {
		m.rows[slot] = row
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickNow, m.waitForWake()}
	if m.theme != nil {
		cmds = append(cmds, m.theme.Next())
	}
	return tea.Batch(cmds...)
}

func tickNow() tea.Msg { return tickMsg(time.Now()) }

func (m *Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.sync.Interval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitForWake() tea.Cmd {
	if m.wake == nil {
		return nil
	}
	wake := m.wake
	return func() tea.Msg {
		if _, ok := <-wake; !ok {
			return nil
		}
		return wakeMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.sync.Tick(time.Time(msg))
		return m, m.scheduleTick()

	case wakeMsg:
		m.sync.Tick(time.Now())
		return m, m.waitForWake()

	case themeMsg:
		InitTheme(string(msg))
		uiLog.Debug("ui_theme_changed", slog.String("theme", string(msg)))
		return m, m.theme.Next()

	case focusDoneMsg:
		if msg.err != nil {
			m.flash = msg.err.Error()
		} else {
			m.flash = ""
		}
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			m.flash = "copy failed: " + msg.err.Error()
			uiLog.Debug("ui_copy_failed", slog.String("error", msg.err.Error()))
		} else {
			m.flash = "copied " + session.ShortID(msg.session)
			uiLog.Debug("ui_copy", slog.String("session", msg.session), slog.String("method", msg.method))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if !m.picker {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Open):
			m.openPicker()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.filtering || m.filter.Value() != "" {
			m.stopFiltering()
			return m, nil
		}
		m.closePicker()
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		return m, m.activateSelected()
	case msg.Type == tea.KeyUp || msg.Type == tea.KeyDown:
		m.move(msg.Type == tea.KeyDown)
		return m, nil
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.cursor = 0
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Down):
		m.move(true)
	case key.Matches(msg, m.keys.Up):
		m.move(false)
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Copy):
		return m, m.copySelected()
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.theme != nil {
		m.theme.Close()
	}
	return m, tea.Quit
}

func (m *Model) openPicker() {
	m.picker = true
	m.cursor = 0
	m.flash = ""
	m.sync.SetMenuOpen(true)
}

func (m *Model) closePicker() {
	m.picker = false
	m.stopFiltering()
	m.sync.SetMenuOpen(false)
}

func (m *Model) stopFiltering() {
	m.filtering = false
	m.filter.Reset()
	m.filter.Blur()
	m.cursor = 0
}

func (m *Model) move(down bool) {
	n := len(m.entries())
	if n == 0 {
		return
	}
	if down {
		m.cursor = (m.cursor + 1) % n
	} else {
		m.cursor = (m.cursor - 1 + n) % n
	}
}

// entries returns the slot indices shown in the picker, best match first
// when a filter is set.
func (m *Model) entries() []int {
	var slots []int
	var labels []string
	for i, row := range m.rows {
		if row.Visible {
			slots = append(slots, i)
			labels = append(labels, row.Label)
		}
	}
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		return slots
	}
	matches := fuzzy.Find(query, labels)
	out := make([]int, 0, len(matches))
	for _, match := range matches {
		out = append(out, slots[match.Index])
	}
	return out
}

// activateSelected closes the picker and focuses the chosen session's
// terminal off the event loop.
func (m *Model) activateSelected() tea.Cmd {
	entries := m.entries()
	if m.cursor >= len(entries) {
		m.closePicker()
		return nil
	}
	// Closing applies deferred rows, so take the row the user saw first.
	row := m.rows[entries[m.cursor]]
	m.closePicker()

	s := m.sync
	ctx := m.ctx
	return func() tea.Msg {
		fctx, cancel := context.WithTimeout(ctx, focusTimeout)
		defer cancel()
		return focusDoneMsg{session: row.SessionID, err: s.Focus(fctx, row)}
	}
}

// copySelected copies the highlighted session id. The picker stays open.
func (m *Model) copySelected() tea.Cmd {
	entries := m.entries()
	if m.cursor >= len(entries) {
		return nil
	}
	id := m.rows[entries[m.cursor]].SessionID
	clip := m.clip
	return func() tea.Msg {
		res, err := clip.Copy(id)
		if err != nil {
			return copyDoneMsg{session: id, err: err}
		}
		return copyDoneMsg{session: id, method: res.Method}
	}
}

func (m *Model) View() string {
	var b strings.Builder

	agg := StatusStyle(m.aggregate).Render(StatusIndicator(m.aggregate) + " " + string(m.aggregate))
	b.WriteString(HeaderStyle.Render("claude-tray") + "  " + agg + "\n")

	if m.picker {
		m.viewPicker(&b)
	} else {
		m.viewRows(&b)
	}

	if m.flash != "" {
		b.WriteString(ErrorStyle.Render(m.flash) + "\n")
	}

	var km help.KeyMap = collapsedKeys{m.keys}
	if m.picker {
		km = pickerKeys{m.keys}
	}
	b.WriteString(m.help.View(km))
	return b.String()
}

func (m *Model) viewRows(b *strings.Builder) {
	shown := 0
	for _, row := range m.rows {
		if !row.Visible {
			continue
		}
		shown++
		b.WriteString("  " + m.renderRow(row, false) + "\n")
	}
	if shown == 0 {
		b.WriteString(DimStyle.Render("  no active sessions") + "\n")
	}
}

func (m *Model) viewPicker(b *strings.Builder) {
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(FilterStyle.Render(m.filter.View()) + "\n")
	}
	entries := m.entries()
	if len(entries) == 0 {
		b.WriteString(DimStyle.Render("  no matching sessions") + "\n")
		return
	}
	for i, slot := range entries {
		selected := i == m.cursor
		prefix := "  "
		if selected {
			prefix = "▸ "
		}
		b.WriteString(prefix + m.renderRow(m.rows[slot], selected) + "\n")
	}
}

func (m *Model) renderRow(row tray.Row, selected bool) string {
	indicator := StatusStyle(row.Status).Render(StatusIndicator(row.Status))
	label := truncateLabel(row.Label, m.width-6)
	if selected {
		return indicator + " " + SelectedStyle.Render(label)
	}
	return indicator + " " + RowStyle.Render(label)
}

// truncateLabel cuts label to width terminal cells.
func truncateLabel(label string, width int) string {
	if width <= 0 || runewidth.StringWidth(label) <= width {
		return label
	}
	return runewidth.Truncate(label, width, "…")
}

// Run drives m until the user quits or ctx is cancelled.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	if m.theme != nil {
		m.theme.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
