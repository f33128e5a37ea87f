package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Committer.
type memStore struct {
	data    Sessions
	commits int
	err     error
}

func (m *memStore) Commit(fn func(Sessions) Sessions) error {
	if m.err != nil {
		return m.err
	}
	m.commits++
	m.data = fn(m.data.Clone())
	return nil
}

type fakeLocator struct {
	pid   int
	ok    bool
	calls int
}

func (f *fakeLocator) Locate() (int, bool) {
	f.calls++
	return f.pid, f.ok
}

type fakeLauncher struct {
	running  bool
	launches int
	err      error
}

func (f *fakeLauncher) Running() bool { return f.running }

func (f *fakeLauncher) Launch() error {
	f.launches++
	return f.err
}

// stepClock returns a clock advancing one second per call.
func stepClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestWriterCreatesRecordOnStart(t *testing.T) {
	st := &memStore{}
	loc := &fakeLocator{pid: 777, ok: true}
	w := NewWriter(st, WithLocator(loc), WithClock(func() time.Time { return epoch }))

	w.Handle(Event{Kind: KindSessionStart, SessionID: "abc123", WorkingDirectory: "/src/tray"})

	require.Contains(t, st.data, "abc123")
	rec := st.data["abc123"]
	assert.Equal(t, StatusActive, rec.Status)
	assert.Equal(t, "SessionStart", rec.Event)
	assert.Empty(t, rec.Title)
	assert.Equal(t, 777, rec.TerminalPID)
	assert.Equal(t, "/src/tray", rec.WorkingDirectory)
	assert.True(t, epoch.Equal(rec.UpdatedAt))
}

func TestWriterLocatorOnlyOnStart(t *testing.T) {
	st := &memStore{}
	loc := &fakeLocator{pid: 777, ok: true}
	w := NewWriter(st, WithLocator(loc))

	w.Handle(Event{Kind: KindUserPromptSubmit, SessionID: "s", Prompt: "hi"})
	w.Handle(Event{Kind: KindPreToolUse, SessionID: "s", ToolName: "Bash"})

	assert.Zero(t, loc.calls)
	assert.Zero(t, st.data["s"].TerminalPID)
}

func TestWriterTitleIsWriteOnce(t *testing.T) {
	st := &memStore{}
	w := NewWriter(st, WithTitleLimit(5), WithClock(stepClock(epoch)))

	w.Handle(Event{Kind: KindSessionStart, SessionID: "s"})
	assert.Empty(t, st.data["s"].Title)

	w.Handle(Event{Kind: KindUserPromptSubmit, SessionID: "s", Prompt: "hello world"})
	assert.Equal(t, "hello...", st.data["s"].Title)

	w.Handle(Event{Kind: KindUserPromptSubmit, SessionID: "s", Prompt: "second prompt"})
	w.Handle(Event{Kind: KindStop, SessionID: "s"})
	w.Handle(Event{Kind: "Unexpected", SessionID: "s", Prompt: "x"})
	assert.Equal(t, "hello...", st.data["s"].Title)
}

func TestWriterEmptyPromptLeavesTitleOpen(t *testing.T) {
	st := &memStore{}
	w := NewWriter(st)

	w.Handle(Event{Kind: KindUserPromptSubmit, SessionID: "s", Prompt: ""})
	assert.Empty(t, st.data["s"].Title)

	w.Handle(Event{Kind: KindUserPromptSubmit, SessionID: "s", Prompt: "real one"})
	assert.Equal(t, "real one", st.data["s"].Title)
}

func TestWriterTitleOnlyFromPromptKind(t *testing.T) {
	st := &memStore{}
	w := NewWriter(st)

	w.Handle(Event{Kind: KindPreToolUse, SessionID: "s", Prompt: "not a prompt"})
	assert.Empty(t, st.data["s"].Title)
}

func TestWriterFocusHandleIsWriteOnce(t *testing.T) {
	st := &memStore{}
	loc := &fakeLocator{pid: 100, ok: true}
	w := NewWriter(st, WithLocator(loc))

	w.Handle(Event{Kind: KindSessionStart, SessionID: "s"})
	assert.Equal(t, 100, st.data["s"].TerminalPID)

	// A resumed session starts again from a different terminal.
	loc.pid = 200
	w.Handle(Event{Kind: KindSessionStart, SessionID: "s"})
	assert.Equal(t, 100, st.data["s"].TerminalPID)

	loc.ok = false
	w.Handle(Event{Kind: KindSessionStart, SessionID: "s"})
	w.Handle(Event{Kind: KindStop, SessionID: "s"})
	assert.Equal(t, 100, st.data["s"].TerminalPID)
}

func TestWriterFocusHandleAbsent(t *testing.T) {
	st := &memStore{}
	w := NewWriter(st, WithLocator(&fakeLocator{ok: false}))

	w.Handle(Event{Kind: KindSessionStart, SessionID: "s"})
	assert.Zero(t, st.data["s"].TerminalPID)
}

func TestWriterToolAndDirFollowLatestEvent(t *testing.T) {
	st := &memStore{}
	w := NewWriter(st)

	w.Handle(Event{Kind: KindPreToolUse, SessionID: "s", ToolName: "Bash", WorkingDirectory: "/a"})
	assert.Equal(t, "Bash", st.data["s"].ToolName)
	assert.Equal(t, "/a", st.data["s"].WorkingDirectory)

	w.Handle(Event{Kind: KindStop, SessionID: "s", WorkingDirectory: "/b"})
	assert.Empty(t, st.data["s"].ToolName)
	assert.Equal(t, "/b", st.data["s"].WorkingDirectory)
}

func TestWriterRemovalIsIdempotent(t *testing.T) {
	st := &memStore{}
	w := NewWriter(st)

	w.Handle(Event{Kind: KindSessionStart, SessionID: "keep"})
	w.Handle(Event{Kind: KindSessionStart, SessionID: "gone"})

	w.Handle(Event{Kind: KindSessionEnd, SessionID: "gone"})
	once := st.data.Clone()
	w.Handle(Event{Kind: KindSessionEnd, SessionID: "gone"})

	assert.Equal(t, once, st.data)
	assert.NotContains(t, st.data, "gone")
	assert.Contains(t, st.data, "keep")
}

func TestWriterUnknownKindStillCommitted(t *testing.T) {
	st := &memStore{}
	w := NewWriter(st)

	w.Handle(Event{})
	require.Contains(t, st.data, UnknownSessionID)
	assert.Equal(t, StatusUnknown, st.data[UnknownSessionID].Status)
}

func TestWriterUpdatedAtNeverMovesBack(t *testing.T) {
	st := &memStore{}
	now := epoch
	w := NewWriter(st, WithClock(func() time.Time { return now }))

	w.Handle(Event{Kind: KindSessionStart, SessionID: "s"})
	now = epoch.Add(-time.Minute) // clock stepped backwards
	w.Handle(Event{Kind: KindStop, SessionID: "s"})

	assert.True(t, epoch.Equal(st.data["s"].UpdatedAt))
	assert.Equal(t, StatusWaiting, st.data["s"].Status)
}

func TestWriterPrunesStaleOnWrite(t *testing.T) {
	st := &memStore{data: Sessions{
		"dead":  {Status: StatusWorking, UpdatedAt: epoch.Add(-3 * time.Hour)},
		"other": {Status: StatusWaiting, UpdatedAt: epoch.Add(-time.Minute)},
	}}
	w := NewWriter(st, WithStalePruning(time.Hour), WithClock(func() time.Time { return epoch }))

	w.Handle(Event{Kind: KindStop, SessionID: "s"})

	assert.NotContains(t, st.data, "dead")
	assert.Contains(t, st.data, "other")
	assert.Contains(t, st.data, "s")
}

func TestWriterStaleSessionRestartsFresh(t *testing.T) {
	st := &memStore{data: Sessions{
		"s": {Status: StatusWorking, Title: "old title", TerminalPID: 9, UpdatedAt: epoch.Add(-3 * time.Hour)},
	}}
	w := NewWriter(st, WithStalePruning(time.Hour), WithClock(func() time.Time { return epoch }))

	w.Handle(Event{Kind: KindUserPromptSubmit, SessionID: "s", Prompt: "new"})

	assert.Equal(t, "new", st.data["s"].Title)
	assert.Zero(t, st.data["s"].TerminalPID)
}

func TestWriterWithoutPruningKeepsOldRecords(t *testing.T) {
	st := &memStore{data: Sessions{
		"dead": {UpdatedAt: epoch.Add(-300 * time.Hour)},
	}}
	w := NewWriter(st, WithClock(func() time.Time { return epoch }))

	w.Handle(Event{Kind: KindStop, SessionID: "s"})
	assert.Contains(t, st.data, "dead")
}

func TestWriterLaunchesTrayOnStart(t *testing.T) {
	st := &memStore{}
	l := &fakeLauncher{}
	w := NewWriter(st, WithLauncher(l))

	w.Handle(Event{Kind: KindPreToolUse, SessionID: "s"})
	assert.Zero(t, l.launches, "only SessionStart launches")

	w.Handle(Event{Kind: KindSessionStart, SessionID: "s"})
	assert.Equal(t, 1, l.launches)

	l.running = true
	w.Handle(Event{Kind: KindSessionStart, SessionID: "t"})
	assert.Equal(t, 1, l.launches)
}

func TestWriterLaunchFailureDoesNotBlockCommit(t *testing.T) {
	st := &memStore{}
	w := NewWriter(st, WithLauncher(&fakeLauncher{err: errors.New("no binary")}))

	w.Handle(Event{Kind: KindSessionStart, SessionID: "s"})
	assert.Contains(t, st.data, "s")
}

func TestWriterCommitErrorIsSwallowed(t *testing.T) {
	st := &memStore{err: errors.New("disk full")}
	w := NewWriter(st)

	assert.NotPanics(t, func() {
		w.Handle(Event{Kind: KindStop, SessionID: "s"})
	})
	assert.Zero(t, st.commits)
}
