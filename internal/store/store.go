// Package store is the shared status file: one JSON object mapping session
// id to record, rewritten whole by every transaction.
//
// All access goes through a flock on a sibling ".lock" file. The lock lives
// beside the data file rather than on it because writes replace the data
// file by rename, which would orphan a lock held on the old inode.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/asheshgoplani/claude-tray/internal/flock"
	"github.com/asheshgoplani/claude-tray/internal/logging"
	"github.com/asheshgoplani/claude-tray/internal/session"
)

var storeLog = logging.ForComponent(logging.CompStore)

// FileName is the default store file name inside the tray directory.
const FileName = "sessions.json"

// Store is the shared session status file.
type Store struct {
	path string

	// mu serializes goroutines sharing this Store; flock serializes processes.
	mu sync.Mutex
}

// New returns a Store backed by path. Nothing is touched until the first
// Read or Commit.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// LockPath returns the path of the lock file guarding the data file.
func (s *Store) LockPath() string {
	return s.path + ".lock"
}

// Commit runs fn on the current contents and persists the result. The file
// is read fresh under the exclusive lock, so fn always sees the latest
// committed state, and the lock is held until the new content is in place.
// Missing or corrupt content reaches fn as an empty store.
func (s *Store) Commit(fn func(session.Sessions) session.Sessions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	lock := flock.New(s.LockPath())
	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	current, err := s.load()
	if err != nil {
		return err
	}

	data, err := Encode(fn(current))
	if err != nil {
		return err
	}
	return s.replace(data)
}

// Read returns the current contents under a shared lock. Corrupt or
// missing content is an empty store; only lock or read failures are errors.
func (s *Store) Read() (session.Sessions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, fs.ErrNotExist) {
		return session.Sessions{}, nil
	}

	lock := flock.New(s.LockPath())
	if err := lock.RLock(); err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	return s.load()
}

// load reads and decodes the data file. The caller holds the lock.
func (s *Store) load() (session.Sessions, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return session.Sessions{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	sessions, err := Decode(data)
	if err != nil {
		storeLog.Warn("store_corrupt_reset",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		logging.Aggregate(logging.CompStore, "store_corrupt_reset")
	}
	return sessions, nil
}

// replace writes data to a temp file, syncs it and renames it over the
// data file, so lock-free readers see either the old or the new content.
func (s *Store) replace(data []byte) error {
	tmpPath := s.path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp store: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}
