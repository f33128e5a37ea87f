//go:build unix

package flock

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock acquires an exclusive lock, blocking until it is available.
func (l *Lock) Lock() error {
	return l.acquire(unix.LOCK_EX)
}

// RLock acquires a shared lock, blocking while a writer holds the file.
func (l *Lock) RLock() error {
	return l.acquire(unix.LOCK_SH)
}

// TryLock attempts an exclusive lock without blocking. It returns false,
// nil when another holder has the file.
func (l *Lock) TryLock() (bool, error) {
	err := l.acquire(unix.LOCK_EX | unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *Lock) acquire(how int) error {
	if l.file != nil {
		return fmt.Errorf("flock %s: already held", l.path)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	for {
		err = unix.Flock(int(f.Fd()), how)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("flock %s: %w", l.path, err)
	}
	l.file = f
	return nil
}

// Unlock releases the lock and closes the lock file. Unlocking a Lock that
// is not held is a no-op.
func (l *Lock) Unlock() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		_ = f.Close()
		return fmt.Errorf("funlock %s: %w", l.path, err)
	}
	return f.Close()
}
