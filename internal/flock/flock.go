// Package flock wraps flock(2) advisory locks on a dedicated lock file.
//
// Locks belong to the open file description, so two Lock values in the same
// process exclude each other just like two processes do, and the kernel drops
// the lock when the holder exits or crashes.
package flock

import "os"

// Lock is an advisory lock on the file at Path. A Lock is not safe for
// concurrent use; give each goroutine its own or guard it with a mutex.
type Lock struct {
	path string
	file *os.File
}

// New returns an unlocked Lock for path. The file is created on first use.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Held reports whether this Lock currently holds the file.
func (l *Lock) Held() bool {
	return l.file != nil
}
