//go:build !unix

package flock

import "errors"

// ErrUnsupported is returned on platforms without flock(2).
var ErrUnsupported = errors.New("flock: not supported on this platform")

func (l *Lock) Lock() error { return ErrUnsupported }

func (l *Lock) RLock() error { return ErrUnsupported }

func (l *Lock) TryLock() (bool, error) { return false, ErrUnsupported }

func (l *Lock) Unlock() error { return nil }
