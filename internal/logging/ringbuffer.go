package logging

import (
	"os"
	"sync"
)

// RingBuffer is a fixed-size in-memory tail of the log stream. The tray
// dumps it next to debug.log when it crashes.
type RingBuffer struct {
	mu   sync.Mutex
	buf  []byte
	pos  int
	full bool
}

// NewRingBuffer creates a ring buffer holding the last size bytes written.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 1024 * 1024
	}
	return &RingBuffer{buf: make([]byte, size)}
}

// Write implements io.Writer. Old data is overwritten once the buffer is full.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	size := len(rb.buf)
	if n >= size {
		copy(rb.buf, p[n-size:])
		rb.pos = 0
		rb.full = true
		return n, nil
	}

	written := copy(rb.buf[rb.pos:], p)
	if written < n {
		copy(rb.buf, p[written:])
		rb.full = true
	}
	rb.pos = (rb.pos + n) % size
	if rb.pos == 0 {
		rb.full = true
	}
	return n, nil
}

// Len reports how many bytes are currently retained.
func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.full {
		return len(rb.buf)
	}
	return rb.pos
}

// Bytes returns the retained bytes, oldest first.
func (rb *RingBuffer) Bytes() []byte {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if !rb.full {
		return append([]byte(nil), rb.buf[:rb.pos]...)
	}
	out := make([]byte, 0, len(rb.buf))
	out = append(out, rb.buf[rb.pos:]...)
	return append(out, rb.buf[:rb.pos]...)
}

// DumpToFile writes the retained bytes to path.
func (rb *RingBuffer) DumpToFile(path string) error {
	return os.WriteFile(path, rb.Bytes(), 0o644)
}
