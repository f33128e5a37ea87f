package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func ttyInto(buf *bytes.Buffer) func() (io.WriteCloser, error) {
	return func() (io.WriteCloser, error) { return nopCloser{buf}, nil }
}

func TestCopyEmpty(t *testing.T) {
	_, err := (&Copier{}).Copy("")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCopyPrefersNative(t *testing.T) {
	var got string
	var tty bytes.Buffer
	c := &Copier{
		native:  func(s string) error { got = s; return nil },
		openTTY: ttyInto(&tty),
	}

	res, err := c.Copy("abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)
	assert.Equal(t, 6, res.ByteSize)
	assert.NotEqual(t, MethodOSC52, res.Method)
	assert.Zero(t, tty.Len(), "osc52 must not be written when native works")
}

func TestCopyFallsBackToOSC52(t *testing.T) {
	var tty bytes.Buffer
	c := &Copier{
		native:  func(string) error { return errors.New("no xclip") },
		openTTY: ttyInto(&tty),
	}

	res, err := c.Copy("abc123")
	require.NoError(t, err)
	assert.Equal(t, MethodOSC52, res.Method)
	assert.Contains(t, tty.String(), base64.StdEncoding.EncodeToString([]byte("abc123")))
}

func TestCopyNoNativeTool(t *testing.T) {
	var tty bytes.Buffer
	c := &Copier{openTTY: ttyInto(&tty)}

	res, err := c.Copy("x")
	require.NoError(t, err)
	assert.Equal(t, MethodOSC52, res.Method)
}

func TestCopyAllMethodsFail(t *testing.T) {
	c := &Copier{
		native:  func(string) error { return errors.New("no xclip") },
		openTTY: func() (io.WriteCloser, error) { return nil, errors.New("no tty") },
	}

	_, err := c.Copy("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no xclip")
	assert.Contains(t, err.Error(), "no tty")
}

func TestSequence(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("hello"))

	plain := sequence("hello", false)
	assert.True(t, strings.HasPrefix(plain, "\x1b]52;c;"), "%q", plain)
	assert.Contains(t, plain, encoded)

	wrapped := sequence("hello", true)
	assert.True(t, strings.HasPrefix(wrapped, "\x1bPtmux;"), "%q", wrapped)
	assert.Contains(t, wrapped, encoded)
}
