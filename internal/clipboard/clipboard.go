// Package clipboard copies short strings (session ids) to the system
// clipboard, falling back to an OSC 52 escape when no native tool exists.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"

	"github.com/asheshgoplani/claude-tray/internal/platform"
)

// ErrEmpty is returned when there is nothing to copy.
var ErrEmpty = errors.New("no content to copy")

// Method names reported in CopyResult.
const (
	MethodNative = "native"
	MethodClip   = "clip.exe"
	MethodOSC52  = "osc52"
)

// CopyResult describes a successful copy.
type CopyResult struct {
	Method   string
	ByteSize int
}

// Copier copies text using the first method that works.
type Copier struct {
	native  func(string) error
	openTTY func() (io.WriteCloser, error)
	inTmux  bool
}

// New returns a Copier for the current platform.
func New() *Copier {
	c := &Copier{
		native:  clipboard.WriteAll,
		openTTY: openTTY,
		inTmux:  os.Getenv("TMUX") != "",
	}
	if platform.IsWSL() {
		c.native = clipExe
	}
	if clipboard.Unsupported && !platform.IsWSL() {
		c.native = nil
	}
	return c
}

// Copy copies text to the system clipboard using the default Copier.
func Copy(text string) (*CopyResult, error) {
	return New().Copy(text)
}

// Copy tries the native clipboard and then OSC 52 on the controlling tty.
func (c *Copier) Copy(text string) (*CopyResult, error) {
	if text == "" {
		return nil, ErrEmpty
	}

	var nativeErr error
	if c.native != nil {
		if nativeErr = c.native(text); nativeErr == nil {
			method := MethodNative
			if platform.IsWSL() {
				method = MethodClip
			}
			return &CopyResult{Method: method, ByteSize: len(text)}, nil
		}
	}

	if err := c.writeOSC52(text); err != nil {
		return nil, errors.Join(nativeErr, fmt.Errorf("osc52: %w", err))
	}
	return &CopyResult{Method: MethodOSC52, ByteSize: len(text)}, nil
}

func (c *Copier) writeOSC52(text string) error {
	if c.openTTY == nil {
		return errors.New("no terminal")
	}
	tty, err := c.openTTY()
	if err != nil {
		return err
	}
	defer tty.Close()
	_, err = io.WriteString(tty, sequence(text, c.inTmux))
	return err
}

// sequence builds the OSC 52 escape for text, wrapped in a DCS passthrough
// inside tmux.
func sequence(text string, inTmux bool) string {
	seq := osc52.New(text)
	if inTmux {
		seq = seq.Tmux()
	}
	return seq.String()
}

// openTTY writes to /dev/tty so redirected stdout does not swallow the escape.
func openTTY() (io.WriteCloser, error) {
	return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
}

func clipExe(text string) error {
	cmd := exec.Command("clip.exe")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
