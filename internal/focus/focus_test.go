package focus

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// scripted returns canned output keyed by "name arg0".
type scripted struct {
	calls   []call
	outputs map[string]string
	fail    map[string]bool
}

func (s *scripted) run(_ context.Context, name string, args ...string) ([]byte, error) {
	s.calls = append(s.calls, call{name, args})
	key := name
	if len(args) > 0 {
		key += " " + args[0]
	}
	if s.fail[key] {
		return nil, errors.New(key + " failed")
	}
	return []byte(s.outputs[key]), nil
}

func lookAll(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestZeroPIDIsNoop(t *testing.T) {
	s := &scripted{}
	ctx := context.Background()

	assert.NoError(t, (&X11{run: s.run, lookPath: lookAll("xdotool")}).Focus(ctx, 0))
	assert.NoError(t, (&MacOS{run: s.run}).Focus(ctx, 0))
	assert.NoError(t, Noop{}.Focus(ctx, 0))
	assert.Empty(t, s.calls)
}

func TestNoopUnsupported(t *testing.T) {
	assert.ErrorIs(t, Noop{}.Focus(context.Background(), 42), ErrUnsupported)
}

func TestX11Xdotool(t *testing.T) {
	s := &scripted{outputs: map[string]string{"xdotool search": "62914563\n62914570\n"}}
	x := &X11{run: s.run, lookPath: lookAll("xdotool", "wmctrl")}

	require.NoError(t, x.Focus(context.Background(), 4242))
	require.Len(t, s.calls, 2)
	assert.Equal(t, []string{"search", "--pid", "4242"}, s.calls[0].args)
	assert.Equal(t, []string{"windowactivate", "62914563"}, s.calls[1].args)
}

func TestX11FallsBackToWmctrl(t *testing.T) {
	s := &scripted{
		fail: map[string]bool{"xdotool search": true},
		outputs: map[string]string{
			"wmctrl -lp": "0x01000007  0 1111   host Firefox\n0x03a00003  0 4242   host Terminal\n",
		},
	}
	x := &X11{run: s.run, lookPath: lookAll("xdotool", "wmctrl")}

	require.NoError(t, x.Focus(context.Background(), 4242))
	last := s.calls[len(s.calls)-1]
	assert.Equal(t, "wmctrl", last.name)
	assert.Equal(t, []string{"-ia", "0x03a00003"}, last.args)
}

func TestX11NoTools(t *testing.T) {
	x := &X11{run: (&scripted{}).run, lookPath: lookAll()}
	assert.ErrorIs(t, x.Focus(context.Background(), 1), ErrUnsupported)
}

func TestX11NoWindow(t *testing.T) {
	s := &scripted{outputs: map[string]string{"wmctrl -lp": "0x01000007  0 1111   host Firefox\n"}}
	x := &X11{run: s.run, lookPath: lookAll("wmctrl")}

	err := x.Focus(context.Background(), 4242)
	assert.ErrorIs(t, err, ErrNoWindow)
}

func TestMacOSScript(t *testing.T) {
	s := &scripted{}
	m := &MacOS{run: s.run}

	require.NoError(t, m.Focus(context.Background(), 512))
	require.Len(t, s.calls, 1)
	assert.Equal(t, "osascript", s.calls[0].name)
	assert.True(t, strings.Contains(s.calls[0].args[1], "unix id is 512"))
}

func TestWindowForPID(t *testing.T) {
	listing := "0x01 0 10 host a\n\n0x02 -1 20 host b c\nshort line\n"
	assert.Equal(t, "0x02", windowForPID(listing, 20))
	assert.Empty(t, windowForPID(listing, 30))
}
