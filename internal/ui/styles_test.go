package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asheshgoplani/claude-tray/internal/session"
)

func TestStatusIndicatorsDistinct(t *testing.T) {
	seen := map[string]session.Status{}
	for _, s := range []session.Status{
		session.StatusWorking, session.StatusWaiting, session.StatusActive,
		session.StatusIdle, session.StatusUnknown,
	} {
		glyph := StatusIndicator(s)
		assert.NotEmpty(t, glyph)
		if prev, dup := seen[glyph]; dup {
			t.Errorf("%s and %s share indicator %q", prev, s, glyph)
		}
		seen[glyph] = s
	}
}

func TestInitThemeSwitches(t *testing.T) {
	t.Cleanup(func() { InitTheme("dark") })

	InitTheme("light")
	assert.Equal(t, ThemeLight, CurrentTheme())

	InitTheme("bogus")
	assert.Equal(t, ThemeDark, CurrentTheme())
}

func TestStatusStyleFallsBack(t *testing.T) {
	assert.Equal(t,
		StatusStyle(session.StatusUnknown).GetForeground(),
		StatusStyle(session.Status("nonsense")).GetForeground(),
	)
}
