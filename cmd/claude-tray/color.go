package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// EnvColor forces a color profile: truecolor, 256, 16 or none.
const EnvColor = "CLAUDE_TRAY_COLOR"

var colorOverrides = map[string]termenv.Profile{
	"truecolor": termenv.TrueColor,
	"24bit":     termenv.TrueColor,
	"256":       termenv.ANSI256,
	"ansi256":   termenv.ANSI256,
	"16":        termenv.ANSI,
	"ansi":      termenv.ANSI,
	"none":      termenv.Ascii,
	"off":       termenv.Ascii,
}

// Terminals that render 24-bit color but do not always export COLORTERM,
// matched as substrings of $TERM or by a marker variable.
var (
	truecolorTerms   = []string{"256color", "direct", "alacritty", "kitty", "wezterm", "ghostty"}
	truecolorMarkers = []string{"WT_SESSION", "ITERM_SESSION_ID", "KONSOLE_VERSION", "WEZTERM_PANE"}
)

// colorProfile picks the profile for the tray UI. Anything unrecognized
// gets 256 colors, which every terminal the tray targets supports.
func colorProfile(getenv func(string) string) termenv.Profile {
	if p, ok := colorOverrides[strings.ToLower(getenv(EnvColor))]; ok {
		return p
	}
	switch getenv("COLORTERM") {
	case "truecolor", "24bit":
		return termenv.TrueColor
	}
	term := getenv("TERM")
	for _, t := range truecolorTerms {
		if strings.Contains(term, t) {
			return termenv.TrueColor
		}
	}
	for _, v := range truecolorMarkers {
		if getenv(v) != "" {
			return termenv.TrueColor
		}
	}
	return termenv.ANSI256
}

func initColorProfile() {
	lipgloss.SetColorProfile(colorProfile(os.Getenv))
}
