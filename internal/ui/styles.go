package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/asheshgoplani/claude-tray/internal/session"
)

// Theme is the active color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type palette struct {
	Border, Text, TextDim          lipgloss.Color
	Accent, Cyan, Green, Yellow    lipgloss.Color
	Orange, Red, Comment, Selected lipgloss.Color
}

// Tokyo Night
var darkPalette = palette{
	Border:   lipgloss.Color("#414868"),
	Text:     lipgloss.Color("#c0caf5"),
	TextDim:  lipgloss.Color("#787fa0"),
	Accent:   lipgloss.Color("#7aa2f7"),
	Cyan:     lipgloss.Color("#7dcfff"),
	Green:    lipgloss.Color("#9ece6a"),
	Yellow:   lipgloss.Color("#e0af68"),
	Orange:   lipgloss.Color("#ff9e64"),
	Red:      lipgloss.Color("#f7768e"),
	Comment:  lipgloss.Color("#565f89"),
	Selected: lipgloss.Color("#283457"),
}

// Tokyo Night Light
var lightPalette = palette{
	Border:   lipgloss.Color("#9699a3"),
	Text:     lipgloss.Color("#343b58"),
	TextDim:  lipgloss.Color("#6a6d7c"),
	Accent:   lipgloss.Color("#34548a"),
	Cyan:     lipgloss.Color("#166775"),
	Green:    lipgloss.Color("#485e30"),
	Yellow:   lipgloss.Color("#8f5e15"),
	Orange:   lipgloss.Color("#965027"),
	Red:      lipgloss.Color("#8c4351"),
	Comment:  lipgloss.Color("#9699a3"),
	Selected: lipgloss.Color("#c4c8da"),
}

var (
	// themeMu guards the styles below during live theme switches.
	themeMu      sync.RWMutex
	currentTheme = ThemeDark
	colors       palette

	HeaderStyle   lipgloss.Style
	RowStyle      lipgloss.Style
	SelectedStyle lipgloss.Style
	DimStyle      lipgloss.Style
	ErrorStyle    lipgloss.Style
	FilterStyle   lipgloss.Style

	statusStyles map[session.Status]lipgloss.Style
)

func init() {
	InitTheme(string(ThemeDark))
}

// InitTheme switches the palette. Anything but "light" selects dark.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()

	if theme == string(ThemeLight) {
		currentTheme = ThemeLight
		colors = lightPalette
	} else {
		currentTheme = ThemeDark
		colors = darkPalette
	}

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colors.Accent)
	RowStyle = lipgloss.NewStyle().Foreground(colors.Text)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colors.Accent).Background(colors.Selected)
	DimStyle = lipgloss.NewStyle().Foreground(colors.TextDim)
	ErrorStyle = lipgloss.NewStyle().Foreground(colors.Red)
	FilterStyle = lipgloss.NewStyle().Foreground(colors.Cyan)

	statusStyles = map[session.Status]lipgloss.Style{
		session.StatusWorking: lipgloss.NewStyle().Foreground(colors.Green),
		session.StatusWaiting: lipgloss.NewStyle().Foreground(colors.Orange).Bold(true),
		session.StatusActive:  lipgloss.NewStyle().Foreground(colors.Cyan),
		session.StatusIdle:    lipgloss.NewStyle().Foreground(colors.TextDim),
		session.StatusUnknown: lipgloss.NewStyle().Foreground(colors.Comment),
	}
}

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// StatusIndicator is the glyph drawn before a status.
func StatusIndicator(status session.Status) string {
	switch status {
	case session.StatusWorking:
		return "●"
	case session.StatusWaiting:
		return "◐"
	case session.StatusActive:
		return "○"
	case session.StatusIdle:
		return "◌"
	default:
		return "?"
	}
}

// StatusStyle returns the color for status.
func StatusStyle(status session.Status) lipgloss.Style {
	themeMu.RLock()
	defer themeMu.RUnlock()
	if st, ok := statusStyles[status]; ok {
		return st
	}
	return statusStyles[session.StatusUnknown]
}
