package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open   key.Binding
	Up     key.Binding
	Down   key.Binding
	Focus  key.Binding
	Filter key.Binding
	Copy   key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Open: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "sessions"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Focus: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "focus terminal"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy id"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// collapsedKeys is the help.KeyMap shown while the picker is closed.
type collapsedKeys struct{ keyMap }

func (k collapsedKeys) ShortHelp() []key.Binding { return []key.Binding{k.Open, k.Quit} }

func (k collapsedKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// pickerKeys is the help.KeyMap shown while the picker is open.
type pickerKeys struct{ keyMap }

func (k pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Focus, k.Filter, k.Copy, k.Back}
}

func (k pickerKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
