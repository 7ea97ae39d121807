package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/skim/internal/nav"
)

// keyMap binds keys to navigation commands. Bubble Tea only delivers key
// presses, so repeats and releases never reach it.
type keyMap struct {
	Next     key.Binding
	Previous key.Binding
	First    key.Binding
	Last     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Next:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Previous: key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	First:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("Home/g", "first")),
	Last:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("End/G", "last")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Previous, k.Next, k.First, k.Last}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// commandFor decodes a key press into at most one navigation command.
func commandFor(msg tea.KeyMsg) nav.Command {
	switch {
	case key.Matches(msg, keys.Quit):
		return nav.Quit
	case key.Matches(msg, keys.Next):
		return nav.Next
	case key.Matches(msg, keys.Previous):
		return nav.Previous
	case key.Matches(msg, keys.First):
		return nav.First
	case key.Matches(msg, keys.Last):
		return nav.Last
	}
	return nav.None
}
