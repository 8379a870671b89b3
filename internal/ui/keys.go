package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// TimerKeys defines the keybindings of the timer view
type TimerKeys struct {
	Stop   key.Binding
	Detach key.Binding
	Cancel key.Binding
	Help   key.Binding
}

// DefaultTimerKeys returns the default keybindings
func DefaultTimerKeys() TimerKeys {
	return TimerKeys{
		Stop: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "stop"),
		),
		Detach: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "detach, keep running"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "stop now"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k TimerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Stop, k.Detach, k.Help}
}

// FullHelp returns full help bindings (for help view)
func (k TimerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Stop, k.Cancel},
		{k.Detach, k.Help},
	}
}
