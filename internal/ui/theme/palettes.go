package theme

import "github.com/charmbracelet/lipgloss"

// Nord - https://www.nordtheme.com/
var Nord = Theme{
	Name:      "nord",
	Text:      lipgloss.Color("#ECEFF4"),
	Muted:     lipgloss.Color("#4C566A"),
	Border:    lipgloss.Color("#4C566A"),
	Accent:    lipgloss.Color("#88C0D0"),
	Secondary: lipgloss.Color("#81A1C1"),
	Running:   lipgloss.Color("#BF616A"),
	Done:      lipgloss.Color("#A3BE8C"),
	Warning:   lipgloss.Color("#EBCB8B"),
}

// Dracula - https://draculatheme.com/
var Dracula = Theme{
	Name:      "dracula",
	Text:      lipgloss.Color("#F8F8F2"),
	Muted:     lipgloss.Color("#6272A4"),
	Border:    lipgloss.Color("#6272A4"),
	Accent:    lipgloss.Color("#BD93F9"),
	Secondary: lipgloss.Color("#8BE9FD"),
	Running:   lipgloss.Color("#FF5555"),
	Done:      lipgloss.Color("#50FA7B"),
	Warning:   lipgloss.Color("#F1FA8C"),
}

// Gruvbox dark - https://github.com/morhetz/gruvbox
var Gruvbox = Theme{
	Name:      "gruvbox",
	Text:      lipgloss.Color("#EBDBB2"),
	Muted:     lipgloss.Color("#928374"),
	Border:    lipgloss.Color("#504945"),
	Accent:    lipgloss.Color("#83A598"),
	Secondary: lipgloss.Color("#8EC07C"),
	Running:   lipgloss.Color("#FB4934"),
	Done:      lipgloss.Color("#B8BB26"),
	Warning:   lipgloss.Color("#FABD2F"),
}

// Catppuccin Mocha - https://github.com/catppuccin/catppuccin
var Catppuccin = Theme{
	Name:      "catppuccin",
	Text:      lipgloss.Color("#CDD6F4"),
	Muted:     lipgloss.Color("#6C7086"),
	Border:    lipgloss.Color("#45475A"),
	Accent:    lipgloss.Color("#89B4FA"),
	Secondary: lipgloss.Color("#CBA6F7"),
	Running:   lipgloss.Color("#F38BA8"),
	Done:      lipgloss.Color("#A6E3A1"),
	Warning:   lipgloss.Color("#F9E2AF"),
}
