package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a color palette
type Theme struct {
	Name string

	Text      lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
	Accent    lipgloss.Color
	Secondary lipgloss.Color

	// Timer and task state
	Running lipgloss.Color
	Done    lipgloss.Color
	Warning lipgloss.Color
}

// Styles holds the lipgloss styles derived from a theme
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style

	// Listing rows
	Position lipgloss.Style
	Row      lipgloss.Style
	RowDone  lipgloss.Style
	Archived lipgloss.Style
	Duration lipgloss.Style
	Running  lipgloss.Style

	// Timer view
	Clock    lipgloss.Style
	Panel    lipgloss.Style
	Status   lipgloss.Style
	Warning  lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Italic(true),

		Label: lipgloss.NewStyle().
			Foreground(t.Muted),

		Position: lipgloss.NewStyle().
			Foreground(t.Muted).
			Width(4).
			Align(lipgloss.Right).
			PaddingRight(1),

		Row: lipgloss.NewStyle().
			Foreground(t.Text),

		RowDone: lipgloss.NewStyle().
			Foreground(t.Muted).
			Strikethrough(true),

		Archived: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true),

		Duration: lipgloss.NewStyle().
			Foreground(t.Secondary).
			PaddingLeft(1),

		Running: lipgloss.NewStyle().
			Foreground(t.Running).
			Bold(true).
			PaddingLeft(1),

		Clock: lipgloss.NewStyle().
			Foreground(t.Running).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Running),

		Panel: lipgloss.NewStyle().
			Padding(1, 2),

		Status: lipgloss.NewStyle().
			Foreground(t.Done),

		Warning: lipgloss.NewStyle().
			Foreground(t.Warning),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Muted),
	}
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{
		Nord,
		Dracula,
		Gruvbox,
		Catppuccin,
	}
}

// ByName returns a theme by its name
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Load returns the styles of the named theme
func Load(name string) (Styles, error) {
	t, ok := ByName(name)
	if !ok {
		return Styles{}, fmt.Errorf("unknown theme %q", name)
	}
	return NewStyles(t), nil
}
