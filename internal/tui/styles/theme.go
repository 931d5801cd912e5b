package styles

import "github.com/charmbracelet/lipgloss"

// Theme holds the styled components of the simulator front-end.
type Theme struct {
	Title   lipgloss.Style
	Screen  lipgloss.Style
	Status  lipgloss.Style
	Busy    lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Help    lipgloss.Style
}

// NewTheme creates the default theme, tinted like the appliance's amber LCD.
func NewTheme() *Theme {
	amber := lipgloss.Color("#FFB000")
	dim := lipgloss.Color("#6B7280")
	errColor := lipgloss.Color("#EF4444")
	busy := lipgloss.Color("#06B6D4")

	return &Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(amber).
			MarginBottom(1),

		Screen: lipgloss.NewStyle().
			Foreground(amber).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(dim).
			Padding(1, 2),

		Status: lipgloss.NewStyle().
			Foreground(dim).
			Italic(true),

		Busy: lipgloss.NewStyle().
			Foreground(busy).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),

		Dim: lipgloss.NewStyle().
			Foreground(dim),

		Help: lipgloss.NewStyle().
			Foreground(dim).
			MarginTop(1),
	}
}
