package format

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for shell chrome. With color off all
// fields are zero styles that render plain text.
type Styles struct {
	Banner  lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds the style set from the same ANSI palette the SPF
// highlighter uses.
func NewStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{Banner: plain, Muted: plain, Info: plain, Warning: plain, Error: plain}
	}
	return &Styles{
		Banner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}
