package render

import "github.com/charmbracelet/lipgloss"

// Styles is the palette a renderer draws lines with. Zero value renders
// unstyled; DefaultStyles matches the explorer theme.
type Styles struct {
	Key       lipgloss.Style
	Value     lipgloss.Style
	Summary   lipgloss.Style
	Toggle    lipgloss.Style
	Type      lipgloss.Style
	Selected  lipgloss.Style
	Missing   lipgloss.Style
	Attribute lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	muted := lipgloss.Color("#666666")
	return Styles{
		Key:       lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")),
		Value:     lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")),
		Summary:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		Toggle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C678DD")),
		Type:      lipgloss.NewStyle().Foreground(muted),
		Selected:  lipgloss.NewStyle().Background(lipgloss.Color("#7D56F4")).Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		Missing:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		Attribute: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
	}
}

const (
	expandedIcon  = "▼"
	collapsedIcon = "▶"
	// spacer keeps alignment for rows without an expand control.
	spacer     = " "
	indentUnit = "  "
)
