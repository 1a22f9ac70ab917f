package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire UI
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if !m.ready {
		return "Loading..."
	}

	// If help overlay is showing, render it
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	header := m.renderHeader()
	content := m.renderContent()
	status := m.renderStatus()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		status,
	)
}

// renderHeader renders the header with file name, format, and current path
func (m Model) renderHeader() string {
	title := "Tree Explorer"
	fileName := fmt.Sprintf("File: %s [%s]", m.filePath, m.ed.Format())
	if m.dirty {
		fileName += " " + dirtyStyle.Render("●")
	}

	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render(title),
		lipgloss.NewStyle().Render("  "),
		pathStyle.Render(fileName),
	)

	currentPath := ""
	if row := m.currentRow(); row != nil && !m.sourceView {
		currentPath = fmt.Sprintf("Path: %s", row.Path)
	}
	if m.sourceView {
		currentPath = "Source view (read-only, press s to return)"
	}
	if currentPath != "" {
		header = lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			pathStyle.Render(currentPath),
		)
	}

	return header
}

// renderContent renders the tree rows (or raw source) into the viewport
func (m Model) renderContent() string {
	vp := m.viewport

	if m.sourceView {
		vp.SetContent(m.ed.Source())
		return vp.View()
	}

	renderer := m.ed.Renderer()
	lines := make([]string, 0, len(m.rows))
	for i, row := range m.rows {
		line := renderer.Line(row)
		if i == m.cursor {
			line = cursorStyle.Render(truncate(stripANSI(line), max(m.width, 20)))
		}
		lines = append(lines, line)
	}
	vp.SetContent(strings.Join(lines, "\n"))

	// Keep the cursor row inside the window
	if m.cursor < vp.YOffset {
		vp.SetYOffset(m.cursor)
	} else if m.cursor >= vp.YOffset+vp.Height {
		vp.SetYOffset(m.cursor - vp.Height + 1)
	}

	return vp.View()
}

// renderStatus renders the bottom status bar
func (m Model) renderStatus() string {
	if m.inputMode != NormalMode {
		prompt := map[InputMode]string{
			EditValueMode: "Value",
			EditKeyMode:   "Key",
			AddNodeMode:   "Add (key: value)",
			GoToPathMode:  "Go to path",
		}[m.inputMode]
		return statusStyle.Render(promptStyle.Render(prompt+": ") + m.input.View())
	}

	if m.statusMessage != "" {
		return statusStyle.Render(m.statusMessage)
	}

	count := fmt.Sprintf("%d nodes", m.ed.Model().Count())
	hints := helpStyle.Render("? help · e edit · a add · d delete · s source · ctrl+s save · q quit")
	return statusStyle.Render(count + "  " + hints)
}

// renderHelpOverlay renders the full-screen help view
func (m Model) renderHelpOverlay() string {
	type entry struct{ keys, desc string }
	sections := []struct {
		title   string
		entries []entry
	}{
		{"Navigation", []entry{
			{"↑/k, ↓/j", "move up/down"},
			{"←/h", "collapse / go to parent"},
			{"→/l", "expand"},
			{"enter", "toggle expansion"},
			{"g / G", "go to top / bottom"},
			{"pgup/pgdn", "page up/down"},
			{"p", "go to parent"},
			{"E / C", "expand all / collapse all"},
			{"ctrl+g", "jump to path"},
		}},
		{"Editing", []entry{
			{"e", "edit value"},
			{"r", "rename key"},
			{"a", "add child (key: value)"},
			{"d", "delete node"},
			{"esc", "cancel edit"},
		}},
		{"Document", []entry{
			{"s", "toggle source view"},
			{"ctrl+s", "save to disk"},
			{"c / y", "copy path / value"},
		}},
		{"General", []entry{
			{"?", "toggle this help"},
			{"q", "quit"},
		}},
	}

	var sb strings.Builder
	sb.WriteString(helpTitleStyle.Render("Tree Explorer: Keyboard Shortcuts"))
	sb.WriteString("\n\n")
	for _, section := range sections {
		sb.WriteString(helpTitleStyle.Render(section.title))
		sb.WriteString("\n")
		for _, e := range section.entries {
			sb.WriteString(helpKeyStyle.Render(e.keys))
			sb.WriteString(helpDescStyle.Render(e.desc))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("Press esc or ? to close"))
	return sb.String()
}

// stripANSI removes escape sequences so the cursor style can restyle the
// whole line uniformly.
func stripANSI(s string) string {
	var sb strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
