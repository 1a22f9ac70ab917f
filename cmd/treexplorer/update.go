package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BillPolly/treekit/internal/coerce"
	"github.com/BillPolly/treekit/internal/logger"
	"github.com/BillPolly/treekit/pkg/editor"
	"github.com/BillPolly/treekit/pkg/node"
	"github.com/BillPolly/treekit/pkg/render"
)

const statusTimeout = 2 * time.Second

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If help is showing, handle help keys
		if m.showHelp {
			if key.Matches(msg, m.keys.Esc) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
				m.showHelp = false
			}
			// Ignore other keys when help is showing
			return m, nil
		}

		// Handle input modes (edit, rename, add, go to path)
		if m.inputMode != NormalMode {
			return m.handleInputMode(msg)
		}

		return m.handleNormalMode(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Header takes 3 lines, status bar 2
		contentHeight := max(msg.Height-5, 5)
		if !m.ready {
			m.viewport = newViewport(msg.Width, contentHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = contentHeight
		}
		return m, nil

	case errMsg:
		logger.Error("error occurred", "error", msg.err)
		m.err = msg.err
		return m, nil

	case clearStatusMsg:
		m.statusMessage = ""
		return m, nil
	}

	// Forward remaining messages (cursor blink) to the text input
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleNormalMode processes keys while no input prompt is active
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, keys.SourceView):
		return m.toggleSourceView()

	case key.Matches(msg, keys.Save):
		return m.saveDocument()
	}

	// Source view only scrolls
	if m.sourceView {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.PageUp):
		m.cursor = max(m.cursor-m.viewport.Height, 0)

	case key.Matches(msg, keys.PageDown):
		m.cursor = min(m.cursor+m.viewport.Height, len(m.rows)-1)

	case key.Matches(msg, keys.Home):
		m.cursor = 0

	case key.Matches(msg, keys.End):
		m.cursor = len(m.rows) - 1

	case key.Matches(msg, keys.Enter):
		if row := m.currentRow(); row != nil && row.Expandable {
			m.ed.Renderer().Toggle(row.Path)
			m.refresh()
		}

	case key.Matches(msg, keys.Right):
		if row := m.currentRow(); row != nil && row.Expandable && !row.Expanded {
			m.ed.Renderer().Toggle(row.Path)
			m.refresh()
		}

	case key.Matches(msg, keys.Left):
		return m.collapseOrGoUp()

	case key.Matches(msg, keys.GoToParent):
		return m.goToParent()

	case key.Matches(msg, keys.ExpandAll):
		m.ed.Expansion().ExpandAll(m.ed.Model().Root(), 0)
		m.ed.Renderer().ClearCache()
		m.refresh()

	case key.Matches(msg, keys.CollapseAll):
		m.ed.Expansion().CollapseAll()
		m.ed.Renderer().ClearCache()
		m.cursor = 0
		m.refresh()

	case key.Matches(msg, keys.EditValue):
		return m.beginEdit(render.RegionValue)

	case key.Matches(msg, keys.Rename):
		return m.beginEdit(render.RegionKey)

	case key.Matches(msg, keys.AddChild):
		return m.beginAdd()

	case key.Matches(msg, keys.Delete):
		return m.deleteCurrent()

	case key.Matches(msg, keys.Jump):
		m.inputMode = GoToPathMode
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Copy):
		if row := m.currentRow(); row != nil {
			if err := clipboard.WriteAll(row.Path); err != nil {
				m.statusMessage = "Failed to copy path"
			} else {
				m.statusMessage = fmt.Sprintf("✓ Copied: %s", row.Path)
			}
			return m, clearStatusAfter(statusTimeout)
		}

	case key.Matches(msg, keys.CopyValue):
		if row := m.currentRow(); row != nil && row.ValueText != "" {
			if err := clipboard.WriteAll(row.ValueText); err != nil {
				m.statusMessage = "Failed to copy value"
			} else {
				m.statusMessage = "Value copied to clipboard"
			}
			return m, clearStatusAfter(statusTimeout)
		}
	}

	if row := m.currentRow(); row != nil {
		m.ed.Select(row.Path)
	}
	return m, nil
}

// collapseOrGoUp collapses the current node if expanded, otherwise moves
// to its parent row.
func (m Model) collapseOrGoUp() (tea.Model, tea.Cmd) {
	row := m.currentRow()
	if row == nil {
		return m, nil
	}
	if row.Expandable && row.Expanded {
		m.ed.Renderer().Toggle(row.Path)
		m.refresh()
		return m, nil
	}
	return m.goToParent()
}

func (m Model) goToParent() (tea.Model, tea.Cmd) {
	row := m.currentRow()
	if row == nil {
		return m, nil
	}
	// Walk backwards to the nearest shallower row
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].Depth < row.Depth {
			m.cursor = i
			break
		}
	}
	return m, nil
}

// beginEdit opens the inline prompt for the current row's key or value
func (m Model) beginEdit(region render.Region) (tea.Model, tea.Cmd) {
	row := m.currentRow()
	if row == nil {
		return m, nil
	}
	editable := row.ValueEditable
	mode := EditValueMode
	if region == render.RegionKey {
		editable = row.KeyEditable
		mode = EditKeyMode
	}
	if !editable {
		m.statusMessage = "Not editable here"
		return m, clearStatusAfter(statusTimeout)
	}
	n := m.ed.Model().FindByPath(row.Path)
	if n == nil {
		m.statusMessage = "Node not found"
		return m, clearStatusAfter(statusTimeout)
	}
	m.session = m.ed.Renderer().BeginEdit(n, region, row.Path)
	m.input.SetValue(m.session.Text())
	m.input.CursorEnd()
	m.input.Focus()
	m.inputMode = mode
	return m, textinput.Blink
}

// beginAdd opens the prompt for adding a child under the current row.
// Leaf rows add to their parent container instead.
func (m Model) beginAdd() (tea.Model, tea.Cmd) {
	row := m.currentRow()
	if row == nil {
		return m, nil
	}
	parent := row.Path
	if !row.NodeType.IsBranch() {
		n := m.ed.Model().FindByPath(row.Path)
		if n != nil && n.Parent() != nil {
			parent = n.Parent().Path(node.PathSeparator)
		}
	}
	m.addParent = parent
	m.input.SetValue("")
	m.input.Focus()
	m.inputMode = AddNodeMode
	return m, textinput.Blink
}

func (m Model) deleteCurrent() (tea.Model, tea.Cmd) {
	row := m.currentRow()
	if row == nil {
		return m, nil
	}
	if err := m.ed.DeleteNode(row.Path); err != nil {
		m.statusMessage = fmt.Sprintf("Delete failed: %v", err)
	} else {
		m.dirty = true
		m.statusMessage = fmt.Sprintf("Deleted %s", row.Path)
		m.refresh()
	}
	return m, clearStatusAfter(statusTimeout)
}

// handleInputMode processes keys while a prompt is active
func (m Model) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Esc):
		if m.session != nil {
			m.session.Cancel()
			m.session = nil
		}
		m.inputMode = NormalMode
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		return m.commitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) commitInput() (tea.Model, tea.Cmd) {
	mode := m.inputMode
	text := m.input.Value()
	m.inputMode = NormalMode
	m.input.Blur()

	switch mode {
	case EditValueMode, EditKeyMode:
		if m.session == nil {
			return m, nil
		}
		path := m.currentPathOr("")
		before := len(m.ed.Errors())
		m.session.SetText(text)
		m.session.Commit()
		m.session = nil
		if records := m.ed.Errors(); len(records) > before {
			m.statusMessage = fmt.Sprintf("Edit failed: %s", records[len(records)-1].Message)
		} else {
			m.dirty = true
			m.statusMessage = fmt.Sprintf("Updated %s", path)
			m.refresh()
		}
		return m, clearStatusAfter(statusTimeout)

	case AddNodeMode:
		name, value := parseAddInput(text)
		if err := m.ed.AddNode(m.addParent, value, name); err != nil {
			m.statusMessage = fmt.Sprintf("Add failed: %v", err)
		} else {
			m.dirty = true
			m.statusMessage = "Node added"
			// Adding under a collapsed parent: expand so the child shows
			if m.addParent != "" {
				m.ed.Expansion().ExpandPath(m.addParent)
				m.ed.Renderer().ClearCache()
			}
			m.refresh()
		}
		return m, clearStatusAfter(statusTimeout)

	case GoToPathMode:
		if m.ed.Model().FindByPath(text) == nil {
			m.statusMessage = fmt.Sprintf("Path not found: %s", text)
			return m, clearStatusAfter(statusTimeout)
		}
		m.ed.Expansion().ExpandPath(text)
		m.ed.Renderer().ClearCache()
		m.refresh()
		m.moveCursorTo(text)
		m.statusMessage = fmt.Sprintf("Jumped to %s", text)
		return m, clearStatusAfter(statusTimeout)
	}

	return m, nil
}

func (m *Model) currentPathOr(fallback string) string {
	if row := m.currentRow(); row != nil {
		return row.Path
	}
	return fallback
}

// parseAddInput splits "key: value" input. A bare token becomes an
// unkeyed value; a trailing empty value with a key creates an empty
// object branch.
func parseAddInput(text string) (string, any) {
	text = strings.TrimSpace(text)
	keyPart, valuePart, found := strings.Cut(text, ":")
	if !found {
		return "", coerce.FromText(text)
	}
	key := strings.TrimSpace(keyPart)
	rest := strings.TrimSpace(valuePart)
	if rest == "" {
		return key, nil
	}
	return key, coerce.FromText(rest)
}

func (m Model) toggleSourceView() (tea.Model, tea.Cmd) {
	if m.sourceView {
		if err := m.ed.SetMode(editor.ModeTree); err != nil {
			m.statusMessage = fmt.Sprintf("Cannot leave source view: %v", err)
			return m, clearStatusAfter(statusTimeout)
		}
		m.sourceView = false
		m.refresh()
		return m, nil
	}
	if err := m.ed.SetMode(editor.ModeSource); err != nil {
		m.statusMessage = fmt.Sprintf("Source view failed: %v", err)
		return m, clearStatusAfter(statusTimeout)
	}
	m.sourceView = true
	m.viewport.GotoTop()
	return m, nil
}

func (m Model) saveDocument() (tea.Model, tea.Cmd) {
	text, err := m.ed.Content()
	if err != nil {
		m.statusMessage = fmt.Sprintf("Save failed: %v", err)
		return m, clearStatusAfter(statusTimeout)
	}
	if err := writeDocument(m.filePath, text); err != nil {
		m.statusMessage = fmt.Sprintf("Save failed: %v", err)
		return m, clearStatusAfter(statusTimeout)
	}
	m.dirty = false
	m.statusMessage = fmt.Sprintf("✓ Saved %s", m.filePath)
	logger.Info("document saved", "path", m.filePath)
	return m, clearStatusAfter(statusTimeout)
}
