package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BillPolly/treekit/internal/logger"
	"github.com/BillPolly/treekit/pkg/editor"
	"github.com/BillPolly/treekit/pkg/expand"
	"github.com/BillPolly/treekit/pkg/render"
)

// InputMode represents different input modes
type InputMode int

const (
	NormalMode InputMode = iota
	EditValueMode
	EditKeyMode
	AddNodeMode
	GoToPathMode
)

// Model is the main application model
type Model struct {
	filePath string
	ed       *editor.Editor
	keys     KeyMap

	// Visible rows in document order, refreshed after every change
	rows   []*render.Element
	cursor int

	viewport viewport.Model
	input    textinput.Model

	inputMode InputMode
	session   *render.EditSession
	addParent string

	sourceView bool
	dirty      bool
	showHelp   bool

	// Status message for temporary feedback
	statusMessage string

	width  int
	height int
	ready  bool

	err error
}

// NewModel creates a new TUI model for the given document
func NewModel(filePath string) (Model, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Model{}, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	// Expansion state persists per document under ~/.treekit
	var store expand.Store
	if home, err := os.UserHomeDir(); err == nil {
		if fs, err := expand.NewFileStore(filepath.Join(home, ".treekit", "expansion")); err == nil {
			store = fs
		}
	}
	expandKey, err := filepath.Abs(filePath)
	if err != nil {
		expandKey = filePath
	}

	ed, err := editor.New(editor.Options{
		DefaultExpanded:        true,
		ExpandStore:            store,
		ExpandKey:              expandKey,
		ExpandDebounce:         200 * time.Millisecond,
		TrackErrors:            true,
		SlowOperationThreshold: 500 * time.Millisecond,
	})
	if err != nil {
		return Model{}, err
	}

	ed.On(editor.TopicSlowOperation, func(ev editor.Event) {
		logger.Warn("slow operation", "payload", ev.Payload)
	})

	if err := ed.LoadContent(string(data), ""); err != nil {
		return Model{}, fmt.Errorf("failed to load %s: %w", filePath, err)
	}
	logger.Info("document loaded", "path", filePath, "format", ed.Format(), "nodes", ed.Model().Count())

	input := textinput.New()
	input.CharLimit = 256

	m := Model{
		filePath: filePath,
		ed:       ed,
		keys:     DefaultKeyMap(),
		input:    input,
	}
	m.refresh()
	return m, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Close cleans up resources held by the model. Flushes pending
// expansion-state writes.
func (m *Model) Close() {
	m.ed.Destroy()
}

// refresh rebuilds the visible row list from the current tree and
// expansion state.
func (m *Model) refresh() {
	root, err := m.ed.Render()
	if err != nil {
		m.err = err
		return
	}
	m.rows = render.Flatten(root)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// currentRow returns the element under the cursor, nil when the view is
// empty.
func (m *Model) currentRow() *render.Element {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

// moveCursorTo positions the cursor on the row with the given path
func (m *Model) moveCursorTo(path string) {
	for i, row := range m.rows {
		if row.Path == path {
			m.cursor = i
			m.ed.Select(row.Path)
			return
		}
	}
}

// newViewport builds a sized viewport for the tree or source pane
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	return vp
}

// writeDocument persists serialized content back to disk
func writeDocument(path, text string) error {
	return os.WriteFile(path, []byte(text), 0644)
}

// Messages

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type clearStatusMsg struct{}

// clearStatusAfter schedules the status bar to clear
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
