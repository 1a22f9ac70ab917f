package main

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// TestHelper provides utilities for testing the TUI
type TestHelper struct {
	t     *testing.T
	path  string
	model Model
}

// NewTestHelper writes content to a temp file and opens a model on it.
// HOME is redirected so expansion-state persistence stays inside the
// test sandbox.
func NewTestHelper(t *testing.T, name, content string) *TestHelper {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test document: %v", err)
	}
	m, err := NewModel(path)
	if err != nil {
		t.Fatalf("failed to create model: %v", err)
	}
	h := &TestHelper{t: t, path: path, model: m}
	h.SendWindowSize(100, 30)
	return h
}

// SendKey simulates a key press
func (h *TestHelper) SendKey(keyType tea.KeyType) *TestHelper {
	msg := tea.KeyMsg{Type: keyType}
	updated, _ := h.model.Update(msg)
	h.model = updated.(Model)
	return h
}

// SendKeyRune simulates a character key press
func (h *TestHelper) SendKeyRune(r rune) *TestHelper {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
	updated, _ := h.model.Update(msg)
	h.model = updated.(Model)
	return h
}

// SendWindowSize simulates a window resize
func (h *TestHelper) SendWindowSize(width, height int) *TestHelper {
	msg := tea.WindowSizeMsg{Width: width, Height: height}
	updated, _ := h.model.Update(msg)
	h.model = updated.(Model)
	return h
}

// TypeInput replaces the text-input buffer (bypassing per-rune messages)
func (h *TestHelper) TypeInput(text string) *TestHelper {
	h.model.input.SetValue(text)
	return h
}

// MoveCursorTo positions the cursor on the row with the given path
func (h *TestHelper) MoveCursorTo(path string) *TestHelper {
	h.t.Helper()
	for i, row := range h.model.rows {
		if row.Path == path {
			h.model.cursor = i
			return h
		}
	}
	h.t.Fatalf("no visible row with path %q", path)
	return h
}

// GetModel returns the current model
func (h *TestHelper) GetModel() Model {
	return h.model
}

// GetView returns the rendered view
func (h *TestHelper) GetView() string {
	return h.model.View()
}

// RowPaths returns the visible row paths in document order
func (h *TestHelper) RowPaths() []string {
	paths := make([]string, len(h.model.rows))
	for i, row := range h.model.rows {
		paths[i] = row.Path
	}
	return paths
}
