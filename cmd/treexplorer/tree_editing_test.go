package main

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// TestEditValue tests the inline value edit flow end to end
func TestEditValue(t *testing.T) {
	helper := NewTestHelper(t, "config.json", testDoc)

	helper.MoveCursorTo("server.port")
	helper.SendKeyRune('e')

	model := helper.GetModel()
	if model.inputMode != EditValueMode {
		t.Fatal("e should enter value-edit mode")
	}
	if got := model.input.Value(); got != "8080" {
		t.Errorf("prompt should be seeded with the current value, got %q", got)
	}

	helper.TypeInput("9090")
	helper.SendKey(tea.KeyEnter)

	model = helper.GetModel()
	n := model.ed.Model().FindByPath("server.port")
	if n == nil {
		t.Fatal("server.port disappeared")
	}
	if n.Value != int64(9090) {
		t.Errorf("expected coerced int64(9090), got %T(%v)", n.Value, n.Value)
	}
	if !model.dirty {
		t.Error("document should be marked dirty after an edit")
	}

	t.Log("✓ Value edit commits with coercion")
}

// TestEditCancel tests that Esc leaves the value untouched
func TestEditCancel(t *testing.T) {
	helper := NewTestHelper(t, "config.json", testDoc)

	helper.MoveCursorTo("server.host")
	helper.SendKeyRune('e')
	helper.TypeInput("example.com")
	helper.SendKey(tea.KeyEsc)

	model := helper.GetModel()
	if model.inputMode != NormalMode {
		t.Error("Esc should return to normal mode")
	}
	n := model.ed.Model().FindByPath("server.host")
	if n.Value != "localhost" {
		t.Errorf("cancel should keep the original value, got %v", n.Value)
	}
	if model.dirty {
		t.Error("cancel should not mark the document dirty")
	}

	t.Log("✓ Cancel restores the original value")
}

// TestRenameKey tests the rename flow
func TestRenameKey(t *testing.T) {
	helper := NewTestHelper(t, "config.json", testDoc)

	helper.MoveCursorTo("debug")
	helper.SendKeyRune('r')

	model := helper.GetModel()
	if model.inputMode != EditKeyMode {
		t.Fatal("r should enter key-edit mode")
	}
	if got := model.input.Value(); got != "debug" {
		t.Errorf("prompt should be seeded with the key, got %q", got)
	}

	helper.TypeInput("verbose")
	helper.SendKey(tea.KeyEnter)

	model = helper.GetModel()
	if model.ed.Model().FindByPath("verbose") == nil {
		t.Error("renamed node should resolve at its new path")
	}
	if model.ed.Model().FindByPath("debug") != nil {
		t.Error("old path should no longer resolve")
	}

	t.Log("✓ Rename moves the node to its new path")
}

// TestEditFailureShowsMessage tests that a rejected commit surfaces the
// recorded failure in the status bar
func TestEditFailureShowsMessage(t *testing.T) {
	helper := NewTestHelper(t, "config.json", testDoc)

	helper.MoveCursorTo("server.host")
	helper.SendKeyRune('e')

	// The node vanishes while the edit session is open; the commit must
	// fail and report why.
	if err := helper.GetModel().ed.DeleteNode("server.host"); err != nil {
		t.Fatalf("setup delete failed: %v", err)
	}

	helper.TypeInput("remote")
	helper.SendKey(tea.KeyEnter)

	model := helper.GetModel()
	if !strings.Contains(model.statusMessage, "Edit failed") {
		t.Fatalf("expected edit failure status, got %q", model.statusMessage)
	}
	if !strings.Contains(model.statusMessage, "not found") {
		t.Errorf("status should carry the recorded message, got %q", model.statusMessage)
	}
	if model.dirty {
		t.Error("failed edit should not mark the document dirty")
	}

	t.Log("✓ Failed edits report the recorded error message")
}

// TestAddChild tests adding a keyed property under a branch
func TestAddChild(t *testing.T) {
	helper := NewTestHelper(t, "config.json", testDoc)

	helper.MoveCursorTo("server")
	helper.SendKeyRune('a')

	model := helper.GetModel()
	if model.inputMode != AddNodeMode {
		t.Fatal("a should enter add mode")
	}
	if model.addParent != "server" {
		t.Errorf("add parent should be server, got %q", model.addParent)
	}

	helper.TypeInput("tls: true")
	helper.SendKey(tea.KeyEnter)

	model = helper.GetModel()
	n := model.ed.Model().FindByPath("server.tls")
	if n == nil {
		t.Fatal("server.tls should exist")
	}
	if n.Value != true {
		t.Errorf("expected coerced bool true, got %T(%v)", n.Value, n.Value)
	}

	t.Log("✓ Add child parses key: value input")
}

// TestAddUnderLeafTargetsParent tests that adding from a leaf row goes
// to its enclosing container
func TestAddUnderLeafTargetsParent(t *testing.T) {
	helper := NewTestHelper(t, "config.json", testDoc)

	helper.MoveCursorTo("server.host")
	helper.SendKeyRune('a')

	if got := helper.GetModel().addParent; got != "server" {
		t.Errorf("leaf row should add to its parent, got %q", got)
	}

	t.Log("✓ Leaf rows delegate adds to their parent")
}

// TestDeleteNode tests deleting the current row
func TestDeleteNode(t *testing.T) {
	helper := NewTestHelper(t, "config.json", testDoc)

	helper.MoveCursorTo("server.host")
	helper.SendKeyRune('d')

	model := helper.GetModel()
	if model.ed.Model().FindByPath("server.host") != nil {
		t.Error("deleted node should be gone")
	}
	for _, p := range helper.RowPaths() {
		if p == "server.host" {
			t.Error("deleted row still visible")
		}
	}
	if !model.dirty {
		t.Error("delete should mark the document dirty")
	}

	t.Log("✓ Delete removes the node and its row")
}

// TestDeleteRootRejected tests that the root row cannot be deleted
func TestDeleteRootRejected(t *testing.T) {
	helper := NewTestHelper(t, "config.json", testDoc)

	helper.SendKey(tea.KeyHome)
	helper.SendKeyRune('d')

	model := helper.GetModel()
	if !strings.Contains(model.statusMessage, "Delete failed") {
		t.Errorf("expected delete failure status, got %q", model.statusMessage)
	}
	if model.ed.Model().Root() == nil {
		t.Error("root must survive")
	}

	t.Log("✓ Root deletion is rejected")
}

// TestSaveWritesFile tests Ctrl+S persisting edits to disk
func TestSaveWritesFile(t *testing.T) {
	helper := NewTestHelper(t, "config.json", testDoc)

	helper.MoveCursorTo("server.port")
	helper.SendKeyRune('e')
	helper.TypeInput("9090")
	helper.SendKey(tea.KeyEnter)

	helper.SendKey(tea.KeyCtrlS)

	model := helper.GetModel()
	if model.dirty {
		t.Error("save should clear the dirty flag")
	}

	data, err := os.ReadFile(helper.path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if !strings.Contains(string(data), "9090") {
		t.Errorf("saved file should contain the new value:\n%s", data)
	}

	t.Log("✓ Save writes serialized content to disk")
}
