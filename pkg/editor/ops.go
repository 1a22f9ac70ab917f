package editor

import (
	"fmt"
	"time"

	"github.com/BillPolly/treekit/pkg/node"
)

// NodeEdit is the nodeedit payload.
type NodeEdit struct {
	Path     string
	OldValue any
	NewValue any
}

// NodeChange is the payload for nodeadd, noderemove/nodedelete, and
// nodemove.
type NodeChange struct {
	Op      string
	Path    string
	NewPath string
	Node    *node.Node
}

// ValidationFailure is the validationerror payload.
type ValidationFailure struct {
	Path  string
	Value any
	Err   error
}

// PendingChange records one mutation inside a bulk operation. Records are
// discarded once the batch's aggregate contentchange fires.
type PendingChange struct {
	Op   string
	Path string
}

// ContentChange is the contentchange payload. Changes lists the batch's
// pending records; a single mutation carries one entry.
type ContentChange struct {
	Changes []PendingChange
}

// ChangeIntent is the beforechange payload. Handlers may cancel the
// event to veto the mutation; a vetoed operation returns nil without
// touching the tree.
type ChangeIntent struct {
	Op    string
	Path  string
	Value any
}

// vetoed offers a mutation to beforechange listeners before it applies.
func (e *Editor) vetoed(op, path string, value any) bool {
	return e.emitter.EmitCancellable(TopicBeforeChange, ChangeIntent{Op: op, Path: path, Value: value})
}

// contentChanged emits one contentchange, or defers it while batching.
func (e *Editor) contentChanged(changes ...PendingChange) {
	if len(changes) == 0 {
		changes = []PendingChange{{Op: "content"}}
	}
	if e.batching {
		e.pending = append(e.pending, changes...)
		return
	}
	e.emitter.Emit(TopicContentChange, ContentChange{Changes: changes})
}

func (e *Editor) checkMutable() error {
	if e.destroyed {
		return ErrDestroyed
	}
	if !*e.opts.Editable {
		return e.fail(KindEditError, ErrNotEditable, true)
	}
	return nil
}

// findNode resolves a path, falling back to id lookup.
func (e *Editor) findNode(pathOrID string) *node.Node {
	if n := e.model.FindByPath(pathOrID); n != nil {
		return n
	}
	return e.model.FindByID(pathOrID)
}

// EditNode sets a node's value after validation. A validator rejection
// emits validationerror and performs no mutation; success emits nodeedit
// plus one aggregated contentchange.
func (e *Editor) EditNode(pathOrID string, value any) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	n := e.findNode(pathOrID)
	if n == nil {
		return e.fail(KindEditError, fmt.Errorf("%w: %q", ErrNodeNotFound, pathOrID), true)
	}
	path := n.Path(node.PathSeparator)
	if e.vetoed("edit", path, value) {
		return nil
	}
	if v, ok := e.opts.Validators[path]; ok {
		if err := v(path, value); err != nil {
			e.emitter.Emit(TopicValidationError, ValidationFailure{Path: path, Value: value, Err: err})
			return e.fail(KindValidationError, fmt.Errorf("%w: %s: %v", ErrValidation, path, err), true)
		}
		e.emitter.Emit(TopicValidation, path)
	}
	old := n.Value
	n.Value = value
	e.renderer.ClearCache()
	e.emitter.Emit(TopicNodeEdit, NodeEdit{Path: path, OldValue: old, NewValue: value})
	e.contentChanged(PendingChange{Op: "edit", Path: path})
	return nil
}

// RenameNode changes a node's key. The new name must be non-empty.
func (e *Editor) RenameNode(pathOrID, newName string) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	if newName == "" {
		return e.fail(KindEditError, fmt.Errorf("editor: empty node name"), true)
	}
	n := e.findNode(pathOrID)
	if n == nil {
		return e.fail(KindEditError, fmt.Errorf("%w: %q", ErrNodeNotFound, pathOrID), true)
	}
	if e.vetoed("rename", n.Path(node.PathSeparator), newName) {
		return nil
	}
	old := n.Name
	n.Name = newName
	path := n.Path(node.PathSeparator)
	e.renderer.ClearCache()
	e.emitter.Emit(TopicNodeEdit, NodeEdit{Path: path, OldValue: old, NewValue: newName})
	e.contentChanged(PendingChange{Op: "rename", Path: path})
	return nil
}

// AddNode creates a child under parentPath ("" addresses the root).
// Scalars become properties or values; a nil value with a key creates an
// empty object branch.
func (e *Editor) AddNode(parentPath string, value any, key string) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	parent := e.model.FindByPath(parentPath)
	if parent == nil {
		return e.fail(KindOperationError, fmt.Errorf("%w: parent %q", ErrNodeNotFound, parentPath), true)
	}
	if e.vetoed("add", parentPath, value) {
		return nil
	}
	var child *node.Node
	switch {
	case value == nil && key != "":
		child = node.New(node.Object, key)
	case key != "":
		child = node.New(node.Property, key)
		child.Value = value
	default:
		child = node.NewValue("", value)
	}
	if err := child.Attach(parent, -1); err != nil {
		return e.fail(KindOperationError, err, true)
	}
	path := child.Path(node.PathSeparator)
	e.renderer.ClearCache()
	e.emitter.Emit(TopicNodeAdd, NodeChange{Op: "add", Path: path, Node: child})
	e.contentChanged(PendingChange{Op: "add", Path: path})
	return nil
}

// DeleteNode removes a node. Deleting a configured required path is
// rejected with operation-error and the node stays.
func (e *Editor) DeleteNode(pathOrID string) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	n := e.findNode(pathOrID)
	if n == nil {
		return e.fail(KindOperationError, fmt.Errorf("%w: %q", ErrNodeNotFound, pathOrID), true)
	}
	path := n.Path(node.PathSeparator)
	for _, required := range e.opts.RequiredPaths {
		if path == required || node.IsPathPrefix(path, required, node.PathSeparator) {
			return e.fail(KindOperationError, fmt.Errorf("%w: %q", ErrProtectedPath, path), true)
		}
	}
	if n.Parent() == nil {
		return e.fail(KindOperationError, fmt.Errorf("editor: cannot delete root"), true)
	}
	if e.vetoed("delete", path, nil) {
		return nil
	}
	n.Detach()
	e.renderer.ClearCache()
	change := NodeChange{Op: "delete", Path: path, Node: n}
	e.emitter.Emit(TopicNodeRemove, change)
	e.emitter.Emit(TopicNodeDelete, change)
	e.contentChanged(PendingChange{Op: "delete", Path: path})
	return nil
}

// MoveNode reparents a node. Moving a node into its own descendant is
// rejected with operation-error, keeping the tree acyclic.
func (e *Editor) MoveNode(fromPath, toPath string, toIndex int) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	n := e.model.FindByPath(fromPath)
	if n == nil {
		return e.fail(KindOperationError, fmt.Errorf("%w: %q", ErrNodeNotFound, fromPath), true)
	}
	target := e.model.FindByPath(toPath)
	if target == nil {
		return e.fail(KindOperationError, fmt.Errorf("%w: %q", ErrNodeNotFound, toPath), true)
	}
	if target == n || n.HasDescendant(target) {
		return e.fail(KindOperationError, fmt.Errorf("%w: %q into %q", ErrCyclicMove, fromPath, toPath), true)
	}
	if e.vetoed("move", fromPath, toPath) {
		return nil
	}
	n.Detach()
	if err := n.Attach(target, toIndex); err != nil {
		return e.fail(KindOperationError, err, true)
	}
	newPath := n.Path(node.PathSeparator)
	e.renderer.ClearCache()
	e.emitter.Emit(TopicNodeMove, NodeChange{Op: "move", Path: fromPath, NewPath: newPath, Node: n})
	e.contentChanged(PendingChange{Op: "move", Path: newPath})
	return nil
}

// SlowOperation is the slowoperation payload.
type SlowOperation struct {
	Duration  time.Duration
	Threshold time.Duration
	Changes   int
}

// BulkOperation runs fn with contentchange batching: individual
// mutations inside fn emit their node events but defer contentchange,
// and exactly one aggregate fires afterwards if anything changed.
// Overlapping bulk operations are rejected.
func (e *Editor) BulkOperation(fn func() error) error {
	if e.destroyed {
		return ErrDestroyed
	}
	if e.batching || e.opInFlight {
		return e.fail(KindOperationError, ErrOperationInFlight, true)
	}
	e.batching = true
	e.opInFlight = true
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	pending := e.pending
	e.pending = nil
	e.batching = false
	e.opInFlight = false

	if len(pending) > 0 {
		e.emitter.Emit(TopicContentChange, ContentChange{Changes: pending})
	}
	if e.opts.SlowOperationThreshold > 0 && elapsed > e.opts.SlowOperationThreshold {
		e.emitter.Emit(TopicSlowOperation, SlowOperation{
			Duration:  elapsed,
			Threshold: e.opts.SlowOperationThreshold,
			Changes:   len(pending),
		})
	}
	return err
}
