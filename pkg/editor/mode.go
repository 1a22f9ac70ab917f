package editor

import (
	"fmt"

	"github.com/BillPolly/treekit/pkg/format"
)

// Mode is the editor's presentation mode.
type Mode string

const (
	// ModeTree presents the structured node tree.
	ModeTree Mode = "tree"
	// ModeSource presents the raw serialized text.
	ModeSource Mode = "source"
)

// ModeChange is the payload of modechange and beforemodechange.
type ModeChange struct {
	From Mode
	To   Mode
}

// Mode returns the current presentation mode.
func (e *Editor) Mode() Mode { return e.mode }

// SetMode transitions between tree and source mode. The transition first
// fires a cancellable beforemodechange, then validates the target mode's
// representation: switching to source serializes the tree, switching to
// tree parses the source text. On failure the mode stays unchanged and a
// mode-switch-error is surfaced.
func (e *Editor) SetMode(mode Mode) error {
	if e.destroyed {
		return ErrDestroyed
	}
	if mode != ModeTree && mode != ModeSource {
		return e.fail(KindModeSwitchError, fmt.Errorf("%w: %q", ErrInvalidMode, mode), true)
	}
	if mode == e.mode {
		return nil
	}
	if e.opInFlight {
		return e.fail(KindOperationError, ErrOperationInFlight, true)
	}
	e.opInFlight = true
	defer func() { e.opInFlight = false }()

	change := ModeChange{From: e.mode, To: mode}
	if e.emitter.EmitCancellable(TopicBeforeModeChange, change) {
		return nil
	}

	switch mode {
	case ModeSource:
		text, err := e.serializeTree()
		if err != nil {
			return e.fail(KindModeSwitchError, err, true)
		}
		e.source = text
	case ModeTree:
		root, err := e.handler().Parse(e.source)
		if err != nil {
			return e.fail(KindModeSwitchError, err, true)
		}
		e.model.SetRoot(root)
	}

	e.mode = mode
	e.emitter.Emit(TopicModeChange, change)
	return nil
}

// Source returns the raw text representation while in source mode.
func (e *Editor) Source() string { return e.source }

// EditSourceValue sets one value at a dotted path directly in the source
// text, keeping the rest of the document's formatting byte for byte.
// Source mode and JSON only; other formats replace text through
// SetSource. Validators registered for the path still apply.
func (e *Editor) EditSourceValue(path string, value any) error {
	if e.destroyed {
		return ErrDestroyed
	}
	if e.mode != ModeSource {
		return e.fail(KindEditError, fmt.Errorf("editor: EditSourceValue outside source mode"), true)
	}
	if !*e.opts.Editable {
		return e.fail(KindEditError, ErrNotEditable, true)
	}
	if e.formatName != "json" {
		return e.fail(KindEditError, fmt.Errorf("editor: source patching requires json, document is %s", e.formatName), true)
	}
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
	out, err := format.PatchJSONValue(e.source, path, value)
	if err != nil {
		return e.fail(KindEditError, err, true)
	}
	e.source = out
	e.emitter.Emit(TopicNodeEdit, NodeEdit{Path: path, NewValue: value})
	e.contentChanged(PendingChange{Op: "edit", Path: path})
	return nil
}

// SetSource replaces the raw text while in source mode. The text is not
// parsed until the next switch back to tree mode.
func (e *Editor) SetSource(text string) error {
	if e.destroyed {
		return ErrDestroyed
	}
	if e.mode != ModeSource {
		return e.fail(KindEditError, fmt.Errorf("editor: SetSource outside source mode"), true)
	}
	if !*e.opts.Editable {
		return e.fail(KindEditError, ErrNotEditable, true)
	}
	e.source = text
	e.contentChanged()
	return nil
}
