package editor

import (
	"errors"
	"time"
)

var (
	// ErrDestroyed indicates use of an editor after Destroy.
	ErrDestroyed = errors.New("editor: instance destroyed")

	// ErrNodeNotFound indicates no node matched the path or id.
	ErrNodeNotFound = errors.New("editor: node not found")

	// ErrProtectedPath indicates a delete on a configured required path.
	ErrProtectedPath = errors.New("editor: path is required and cannot be deleted")

	// ErrCyclicMove indicates a move of a node into its own subtree.
	ErrCyclicMove = errors.New("editor: cannot move a node into its own descendant")

	// ErrNotEditable indicates a mutation on a read-only editor.
	ErrNotEditable = errors.New("editor: not editable")

	// ErrOperationInFlight indicates an overlapping SetMode or
	// BulkOperation on one instance.
	ErrOperationInFlight = errors.New("editor: another operation is in flight")

	// ErrValidation indicates a per-path validator rejected a value.
	ErrValidation = errors.New("editor: validation failed")

	// ErrInvalidMode indicates an unknown mode name.
	ErrInvalidMode = errors.New("editor: invalid mode")
)

// ErrorKind is the error taxonomy bucket a failure belongs to.
type ErrorKind string

const (
	KindParseError         ErrorKind = "parse-error"
	KindSerializationError ErrorKind = "serialization-error"
	KindRenderError        ErrorKind = "render-error"
	KindValidationError    ErrorKind = "validation-error"
	KindEditError          ErrorKind = "edit-error"
	KindOperationError     ErrorKind = "operation-error"
	KindModeSwitchError    ErrorKind = "mode-switch-error"
	KindConversionError    ErrorKind = "conversion-error"
	KindImportError        ErrorKind = "import-error"
	KindPluginError        ErrorKind = "plugin-error"
)

// ErrorContext is the instance snapshot captured with every record.
type ErrorContext struct {
	Mode      Mode
	NodeCount int
}

// ErrorRecord is one wrapped internal failure.
type ErrorRecord struct {
	Kind        ErrorKind
	Message     string
	Context     ErrorContext
	Timestamp   time.Time
	Recoverable bool
}

// fail funnels one failure through the single error path: wrap as a
// record, append to history when tracking, offer to the user handler,
// and emit the generic error signal unless the handler claimed it.
// The original error is returned for the caller to propagate.
func (e *Editor) fail(kind ErrorKind, err error, recoverable bool) error {
	rec := ErrorRecord{
		Kind:    kind,
		Message: err.Error(),
		Context: ErrorContext{
			Mode:      e.mode,
			NodeCount: e.model.Count(),
		},
		Timestamp:   time.Now(),
		Recoverable: recoverable,
	}
	if e.opts.TrackErrors {
		e.history = append(e.history, rec)
	}
	if e.opts.OnError != nil && e.opts.OnError(&rec) {
		// The handler claimed the failure; a recoverable one counts as
		// recovered from.
		if rec.Recoverable {
			e.emitter.Emit(TopicRecovery, rec)
		}
		return err
	}
	e.emitter.Emit(TopicError, rec)
	return err
}

// Errors returns the append-only error history. Empty unless TrackErrors
// is set.
func (e *Editor) Errors() []ErrorRecord { return e.history }

// ClearErrors empties the history; records are otherwise kept for the
// instance's lifetime.
func (e *Editor) ClearErrors() { e.history = nil }
