package editor

import (
	"fmt"
	"time"

	"github.com/BillPolly/treekit/internal/logger"
	"github.com/BillPolly/treekit/pkg/expand"
	"github.com/BillPolly/treekit/pkg/format"
	"github.com/BillPolly/treekit/pkg/node"
	"github.com/BillPolly/treekit/pkg/render"
)

// Editor is the orchestrator: it owns configuration and mode, delegates
// the live tree to its Model, coordinates format handlers, performs CRUD
// with validation, batches bulk operations, and funnels every failure
// through one error path.
//
// Instances are single-threaded and cooperative: every mutation runs to
// completion before the next is accepted. Nothing is shared between
// instances.
type Editor struct {
	opts     Options
	registry *format.Registry
	model    node.Model
	state    *expand.State
	renderer *render.Renderer
	emitter  *Emitter

	mode       Mode
	formatName string
	source     string
	selection  string

	history []ErrorRecord
	plugins []Plugin

	batching   bool
	pending    []PendingChange
	opInFlight bool

	readyTimer *time.Timer
	destroyed  bool
}

// New constructs an editor. Construction-time failures other than bad
// options leave a minimally-initialized instance behind the error.
func New(opts Options) (*Editor, error) {
	opts.applyDefaults()

	registry := format.DefaultRegistry()
	for _, h := range opts.ExtraHandlers {
		registry.Register(h, 50)
	}
	if err := opts.validate(registry); err != nil {
		return nil, err
	}

	sep := node.PathSeparator
	e := &Editor{
		opts:       opts,
		registry:   registry,
		model:      node.NewTreeModel(sep),
		emitter:    NewEmitter("editor"),
		mode:       opts.DefaultMode,
		formatName: opts.Format,
	}
	e.state = expand.NewState(expand.Options{
		DefaultExpanded:  opts.DefaultExpanded,
		Separator:        sep,
		Store:            opts.ExpandStore,
		Key:              opts.ExpandKey,
		DebounceInterval: opts.ExpandDebounce,
	})
	e.renderer = render.New(e.state, sep)

	// Expansion changes re-emit on the editor's own contract.
	e.state.OnChange(func(ev expand.Event) {
		switch ev.Kind {
		case expand.EventExpand:
			e.emitter.Emit(TopicExpand, ev.Path)
		case expand.EventCollapse:
			e.emitter.Emit(TopicCollapse, ev.Path)
		}
	})
	// Inline edit sessions re-emit on the editor's contract.
	e.renderer.OnSessionChange(func(ev render.SessionEvent) {
		topic := map[render.SessionPhase]Topic{
			render.SessionStarted:   TopicEditStart,
			render.SessionCommitted: TopicEditEnd,
			render.SessionCancelled: TopicEditCancel,
		}[ev.Phase]
		e.emitter.Emit(topic, EditSessionChange{Region: ev.Region, Path: ev.Path})
	})
	// Renderer edit intents commit through validation.
	e.renderer.OnEdit(func(ev render.EditEvent) {
		switch ev.Type {
		case render.RegionValue:
			if err := e.EditNode(ev.Path, ev.NewValue); err != nil {
				logger.Warn("editor: inline value edit rejected", "path", ev.Path, "err", err)
			}
		case render.RegionKey:
			if err := e.RenameNode(ev.Path, fmt.Sprintf("%v", ev.NewValue)); err != nil {
				logger.Warn("editor: inline key edit rejected", "path", ev.Path, "err", err)
			}
		}
	})

	e.emitter.MarkSticky(TopicReady)
	e.emitter.MarkSticky(TopicRenderComplete)

	e.initPlugins()
	e.emitter.Emit(TopicMount, nil)

	// Readiness is deferred so listeners attached right after New still
	// observe it.
	e.readyTimer = time.AfterFunc(0, func() {
		e.emitter.Emit(TopicReady, nil)
		e.emitter.Emit(TopicRenderComplete, nil)
	})
	return e, nil
}

// On registers an event handler.
func (e *Editor) On(topic Topic, fn func(Event)) Subscription {
	return e.emitter.On(topic, fn)
}

// Off removes an event handler.
func (e *Editor) Off(topic Topic, sub Subscription) { e.emitter.Off(topic, sub) }

// Model returns the hierarchy model the editor delegates to.
func (e *Editor) Model() node.Model { return e.model }

// Expansion returns the expansion state manager.
func (e *Editor) Expansion() *expand.State { return e.state }

// Renderer returns the hierarchy renderer.
func (e *Editor) Renderer() *render.Renderer { return e.renderer }

// Format returns the current format name.
func (e *Editor) Format() string { return e.formatName }

// EditSessionChange is the editstart/editend/editcancel payload.
type EditSessionChange struct {
	Region render.Region
	Path   string
}

// Navigation is the navigate payload.
type Navigation struct {
	From string
	To   string
}

// Select records the surface's current node, emitting navigate for the
// movement and select for the new position. Re-selecting the current
// node is a no-op.
func (e *Editor) Select(path string) {
	if e.destroyed || path == e.selection {
		return
	}
	from := e.selection
	e.selection = path
	e.emitter.Emit(TopicNavigate, Navigation{From: from, To: path})
	e.emitter.Emit(TopicSelect, path)
}

// Selection returns the last selected path.
func (e *Editor) Selection() string { return e.selection }

// Shortcut resolves a configured key chord by action name.
func (e *Editor) Shortcut(action string) string { return e.opts.Shortcuts[action] }

func (e *Editor) handler() format.Handler {
	h, err := e.registry.Get(e.formatName)
	if err != nil {
		// Construction validated the primary format; only a bad
		// ConvertTo target could get here, and that is checked too.
		panic(err)
	}
	return h
}

func (e *Editor) serializeTree() (string, error) {
	root := e.model.Root()
	if root == nil {
		return "", fmt.Errorf("%w", format.ErrNilRoot)
	}
	return e.handler().Serialize(root, e.opts.Indent())
}

// Content returns the current document text: the serialized tree in tree
// mode, the raw text in source mode.
func (e *Editor) Content() (string, error) {
	if e.destroyed {
		return "", ErrDestroyed
	}
	if e.mode == ModeSource {
		return e.source, nil
	}
	text, err := e.serializeTree()
	if err != nil {
		return "", e.fail(KindSerializationError, err, true)
	}
	return text, nil
}

// SetContent replaces the document with text in the current format. On a
// parse failure the prior content stays live.
func (e *Editor) SetContent(text string) error {
	return e.LoadContent(text, e.formatName)
}

// LoadContent replaces the document, parsing with the named handler, or
// with the detected format when name is empty. The node tree is wholly
// replaced; expansion state survives.
func (e *Editor) LoadContent(text, formatName string) error {
	if e.destroyed {
		return ErrDestroyed
	}
	if formatName == "" {
		det := e.DetectFormat(text)
		formatName = det.Format
	}
	h, err := e.registry.Get(formatName)
	if err != nil {
		return e.fail(KindImportError, err, true)
	}
	root, err := h.Parse(text)
	if err != nil {
		return e.fail(KindParseError, err, true)
	}
	e.formatName = formatName
	e.model.SetRoot(root)
	e.source = text
	e.renderer.ClearCache()
	e.contentChanged()
	return nil
}

// DetectFormat runs every registered detector in priority order. On no
// match the configured primary format is returned with zero confidence.
func (e *Editor) DetectFormat(text string) format.Detection {
	det, ok := e.registry.Detect(text)
	if !ok {
		det = format.Detection{Format: e.opts.Format, Confidence: 0}
	}
	e.emitter.Emit(TopicFormatDetected, det)
	return det
}

// ConvertTo reserializes the document in another format and reloads it.
func (e *Editor) ConvertTo(formatName string) error {
	if e.destroyed {
		return ErrDestroyed
	}
	target, err := e.registry.Get(formatName)
	if err != nil {
		return e.fail(KindConversionError, err, true)
	}
	root := e.model.Root()
	if root == nil {
		return e.fail(KindConversionError, format.ErrNilRoot, true)
	}
	text, err := target.Serialize(root, e.opts.Indent())
	if err != nil {
		return e.fail(KindConversionError, err, true)
	}
	from := e.formatName
	if err := e.LoadContent(text, formatName); err != nil {
		return e.fail(KindConversionError, err, true)
	}
	e.emitter.Emit(TopicFormatChange, struct{ From, To string }{from, formatName})
	return nil
}

// Render produces the current visual-element tree and emits
// rendercomplete.
func (e *Editor) Render() (*render.Element, error) {
	if e.destroyed {
		return nil, ErrDestroyed
	}
	el := e.renderer.Render(e.model.Root(), render.Options{
		Editable: func(n *node.Node, region render.Region) bool {
			if !*e.opts.Editable {
				return false
			}
			if e.opts.RealtimeValidation && region == render.RegionValue {
				e.validatePath(n.Path(node.PathSeparator), n.Value)
			}
			return true
		},
	})
	e.emitter.Emit(TopicRenderComplete, nil)
	return el, nil
}

// validatePath runs the registered validator for a path, emitting
// validation or validationerror. Used by realtime validation sweeps.
func (e *Editor) validatePath(path string, value any) bool {
	v, ok := e.opts.Validators[path]
	if !ok {
		return true
	}
	if err := v(path, value); err != nil {
		e.emitter.Emit(TopicValidationError, ValidationFailure{Path: path, Value: value, Err: err})
		return false
	}
	e.emitter.Emit(TopicValidation, path)
	return true
}

// Destroy tears the instance down: plugins in reverse order, pending
// timers cancelled, expansion state flushed.
func (e *Editor) Destroy() {
	if e.destroyed {
		return
	}
	if e.readyTimer != nil {
		e.readyTimer.Stop()
	}
	e.destroyPlugins()
	e.state.Flush()
	e.destroyed = true
}
