package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/BillPolly/treekit/pkg/expand"
	"github.com/BillPolly/treekit/pkg/format"
)

// Validator checks a proposed value for one path before it is committed.
type Validator func(path string, value any) error

// Options configures an editor at construction. Format, DefaultMode, and
// the indent fields get defaults when zero; the rest is opt-in.
type Options struct {
	// Format is the primary format, used when detection finds no match.
	// Default "json".
	Format string

	// Editable gates all mutation. Construction defaults it to true;
	// use Patch to flip it later.
	Editable *bool

	// DefaultMode is the initial mode. Default ModeTree.
	DefaultMode Mode

	// Theme names the style palette handed to the renderer.
	Theme string

	// IndentSize and IndentChar build the serialization indent unit.
	// Defaults: 2 spaces.
	IndentSize int
	IndentChar string

	// Validators maps node paths to value validators.
	Validators map[string]Validator

	// RequiredPaths cannot be deleted.
	RequiredPaths []string

	// Plugins run Init during construction; failures are contained.
	Plugins []Plugin

	// Shortcuts maps action names to key chords, passed through to the
	// surface.
	Shortcuts map[string]string

	// ExtraHandlers are additional format handlers (export adapters and
	// import parsers) registered beside the shipped ones.
	ExtraHandlers []format.Handler

	// SlowOperationThreshold triggers the slowoperation signal when a
	// bulk operation runs longer. Zero disables the check.
	SlowOperationThreshold time.Duration

	// TrackErrors enables the append-only error history.
	TrackErrors bool

	// RealtimeValidation runs validators on every render pass, not just
	// on commit.
	RealtimeValidation bool

	// OnError is offered every error record first; returning true marks
	// it handled and suppresses the generic error signal.
	OnError func(*ErrorRecord) bool

	// DefaultExpanded, ExpandStore, and ExpandKey configure the
	// expansion state manager.
	DefaultExpanded bool
	ExpandStore     expand.Store
	ExpandKey       string
	ExpandDebounce  time.Duration
}

func (o *Options) applyDefaults() {
	if o.Format == "" {
		o.Format = "json"
	}
	if o.Editable == nil {
		t := true
		o.Editable = &t
	}
	if o.DefaultMode == "" {
		o.DefaultMode = ModeTree
	}
	if o.IndentSize <= 0 {
		o.IndentSize = 2
	}
	if o.IndentChar == "" {
		o.IndentChar = " "
	}
}

func (o *Options) validate(reg *format.Registry) error {
	if o.DefaultMode != ModeTree && o.DefaultMode != ModeSource {
		return fmt.Errorf("%w: %q", ErrInvalidMode, o.DefaultMode)
	}
	if _, err := reg.Get(o.Format); err != nil {
		return err
	}
	if o.IndentSize > 16 {
		return fmt.Errorf("editor: indent size %d out of range", o.IndentSize)
	}
	return nil
}

// Indent returns the serialization indent unit.
func (o *Options) Indent() string {
	return strings.Repeat(o.IndentChar, o.IndentSize)
}

// Patch is the subset of options that may change after construction.
// Nil fields are left as they are.
type Patch struct {
	Editable               *bool
	Theme                  *string
	IndentSize             *int
	IndentChar             *string
	SlowOperationThreshold *time.Duration
	RealtimeValidation     *bool
}

// Patch applies a config patch and re-validates.
func (e *Editor) Patch(p Patch) error {
	next := e.opts
	if p.Editable != nil {
		next.Editable = p.Editable
	}
	if p.Theme != nil {
		next.Theme = *p.Theme
	}
	if p.IndentSize != nil {
		next.IndentSize = *p.IndentSize
	}
	if p.IndentChar != nil {
		next.IndentChar = *p.IndentChar
	}
	if p.SlowOperationThreshold != nil {
		next.SlowOperationThreshold = *p.SlowOperationThreshold
	}
	if p.RealtimeValidation != nil {
		next.RealtimeValidation = *p.RealtimeValidation
	}
	next.applyDefaults()
	if err := next.validate(e.registry); err != nil {
		return err
	}
	e.opts = next
	return nil
}
