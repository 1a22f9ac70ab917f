package format

import (
	"fmt"
	"sort"

	"github.com/BillPolly/treekit/pkg/node"
)

// Handler parses and serializes one text syntax.
type Handler interface {
	// Name is the format identifier ("json", "yaml", "xml", "markdown").
	Name() string

	// Detect reports whether text plausibly belongs to this syntax.
	Detect(text string) bool

	// Confidence scores the detection in [0,1]. Only meaningful when
	// Detect returned true.
	Confidence(text string) float64

	// Parse converts text into a node tree.
	Parse(text string) (*node.Node, error)

	// Serialize renders a node tree back to text using the given indent
	// unit.
	Serialize(root *node.Node, indent string) (string, error)
}

// Detection is one registry detection result.
type Detection struct {
	Format     string
	Confidence float64
}

type registered struct {
	handler  Handler
	priority int
	order    int
}

// Registry holds handlers in priority order for format detection.
type Registry struct {
	handlers map[string]registered
	nextSeq  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]registered)}
}

// DefaultRegistry returns a registry with the shipped handlers installed.
// JSON gets the highest priority: its detector is the strictest.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(JSON(), 40)
	r.Register(XML(), 30)
	r.Register(YAML(), 20)
	r.Register(Markdown(), 10)
	return r
}

// Register adds or replaces a handler. Higher priority is tried first;
// ties break in registration order.
func (r *Registry) Register(h Handler, priority int) {
	r.handlers[h.Name()] = registered{handler: h, priority: priority, order: r.nextSeq}
	r.nextSeq++
}

// Get returns the handler for a format name.
func (r *Registry) Get(name string) (Handler, error) {
	reg, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return reg.handler, nil
}

// Names returns the registered format names in priority order.
func (r *Registry) Names() []string {
	ordered := r.ordered()
	names := make([]string, len(ordered))
	for i, reg := range ordered {
		names[i] = reg.handler.Name()
	}
	return names
}

// Detect normalizes text and tries each handler's detector in priority
// order, returning the first match with its confidence. ok is false when
// nothing matched.
func (r *Registry) Detect(text string) (Detection, bool) {
	text = Normalize(text)
	for _, reg := range r.ordered() {
		if reg.handler.Detect(text) {
			return Detection{
				Format:     reg.handler.Name(),
				Confidence: reg.handler.Confidence(text),
			}, true
		}
	}
	return Detection{}, false
}

func (r *Registry) ordered() []registered {
	out := make([]registered, 0, len(r.handlers))
	for _, reg := range r.handlers {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		return out[i].order < out[j].order
	})
	return out
}
