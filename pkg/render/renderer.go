package render

import (
	"fmt"
	"strings"

	"github.com/BillPolly/treekit/internal/coerce"
	"github.com/BillPolly/treekit/pkg/expand"
	"github.com/BillPolly/treekit/pkg/node"
)

// Options carries per-call render context.
type Options struct {
	Depth      int
	ParentPath string

	// Editable is the format-handler hook reporting whether a node's key
	// or value region accepts edits. Nil means everything is editable.
	Editable func(n *node.Node, region Region) bool
}

// Region names an editable part of a row.
type Region string

const (
	// RegionKey is the node's name.
	RegionKey Region = "key"
	// RegionValue is the node's scalar payload.
	RegionValue Region = "value"
)

// EditEvent reports one confirmed key or value edit.
type EditEvent struct {
	Type     Region
	Node     *node.Node
	OldValue any
	NewValue any
	Path     string
}

// ExpansionChanged reports one expand-control activation, so the owning
// layer can re-render only the affected subtree.
type ExpansionChanged struct {
	Path     string
	Expanded bool
}

// SessionPhase is a stage in an inline edit session's lifetime.
type SessionPhase string

const (
	SessionStarted   SessionPhase = "started"
	SessionCommitted SessionPhase = "committed"
	SessionCancelled SessionPhase = "cancelled"
)

// SessionEvent reports an edit session transition. Committed fires on
// every resolution, including no-op commits; a separate EditEvent carries
// the actual change when there is one.
type SessionEvent struct {
	Phase  SessionPhase
	Region Region
	Path   string
}

// renderFunc produces the element for one node type.
type renderFunc func(r *Renderer, n *node.Node, opts Options) *Element

// Renderer produces visual elements from nodes and expansion state.
type Renderer struct {
	state  *expand.State
	sep    string
	styles Styles

	types map[node.Type]renderFunc

	cache map[*node.Node]*Element

	onEdit      []func(EditEvent)
	onExpansion []func(ExpansionChanged)
	onSession   []func(SessionEvent)
}

// New creates a renderer bound to an expansion state.
func New(state *expand.State, sep string) *Renderer {
	if sep == "" {
		sep = node.PathSeparator
	}
	r := &Renderer{
		state:  state,
		sep:    sep,
		styles: DefaultStyles(),
		types:  make(map[node.Type]renderFunc),
		cache:  make(map[*node.Node]*Element),
	}
	r.types[node.Object] = renderBranch
	r.types[node.Array] = renderBranch
	r.types[node.Element] = renderBranch
	r.types[node.Heading] = renderBranch
	r.types[node.Value] = renderLeaf
	r.types[node.Property] = renderLeaf
	r.types[node.Content] = renderLeaf
	return r
}

// SetStyles replaces the palette.
func (r *Renderer) SetStyles(s Styles) { r.styles = s }

// RegisterType installs a renderer for a custom node type.
func (r *Renderer) RegisterType(t node.Type, fn func(*Renderer, *node.Node, Options) *Element) {
	r.types[t] = fn
}

// OnEdit registers a listener for confirmed edits.
func (r *Renderer) OnEdit(fn func(EditEvent)) {
	r.onEdit = append(r.onEdit, fn)
}

// OnExpansionChanged registers a listener for expand-control activations.
func (r *Renderer) OnExpansionChanged(fn func(ExpansionChanged)) {
	r.onExpansion = append(r.onExpansion, fn)
}

// OnSessionChange registers a listener for edit-session transitions.
func (r *Renderer) OnSessionChange(fn func(SessionEvent)) {
	r.onSession = append(r.onSession, fn)
}

func (r *Renderer) sessionChanged(phase SessionPhase, region Region, path string) {
	for _, fn := range r.onSession {
		fn(SessionEvent{Phase: phase, Region: region, Path: path})
	}
}

// Render produces the element tree for one visible node. A nil node
// yields the "no data" placeholder.
func (r *Renderer) Render(n *node.Node, opts Options) *Element {
	if n == nil {
		return &Element{Kind: KindPlaceholder, Depth: opts.Depth, Summary: "no data"}
	}
	if cached, ok := r.cache[n]; ok {
		return cached
	}
	fn, ok := r.types[n.Type]
	if !ok {
		fn = renderFallback
	}
	el := fn(r, n, opts)
	r.cache[n] = el
	return el
}

// ClearCache drops every cached element. Invalidation is wholesale; call
// it after any mutation or expansion change.
func (r *Renderer) ClearCache() {
	r.cache = make(map[*node.Node]*Element)
}

// Toggle flips expansion for a path, routing through the state manager
// and notifying expansion listeners.
func (r *Renderer) Toggle(path string) bool {
	expanded := r.state.Toggle(path)
	r.ClearCache()
	ev := ExpansionChanged{Path: path, Expanded: expanded}
	for _, fn := range r.onExpansion {
		fn(ev)
	}
	return expanded
}

func (r *Renderer) pathOf(n *node.Node, opts Options) string {
	seg := n.Name
	if seg == "" && n.Parent() != nil {
		seg = n.ID()
	}
	if opts.ParentPath == "" {
		return seg
	}
	if seg == "" {
		return opts.ParentPath
	}
	return opts.ParentPath + r.sep + seg
}

func (r *Renderer) editable(n *node.Node, region Region, opts Options) bool {
	if opts.Editable == nil {
		return true
	}
	return opts.Editable(n, region)
}

// renderBranch handles the container types: expand control, collapsed
// summary, recursion into children when expanded.
func renderBranch(r *Renderer, n *node.Node, opts Options) *Element {
	path := r.pathOf(n, opts)
	el := &Element{
		Kind:        KindNode,
		Path:        path,
		Depth:       opts.Depth,
		NodeType:    n.Type,
		Key:         n.Name,
		KeyEditable: n.Name != "" && r.editable(n, RegionKey, opts),
	}
	if len(n.Children) == 0 {
		el.ValueText = emptyMarker(n.Type)
		return el
	}
	el.Expandable = true
	el.Expanded = r.state.IsExpanded(path)
	if !el.Expanded {
		el.Summary = Summarize(n)
		return el
	}
	childOpts := Options{Depth: opts.Depth + 1, ParentPath: path, Editable: opts.Editable}
	for _, c := range n.Children {
		el.Children = append(el.Children, r.Render(c, childOpts))
	}
	return el
}

// renderLeaf handles scalar rows with an editable value region.
func renderLeaf(r *Renderer, n *node.Node, opts Options) *Element {
	path := r.pathOf(n, opts)
	return &Element{
		Kind:          KindNode,
		Path:          path,
		Depth:         opts.Depth,
		NodeType:      n.Type,
		Key:           n.Name,
		ValueText:     coerce.ToText(n.Value),
		KeyEditable:   n.Name != "" && r.editable(n, RegionKey, opts),
		ValueEditable: r.editable(n, RegionValue, opts),
	}
}

// renderFallback keeps malformed or unknown types from failing the pass:
// a neutral row with empty-container markers.
func renderFallback(r *Renderer, n *node.Node, opts Options) *Element {
	el := &Element{
		Kind:     KindNode,
		Path:     r.pathOf(n, opts),
		Depth:    opts.Depth,
		NodeType: n.Type,
		Key:      n.Name,
	}
	if len(n.Children) > 0 {
		el.ValueText = "{}"
	} else {
		el.ValueText = "[]"
	}
	return el
}

func emptyMarker(t node.Type) string {
	if t == node.Array {
		return "[]"
	}
	return "{}"
}

// Summarize builds the collapsed one-liner: a pluralized count with a
// type-appropriate noun.
func Summarize(n *node.Node) string {
	count := len(n.Children)
	var singular, plural string
	switch n.Type {
	case node.Object:
		singular, plural = "property", "properties"
	case node.Array:
		singular, plural = "item", "items"
	case node.Element:
		singular, plural = "child", "children"
	default:
		singular, plural = "node", "nodes"
	}
	if count == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// Line renders one element's row as styled text. Children are not
// included; surfaces walk the element tree themselves.
func (r *Renderer) Line(el *Element) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(indentUnit, el.Depth))
	switch {
	case el.Kind == KindPlaceholder:
		sb.WriteString(r.styles.Missing.Render(el.Summary))
		return sb.String()
	case el.Expandable && el.Expanded:
		sb.WriteString(r.styles.Toggle.Render(expandedIcon) + " ")
	case el.Expandable:
		sb.WriteString(r.styles.Toggle.Render(collapsedIcon) + " ")
	default:
		sb.WriteString(spacer + " ")
	}
	if el.Key != "" {
		sb.WriteString(r.styles.Key.Render(el.Key))
		sb.WriteString(": ")
	}
	switch {
	case el.Summary != "":
		sb.WriteString(r.styles.Summary.Render(el.Summary))
	case el.ValueText != "":
		sb.WriteString(r.styles.Value.Render(el.ValueText))
	}
	return sb.String()
}

// Flatten walks an element tree into the visible row list, in document
// order.
func Flatten(el *Element) []*Element {
	if el == nil {
		return nil
	}
	rows := []*Element{el}
	for _, c := range el.Children {
		rows = append(rows, Flatten(c)...)
	}
	return rows
}
