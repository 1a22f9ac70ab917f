package node

import (
	"github.com/google/uuid"
)

// PathSeparator is the default separator used to join path segments.
const PathSeparator = "."

// Type discriminates the node variants. The set is closed for the shipped
// handlers but extensible: any non-empty string is a valid Type, and the
// renderer dispatches unknown types to a fallback.
type Type string

const (
	// Object is a branch with named children (mapping, JSON object).
	Object Type = "object"
	// Array is a branch with positional children.
	Array Type = "array"
	// Value is a scalar leaf.
	Value Type = "value"
	// Property is a named leaf inside an object.
	Property Type = "property"
	// Element is a markup branch carrying attributes.
	Element Type = "element"
	// Heading is a document section title; its Children are the section body.
	Heading Type = "heading"
	// Content is a block of document text.
	Content Type = "content"
)

// IsBranch reports whether the type may carry children.
func (t Type) IsBranch() bool {
	switch t {
	case Object, Array, Element, Heading:
		return true
	}
	return false
}

// Node is one position in a hierarchy tree.
//
// Children exclusively owns its elements: a node is attached to at most one
// parent at a time, enforced by Attach/Detach. The parent pointer is
// unexported so it cannot be reassigned around the move discipline.
type Node struct {
	Type       Type
	Name       string
	Value      any
	Children   []*Node
	Attributes map[string]string
	Metadata   map[string]any

	parent *Node
	id     string
}

// New creates a detached node of the given type.
func New(t Type, name string) *Node {
	return &Node{Type: t, Name: name}
}

// NewValue creates a scalar leaf holding v.
func NewValue(name string, v any) *Node {
	return &Node{Type: Value, Name: name, Value: v}
}

// ID returns the node's stable identifier, synthesizing one on first use.
func (n *Node) ID() string {
	if n.id == "" {
		n.id = uuid.NewString()
	}
	return n.id
}

// Parent returns the owning node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Attach inserts n into parent.Children at index (clamped to the valid
// range; negative appends). It fails if n is already attached somewhere,
// or if the attachment would create a cycle.
func (n *Node) Attach(parent *Node, index int) error {
	if parent == nil {
		return ErrNilParent
	}
	if n.parent != nil {
		return ErrAlreadyAttached
	}
	for anc := parent; anc != nil; anc = anc.parent {
		if anc == n {
			return ErrCycle
		}
	}
	if index < 0 || index > len(parent.Children) {
		index = len(parent.Children)
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = n
	n.parent = parent
	return nil
}

// Detach removes n from its parent's Children, leaving n a free root.
// Detaching a root is a no-op.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// HasDescendant reports whether d sits anywhere below n.
func (n *Node) HasDescendant(d *Node) bool {
	for anc := d.parent; anc != nil; anc = anc.parent {
		if anc == n {
			return true
		}
	}
	return false
}

// Walk visits n and every descendant in document order. Returning false
// from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Clone deep-copies the subtree rooted at n. The copy is detached and gets
// fresh identities; attributes and metadata maps are copied one level deep.
func (n *Node) Clone() *Node {
	c := &Node{
		Type:  n.Type,
		Name:  n.Name,
		Value: n.Value,
	}
	if n.Attributes != nil {
		c.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			c.Attributes[k] = v
		}
	}
	if n.Metadata != nil {
		c.Metadata = make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			c.Metadata[k] = v
		}
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// SetAttribute sets one attribute, allocating the map on first use.
func (n *Node) SetAttribute(key, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[key] = value
}

// SetMeta sets one metadata entry, allocating the map on first use.
func (n *Node) SetMeta(key string, value any) {
	if n.Metadata == nil {
		n.Metadata = make(map[string]any)
	}
	n.Metadata[key] = value
}
