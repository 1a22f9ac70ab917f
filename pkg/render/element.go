package render

import "github.com/BillPolly/treekit/pkg/node"

// Kind classifies a visual element.
type Kind string

const (
	// KindNode is a regular tree row.
	KindNode Kind = "node"
	// KindSummary is the one-line collapsed stand-in for children.
	KindSummary Kind = "summary"
	// KindPlaceholder is the "no data" row for a missing root.
	KindPlaceholder Kind = "placeholder"
)

// Element describes one visible node. It carries everything a Render
// Surface needs to draw the row and wire up interaction, and nothing
// about how to draw it.
type Element struct {
	Kind     Kind
	Path     string
	Depth    int
	NodeType node.Type

	// Expandable is true when the node has children and gets an expand
	// control; otherwise the surface renders a fixed-width spacer.
	Expandable bool
	Expanded   bool

	// Key and ValueText are the display forms of the editable regions.
	Key       string
	ValueText string
	// Summary replaces children when collapsed ("3 properties").
	Summary string

	KeyEditable   bool
	ValueEditable bool

	Children []*Element
}
