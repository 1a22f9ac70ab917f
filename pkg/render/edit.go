package render

import (
	"github.com/BillPolly/treekit/internal/coerce"
	"github.com/BillPolly/treekit/pkg/node"
)

// EditSession is one in-progress inline edit: the surface swaps the key
// or value region for a text entry seeded with the current display form,
// and resolves the session with Commit or Cancel. Losing focus counts as
// Commit.
//
// Sessions only emit intents; they never mutate the node. The orchestrator
// listens for EditEvent and applies the change through validation.
type EditSession struct {
	r        *Renderer
	node     *node.Node
	region   Region
	path     string
	original string
	text     string
	resolved bool
}

// BeginEdit starts an inline edit of one region, seeded with its current
// display text.
func (r *Renderer) BeginEdit(n *node.Node, region Region, path string) *EditSession {
	seed := n.Name
	if region == RegionValue {
		seed = coerce.ToText(n.Value)
	}
	r.sessionChanged(SessionStarted, region, path)
	return &EditSession{
		r:        r,
		node:     n,
		region:   region,
		path:     path,
		original: seed,
		text:     seed,
	}
}

// Text returns the current entry text.
func (s *EditSession) Text() string { return s.text }

// SetText replaces the entry text.
func (s *EditSession) SetText(text string) { s.text = text }

// Commit confirms the edit. A key commit emits only for a non-empty,
// changed name; a value commit coerces the text and emits when the
// coerced value differs. Either way the display form is restored.
func (s *EditSession) Commit() {
	if s.resolved {
		return
	}
	s.resolved = true
	defer s.r.sessionChanged(SessionCommitted, s.region, s.path)
	switch s.region {
	case RegionKey:
		if s.text == "" || s.text == s.original {
			return
		}
		s.emit(s.original, s.text)
	case RegionValue:
		newVal := coerce.FromText(s.text)
		if newVal == s.node.Value {
			return
		}
		s.emit(s.node.Value, newVal)
	}
}

// Blur resolves the session the same way Commit does.
func (s *EditSession) Blur() { s.Commit() }

// Cancel abandons the edit: no coercion, no change event, display
// restored to the original text.
func (s *EditSession) Cancel() {
	if s.resolved {
		return
	}
	s.resolved = true
	s.text = s.original
	s.r.sessionChanged(SessionCancelled, s.region, s.path)
}

func (s *EditSession) emit(oldVal, newVal any) {
	ev := EditEvent{
		Type:     s.region,
		Node:     s.node,
		OldValue: oldVal,
		NewValue: newVal,
		Path:     s.path,
	}
	for _, fn := range s.r.onEdit {
		fn(ev)
	}
}
