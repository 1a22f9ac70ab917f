package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillPolly/treekit/pkg/node"
)

func sampleTree(t *testing.T) *node.Node {
	t.Helper()
	root := node.New(node.Object, "root")
	a := node.New(node.Object, "a")
	require.NoError(t, a.Attach(root, -1))
	b := node.New(node.Object, "b")
	require.NoError(t, b.Attach(a, -1))
	leaf := node.NewValue("v", int64(1))
	require.NoError(t, leaf.Attach(b, -1))
	c := node.New(node.Array, "c")
	require.NoError(t, c.Attach(root, -1))
	return root
}

func TestLazyDefault(t *testing.T) {
	for _, def := range []bool{true, false} {
		s := NewState(Options{DefaultExpanded: def})
		assert.Equal(t, def, s.IsExpanded("never.touched"), "default=%v", def)
	}
}

func TestExplicitOverridesDefault(t *testing.T) {
	s := NewState(Options{DefaultExpanded: true})
	s.Collapse("a")
	assert.False(t, s.IsExpanded("a"))
	assert.True(t, s.IsExpanded("b"), "untouched path keeps default")
}

func TestCascadingCollapse(t *testing.T) {
	s := NewState(Options{})
	s.Expand("a")
	s.Expand("a.b")
	s.Collapse("a")
	assert.False(t, s.IsExpanded("a"))
	assert.False(t, s.IsExpanded("a.b"))
}

func TestCollapseDoesNotTouchSiblings(t *testing.T) {
	s := NewState(Options{})
	s.Expand("a.b")
	s.Expand("a.bc")
	s.Collapse("a.b")
	assert.True(t, s.IsExpanded("a.bc"), "a.bc is not a descendant of a.b")
}

func TestToggle(t *testing.T) {
	s := NewState(Options{DefaultExpanded: false})
	assert.True(t, s.Toggle("x"))
	assert.False(t, s.Toggle("x"))
}

func TestEmptyPathAlwaysExpanded(t *testing.T) {
	s := NewState(Options{})
	assert.True(t, s.IsExpanded(""), "unnamed root carries no state")
	s.CollapseAll()
	assert.True(t, s.IsExpanded(""), "collapse-all cannot hide the root")
}

func TestCollapseAllOverride(t *testing.T) {
	s := NewState(Options{DefaultExpanded: true})
	s.CollapseAll()
	assert.False(t, s.IsExpanded("anything"), "override beats defaultExpanded")

	// Explicit expand reinstates lazy-default semantics for that subtree.
	s.Expand("a")
	assert.True(t, s.IsExpanded("a"))
	assert.True(t, s.IsExpanded("a.child"), "subtree back to lazy default")
	assert.False(t, s.IsExpanded("b"), "unrelated path still collapsed")
}

func TestExpandAll(t *testing.T) {
	root := sampleTree(t)
	s := NewState(Options{DefaultExpanded: false})
	s.ExpandAll(root, 0)
	assert.True(t, s.IsExpanded("root"))
	assert.True(t, s.IsExpanded("root.a"))
	assert.True(t, s.IsExpanded("root.a.b"))
	assert.True(t, s.IsExpanded("root.c"))
	// Leaves are not branch paths; they read the default.
	assert.False(t, s.IsExpanded("root.a.b.v"))
}

func TestExpandAllMaxDepth(t *testing.T) {
	root := sampleTree(t)
	s := NewState(Options{DefaultExpanded: false})
	s.ExpandAll(root, 1)
	assert.True(t, s.IsExpanded("root"))
	assert.True(t, s.IsExpanded("root.a"))
	assert.False(t, s.IsExpanded("root.a.b"), "depth 2 exceeds max 1")
}

func TestExpandToDepthIsReset(t *testing.T) {
	root := sampleTree(t)
	s := NewState(Options{DefaultExpanded: true})
	s.Expand("root.a.b")
	s.ExpandToDepth(root, 1)
	assert.True(t, s.IsExpanded("root"), "depth 0 < 1")
	assert.False(t, s.IsExpanded("root.a"), "depth 1 not < 1")
	assert.False(t, s.IsExpanded("root.a.b"), "prior expand wiped by reset")
}

func TestExpandPath(t *testing.T) {
	s := NewState(Options{DefaultExpanded: false})
	s.ExpandPath("root.a.b")
	assert.True(t, s.IsExpanded("root"))
	assert.True(t, s.IsExpanded("root.a"))
	assert.True(t, s.IsExpanded("root.a.b"))
}

func TestEmptyPathNoOp(t *testing.T) {
	s := NewState(Options{})
	var events int
	s.OnChange(func(Event) { events++ })
	s.Expand("")
	s.Collapse("")
	s.ExpandPath("")
	assert.Zero(t, events)
}

func TestEvents(t *testing.T) {
	s := NewState(Options{})
	var got []Event
	s.OnChange(func(ev Event) { got = append(got, ev) })
	s.Expand("a")
	s.Collapse("a")
	require.Len(t, got, 4)
	assert.Equal(t, EventExpand, got[0].Kind)
	assert.Equal(t, EventChange, got[1].Kind)
	assert.Equal(t, EventCollapse, got[2].Kind)
	assert.Equal(t, "a", got[2].Path)
}

func TestSaveRestore(t *testing.T) {
	s := NewState(Options{DefaultExpanded: true, MaxDepth: 3})
	s.Expand("a")
	s.Expand("a.b")
	s.Collapse("c")

	data := s.Save()
	assert.ElementsMatch(t, []string{"a", "a.b"}, data.ExpandedNodes)
	assert.True(t, data.DefaultExpanded)
	assert.Equal(t, 3, data.MaxDepth)

	other := NewState(Options{})
	other.Restore(data)
	assert.True(t, other.IsExpanded("a"))
	assert.True(t, other.IsExpanded("a.b"))
	assert.True(t, other.IsExpanded("untouched"), "restored default applies")
}

func TestPersistence(t *testing.T) {
	store := NewMemStore()
	s := NewState(Options{Store: store, Key: "doc"})
	s.Expand("a")

	restored := NewState(Options{Store: store, Key: "doc"})
	assert.True(t, restored.IsExpanded("a"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	missing, err := store.Load("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	want := StateData{ExpandedNodes: []string{"a", "a.b"}, DefaultExpanded: true, MaxDepth: 2}
	require.NoError(t, store.Save("doc/one", want))
	got, err := store.Load("doc/one")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}
