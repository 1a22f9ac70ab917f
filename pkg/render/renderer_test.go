package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillPolly/treekit/pkg/expand"
	"github.com/BillPolly/treekit/pkg/format"
	"github.com/BillPolly/treekit/pkg/node"
)

func parseJSON(t *testing.T, text string) *node.Node {
	t.Helper()
	root, err := format.JSON().Parse(text)
	require.NoError(t, err)
	return root
}

func TestRenderNilRoot(t *testing.T) {
	r := New(expand.NewState(expand.Options{}), ".")
	el := r.Render(nil, Options{})
	assert.Equal(t, KindPlaceholder, el.Kind)
	assert.Equal(t, "no data", el.Summary)
}

func TestRenderCollapsedSummary(t *testing.T) {
	root := parseJSON(t, `{"a": {"b": 1}}`)
	state := expand.NewState(expand.Options{DefaultExpanded: true})
	r := New(state, ".")

	state.Collapse("a")
	el := r.Render(root, Options{})
	rows := Flatten(el)
	// root row + "a" row; b hidden behind the collapsed "a".
	require.Len(t, rows, 2)
	a := rows[1]
	assert.Equal(t, "a", a.Path)
	assert.True(t, a.Expandable)
	assert.False(t, a.Expanded)
	assert.Equal(t, "1 property", a.Summary)
	assert.Empty(t, a.Children)
}

func TestRenderExpandedShowsEditableValue(t *testing.T) {
	root := parseJSON(t, `{"a": {"b": 1}}`)
	state := expand.NewState(expand.Options{DefaultExpanded: true})
	r := New(state, ".")

	rows := Flatten(r.Render(root, Options{}))
	require.Len(t, rows, 3)
	b := rows[2]
	assert.Equal(t, "a.b", b.Path)
	assert.Equal(t, "1", b.ValueText)
	assert.True(t, b.ValueEditable)
	assert.Equal(t, 2, b.Depth)
}

func TestExpandControlOnlyForParents(t *testing.T) {
	root := parseJSON(t, `{"a": {"b": 1}, "leaf": 2, "empty": {}}`)
	state := expand.NewState(expand.Options{DefaultExpanded: true})
	r := New(state, ".")
	rows := Flatten(r.Render(root, Options{}))

	byPath := map[string]*Element{}
	for _, row := range rows {
		byPath[row.Path] = row
	}
	assert.True(t, byPath["a"].Expandable)
	assert.False(t, byPath["leaf"].Expandable)
	assert.False(t, byPath["empty"].Expandable, "empty containers get a spacer")
	assert.Equal(t, "{}", byPath["empty"].ValueText)
}

func TestSummaryNouns(t *testing.T) {
	cases := []struct {
		t    node.Type
		n    int
		want string
	}{
		{node.Object, 1, "1 property"},
		{node.Object, 3, "3 properties"},
		{node.Array, 1, "1 item"},
		{node.Array, 2, "2 items"},
		{node.Element, 1, "1 child"},
		{node.Element, 4, "4 children"},
		{node.Type("custom"), 2, "2 nodes"},
	}
	for _, c := range cases {
		n := node.New(c.t, "x")
		for i := 0; i < c.n; i++ {
			node.NewValue("", i).Attach(n, -1)
		}
		assert.Equal(t, c.want, Summarize(n))
	}
}

func TestUnknownTypeFallback(t *testing.T) {
	state := expand.NewState(expand.Options{})
	r := New(state, ".")
	weird := node.New(node.Type("mystery"), "m")
	el := r.Render(weird, Options{})
	assert.Equal(t, KindNode, el.Kind)
	assert.Equal(t, "[]", el.ValueText)
}

func TestRegisterCustomType(t *testing.T) {
	state := expand.NewState(expand.Options{})
	r := New(state, ".")
	r.RegisterType(node.Type("badge"), func(_ *Renderer, n *node.Node, opts Options) *Element {
		return &Element{Kind: KindNode, Key: n.Name, ValueText: "★", Depth: opts.Depth}
	})
	el := r.Render(node.New(node.Type("badge"), "b"), Options{})
	assert.Equal(t, "★", el.ValueText)
}

func TestCacheByIdentity(t *testing.T) {
	root := parseJSON(t, `{"a": 1}`)
	state := expand.NewState(expand.Options{DefaultExpanded: true})
	r := New(state, ".")

	first := r.Render(root, Options{})
	again := r.Render(root, Options{})
	assert.Same(t, first, again, "unmodified subtree comes from cache")

	r.ClearCache()
	fresh := r.Render(root, Options{})
	assert.NotSame(t, first, fresh)
}

func TestToggleRoutesToStateAndNotifies(t *testing.T) {
	state := expand.NewState(expand.Options{DefaultExpanded: true})
	r := New(state, ".")
	var got []ExpansionChanged
	r.OnExpansionChanged(func(ev ExpansionChanged) { got = append(got, ev) })

	expanded := r.Toggle("a")
	assert.False(t, expanded)
	assert.False(t, state.IsExpanded("a"))
	require.Len(t, got, 1)
	assert.Equal(t, ExpansionChanged{Path: "a", Expanded: false}, got[0])
}

func TestEditableHook(t *testing.T) {
	root := parseJSON(t, `{"a": 1}`)
	state := expand.NewState(expand.Options{DefaultExpanded: true})
	r := New(state, ".")
	rows := Flatten(r.Render(root, Options{
		Editable: func(n *node.Node, region Region) bool { return region == RegionKey },
	}))
	a := rows[1]
	assert.True(t, a.KeyEditable)
	assert.False(t, a.ValueEditable)
}

func TestValueEditCoercion(t *testing.T) {
	root := parseJSON(t, `{"a": {"b": 1}}`)
	state := expand.NewState(expand.Options{DefaultExpanded: true})
	r := New(state, ".")

	var events []EditEvent
	r.OnEdit(func(ev EditEvent) { events = append(events, ev) })

	b := root.FindByPath("a.b", ".")
	require.NotNil(t, b)
	session := r.BeginEdit(b, RegionValue, "a.b")
	assert.Equal(t, "1", session.Text(), "seeded with current display text")
	session.SetText("2")
	session.Commit()

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, RegionValue, ev.Type)
	assert.Equal(t, "a.b", ev.Path)
	assert.Equal(t, int64(1), ev.OldValue)
	assert.Equal(t, int64(2), ev.NewValue, "text coerced to integer")
	assert.Equal(t, int64(1), b.Value, "session emits intent, does not mutate")
}

func TestValueEditCoercionPriority(t *testing.T) {
	state := expand.NewState(expand.Options{})
	r := New(state, ".")
	var got []EditEvent
	r.OnEdit(func(ev EditEvent) { got = append(got, ev) })

	n := node.NewValue("v", "old")
	for _, c := range []struct {
		text string
		want any
	}{
		{"null", nil},
		{"true", true},
		{"7", int64(7)},
		{"7.5", 7.5},
		{"plain", "plain"},
	} {
		s := r.BeginEdit(n, RegionValue, "v")
		s.SetText(c.text)
		s.Commit()
		require.NotEmpty(t, got, "text %q", c.text)
		assert.Equal(t, c.want, got[len(got)-1].NewValue, "text %q", c.text)
	}
}

func TestKeyEditRules(t *testing.T) {
	state := expand.NewState(expand.Options{})
	r := New(state, ".")
	var events []EditEvent
	r.OnEdit(func(ev EditEvent) { events = append(events, ev) })

	n := node.New(node.Object, "name")

	// Unchanged commit: no event.
	s := r.BeginEdit(n, RegionKey, "name")
	s.Commit()
	assert.Empty(t, events)

	// Empty commit: no event.
	s = r.BeginEdit(n, RegionKey, "name")
	s.SetText("")
	s.Commit()
	assert.Empty(t, events)

	// Changed commit: one event with old and new.
	s = r.BeginEdit(n, RegionKey, "name")
	s.SetText("renamed")
	s.Commit()
	require.Len(t, events, 1)
	assert.Equal(t, RegionKey, events[0].Type)
	assert.Equal(t, "name", events[0].OldValue)
	assert.Equal(t, "renamed", events[0].NewValue)

	// Blur behaves like commit, once.
	s = r.BeginEdit(n, RegionKey, "name")
	s.SetText("again")
	s.Commit()
	s.Blur()
	assert.Len(t, events, 2, "resolved session stays resolved")
}

func TestCancelRestoresOriginal(t *testing.T) {
	state := expand.NewState(expand.Options{})
	r := New(state, ".")
	var events []EditEvent
	r.OnEdit(func(ev EditEvent) { events = append(events, ev) })

	n := node.NewValue("v", int64(5))
	s := r.BeginEdit(n, RegionValue, "v")
	s.SetText("99")
	s.Cancel()
	assert.Empty(t, events)
	assert.Equal(t, "5", s.Text(), "display text restored")
}
