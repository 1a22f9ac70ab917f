package editor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillPolly/treekit/pkg/format"
	"github.com/BillPolly/treekit/pkg/render"
)

func newEditor(t *testing.T, opts Options) *Editor {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(e.Destroy)
	return e
}

func loadJSON(t *testing.T, e *Editor, text string) {
	t.Helper()
	require.NoError(t, e.LoadContent(text, "json"))
}

func collect(e *Editor, topic Topic) *[]Event {
	var events []Event
	e.On(topic, func(ev Event) { events = append(events, ev) })
	return &events
}

func TestLoadAndContentRoundTrip(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": {"b": 1}}`)
	out, err := e.Content()
	require.NoError(t, err)
	reparsed, err := format.JSON().Parse(out)
	require.NoError(t, err)
	b := reparsed.FindByPath("a.b", ".")
	require.NotNil(t, b)
	assert.Equal(t, int64(1), b.Value)
}

func TestParseFailureKeepsPriorContent(t *testing.T) {
	e := newEditor(t, Options{TrackErrors: true})
	loadJSON(t, e, `{"a": 1}`)
	errs := collect(e, TopicError)

	err := e.SetContent(`{"broken":`)
	require.Error(t, err)
	assert.NotNil(t, e.Model().FindByPath("a"), "prior content stays live")
	require.Len(t, *errs, 1)
	rec := (*errs)[0].Payload.(ErrorRecord)
	assert.Equal(t, KindParseError, rec.Kind)
	assert.True(t, rec.Recoverable)
	assert.Equal(t, 2, rec.Context.NodeCount)
	require.Len(t, e.Errors(), 1)
}

func TestDetectFormat(t *testing.T) {
	e := newEditor(t, Options{Format: "yaml"})
	detected := collect(e, TopicFormatDetected)

	det := e.DetectFormat(`{"a": 1}`)
	assert.Equal(t, "json", det.Format)

	det = e.DetectFormat("no structure here")
	assert.Equal(t, "yaml", det.Format, "falls back to configured primary")
	assert.Zero(t, det.Confidence)
	assert.Len(t, *detected, 2)
}

func TestConvertTo(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"name": "demo", "count": 3}`)
	changes := collect(e, TopicFormatChange)

	require.NoError(t, e.ConvertTo("yaml"))
	assert.Equal(t, "yaml", e.Format())
	assert.Len(t, *changes, 1)

	name := e.Model().FindByPath("name")
	require.NotNil(t, name)
	assert.Equal(t, "demo", name.Value)

	out, err := e.Content()
	require.NoError(t, err)
	assert.Contains(t, out, "name: demo")
}

func TestConvertToUnknownFormat(t *testing.T) {
	e := newEditor(t, Options{TrackErrors: true})
	loadJSON(t, e, `{"a": 1}`)
	err := e.ConvertTo("csv")
	require.Error(t, err)
	require.NotEmpty(t, e.Errors())
	assert.Equal(t, KindConversionError, e.Errors()[0].Kind)
}

func TestEditNode(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": {"b": 1}}`)
	edits := collect(e, TopicNodeEdit)
	content := collect(e, TopicContentChange)

	require.NoError(t, e.EditNode("a.b", int64(2)))

	require.Len(t, *edits, 1)
	payload := (*edits)[0].Payload.(NodeEdit)
	assert.Equal(t, "a.b", payload.Path)
	assert.Equal(t, int64(1), payload.OldValue)
	assert.Equal(t, int64(2), payload.NewValue)
	assert.Len(t, *content, 1)
	assert.Equal(t, int64(2), e.Model().FindByPath("a.b").Value)
}

func TestEditNodeValidatorRejects(t *testing.T) {
	e := newEditor(t, Options{
		Validators: map[string]Validator{
			"a.b": func(_ string, v any) error {
				if n, ok := v.(int64); !ok || n < 0 {
					return errors.New("must be a non-negative integer")
				}
				return nil
			},
		},
	})
	loadJSON(t, e, `{"a": {"b": 1}}`)
	failures := collect(e, TopicValidationError)
	edits := collect(e, TopicNodeEdit)

	err := e.EditNode("a.b", int64(-5))
	require.Error(t, err)
	require.Len(t, *failures, 1)
	assert.Empty(t, *edits, "no mutation on rejection")
	assert.Equal(t, int64(1), e.Model().FindByPath("a.b").Value)

	require.NoError(t, e.EditNode("a.b", int64(7)))
	assert.Len(t, *edits, 1)
}

func TestAddNode(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": {}}`)
	adds := collect(e, TopicNodeAdd)

	require.NoError(t, e.AddNode("a", int64(5), "count"))
	require.Len(t, *adds, 1)
	n := e.Model().FindByPath("a.count")
	require.NotNil(t, n)
	assert.Equal(t, int64(5), n.Value)
}

func TestDeleteRequiredPathProtected(t *testing.T) {
	e := newEditor(t, Options{RequiredPaths: []string{"root.id"}, TrackErrors: true})
	loadJSON(t, e, `{"root": {"id": 7, "other": 1}}`)
	removed := collect(e, TopicNodeRemove)

	err := e.DeleteNode("root.id")
	require.Error(t, err)
	assert.NotNil(t, e.Model().FindByPath("root.id"), "node remains")
	assert.Empty(t, *removed)
	assert.Equal(t, KindOperationError, e.Errors()[0].Kind)

	// Ancestors of a required path are protected too.
	require.Error(t, e.DeleteNode("root"))

	require.NoError(t, e.DeleteNode("root.other"))
	assert.Len(t, *removed, 1)
}

func TestMoveNodeCycleRejected(t *testing.T) {
	e := newEditor(t, Options{TrackErrors: true})
	loadJSON(t, e, `{"n": {"d": {"x": 1}}, "other": {}}`)
	before, err := e.Content()
	require.NoError(t, err)

	moveErr := e.MoveNode("n", "n.d", 0)
	require.ErrorIs(t, moveErr, ErrCyclicMove)
	after, err := e.Content()
	require.NoError(t, err)
	assert.Equal(t, before, after, "tree unchanged")
	assert.Equal(t, KindOperationError, e.Errors()[0].Kind)
}

func TestMoveNode(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"src": {"item": 1}, "dst": {}}`)
	moves := collect(e, TopicNodeMove)

	require.NoError(t, e.MoveNode("src.item", "dst", 0))
	assert.Nil(t, e.Model().FindByPath("src.item"))
	require.NotNil(t, e.Model().FindByPath("dst.item"))
	require.Len(t, *moves, 1)
	payload := (*moves)[0].Payload.(NodeChange)
	assert.Equal(t, "src.item", payload.Path)
	assert.Equal(t, "dst.item", payload.NewPath)
}

func TestBulkOperationAggregation(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"list": []}`)
	content := collect(e, TopicContentChange)
	adds := collect(e, TopicNodeAdd)

	var inFlightEmits int
	err := e.BulkOperation(func() error {
		for i := 0; i < 5; i++ {
			if err := e.AddNode("list", int64(i), ""); err != nil {
				return err
			}
		}
		inFlightEmits = len(*content)
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, inFlightEmits, "contentchange suppressed during batch")
	require.Len(t, *content, 1, "exactly one aggregate contentchange")
	assert.Len(t, (*content)[0].Payload.(ContentChange).Changes, 5)
	assert.Len(t, *adds, 5, "per-node events still fire")
}

func TestBulkOperationNoChangesNoEvent(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": 1}`)
	content := collect(e, TopicContentChange)
	require.NoError(t, e.BulkOperation(func() error { return nil }))
	assert.Empty(t, *content)
}

func TestBulkOperationNestedRejected(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": 1}`)
	var nested error
	err := e.BulkOperation(func() error {
		nested = e.BulkOperation(func() error { return nil })
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrOperationInFlight)
}

func TestSlowOperation(t *testing.T) {
	e := newEditor(t, Options{SlowOperationThreshold: time.Microsecond})
	loadJSON(t, e, `{"a": 1}`)
	slow := collect(e, TopicSlowOperation)
	require.NoError(t, e.BulkOperation(func() error {
		time.Sleep(2 * time.Millisecond)
		return e.EditNode("a", int64(2))
	}))
	require.Len(t, *slow, 1)
	payload := (*slow)[0].Payload.(SlowOperation)
	assert.Greater(t, payload.Duration, payload.Threshold)
}

func TestModeSwitchRoundTrip(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": 1}`)
	changes := collect(e, TopicModeChange)

	require.NoError(t, e.SetMode(ModeSource))
	assert.Equal(t, ModeSource, e.Mode())
	assert.Contains(t, e.Source(), `"a"`)

	require.NoError(t, e.SetSource(`{"a": 42}`))
	require.NoError(t, e.SetMode(ModeTree))
	assert.Equal(t, int64(42), e.Model().FindByPath("a").Value)
	assert.Len(t, *changes, 2)
}

func TestModeSwitchParseFailureStays(t *testing.T) {
	e := newEditor(t, Options{TrackErrors: true})
	loadJSON(t, e, `{"a": 1}`)
	require.NoError(t, e.SetMode(ModeSource))
	require.NoError(t, e.SetSource(`{"broken":`))

	err := e.SetMode(ModeTree)
	require.Error(t, err)
	assert.Equal(t, ModeSource, e.Mode(), "mode unchanged on failure")
	assert.Equal(t, KindModeSwitchError, e.Errors()[0].Kind)
}

func TestEditSourceValue(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": {"b": 1}, "keep": "x"}`)
	require.NoError(t, e.SetMode(ModeSource))
	edits := collect(e, TopicNodeEdit)
	content := collect(e, TopicContentChange)

	require.NoError(t, e.EditSourceValue("a.b", int64(2)))
	assert.Contains(t, e.Source(), `"keep"`, "untouched text survives the patch")
	assert.Len(t, *edits, 1)
	assert.Len(t, *content, 1)

	require.NoError(t, e.SetMode(ModeTree))
	assert.Equal(t, int64(2), e.Model().FindByPath("a.b").Value)
	assert.Equal(t, "x", e.Model().FindByPath("keep").Value)
}

func TestEditSourceValueOutsideSourceMode(t *testing.T) {
	e := newEditor(t, Options{TrackErrors: true})
	loadJSON(t, e, `{"a": 1}`)
	require.Error(t, e.EditSourceValue("a", int64(2)))
	assert.Equal(t, KindEditError, e.Errors()[0].Kind)
}

func TestEditSourceValueNonJSONRejected(t *testing.T) {
	e := newEditor(t, Options{Format: "yaml", TrackErrors: true})
	require.NoError(t, e.LoadContent("a: 1\n", "yaml"))
	require.NoError(t, e.SetMode(ModeSource))
	before := e.Source()
	require.Error(t, e.EditSourceValue("a", int64(2)))
	assert.Equal(t, before, e.Source(), "source untouched on rejection")
}

func TestEditSourceValueValidatorRejects(t *testing.T) {
	e := newEditor(t, Options{
		Validators: map[string]Validator{
			"a": func(_ string, v any) error {
				if n, ok := v.(int64); !ok || n < 0 {
					return errors.New("must be a non-negative integer")
				}
				return nil
			},
		},
	})
	loadJSON(t, e, `{"a": 1}`)
	require.NoError(t, e.SetMode(ModeSource))
	before := e.Source()
	failures := collect(e, TopicValidationError)

	require.Error(t, e.EditSourceValue("a", int64(-5)))
	assert.Equal(t, before, e.Source())
	assert.Len(t, *failures, 1)

	require.NoError(t, e.EditSourceValue("a", int64(7)))
	assert.NotEqual(t, before, e.Source())
}

func TestBeforeModeChangeCancel(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": 1}`)
	e.On(TopicBeforeModeChange, func(ev Event) {
		ev.Payload.(CancellableEvent).Cancel()
	})
	changes := collect(e, TopicModeChange)

	require.NoError(t, e.SetMode(ModeSource))
	assert.Equal(t, ModeTree, e.Mode(), "cancelled transition leaves mode")
	assert.Empty(t, *changes)
}

func TestReadyDeferred(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)
	defer e.Destroy()

	ready := make(chan struct{})
	// Attached after construction, still observes ready.
	e.On(TopicReady, func(Event) { close(ready) })
	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("ready never fired")
	}
}

func TestPluginErrorContained(t *testing.T) {
	boom := &testPlugin{name: "boom", initErr: errors.New("nope")}
	panicky := &testPlugin{name: "panicky", initPanic: true}
	ok := &testPlugin{name: "ok"}
	e := newEditor(t, Options{Plugins: []Plugin{boom, panicky, ok}, TrackErrors: true})

	assert.True(t, ok.inited, "startup continued past failing plugins")
	require.Len(t, e.Errors(), 2)
	for _, rec := range e.Errors() {
		assert.Equal(t, KindPluginError, rec.Kind)
	}
	loadJSON(t, e, `{"a": 1}`)
	assert.NotNil(t, e.Model().FindByPath("a"), "editor usable after plugin failure")
}

func TestUserErrorHandlerSuppresses(t *testing.T) {
	var handled []*ErrorRecord
	e := newEditor(t, Options{
		OnError: func(rec *ErrorRecord) bool {
			handled = append(handled, rec)
			return true
		},
	})
	errs := collect(e, TopicError)
	require.Error(t, e.SetContent(`{"broken":`))
	assert.Len(t, handled, 1)
	assert.Empty(t, *errs, "handled errors skip the generic signal")
}

func TestNotEditable(t *testing.T) {
	editable := false
	e := newEditor(t, Options{Editable: &editable})
	loadJSON(t, e, `{"a": 1}`)
	assert.ErrorIs(t, e.EditNode("a", int64(2)), ErrNotEditable)
}

func TestPatchReValidates(t *testing.T) {
	e := newEditor(t, Options{})
	bad := 99
	assert.Error(t, e.Patch(Patch{IndentSize: &bad}))
	good := 4
	require.NoError(t, e.Patch(Patch{IndentSize: &good}))
	assert.Equal(t, "    ", e.opts.Indent())
}

func TestExpansionEventsReEmitted(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": {"b": 1}}`)
	expands := collect(e, TopicExpand)
	collapses := collect(e, TopicCollapse)

	e.Expansion().Expand("a")
	e.Expansion().Collapse("a")
	assert.Len(t, *expands, 1)
	assert.Len(t, *collapses, 1)
}

func TestScenarioCollapseEditRender(t *testing.T) {
	// End to end: parse, collapse, summary, expand, inline edit, events.
	e := newEditor(t, Options{DefaultExpanded: true})
	loadJSON(t, e, `{"a": {"b": 1}}`)

	e.Expansion().Collapse("a")
	el, err := e.Render()
	require.NoError(t, err)
	rows := render.Flatten(el)
	require.Len(t, rows, 2)
	assert.Equal(t, "1 property", rows[1].Summary)

	e.Renderer().Toggle("a")
	el, err = e.Render()
	require.NoError(t, err)
	rows = render.Flatten(el)
	require.Len(t, rows, 3)
	b := rows[2]
	assert.Equal(t, "a.b", b.Path)
	assert.Equal(t, "1", b.ValueText)
	assert.True(t, b.ValueEditable)

	edits := collect(e, TopicNodeEdit)
	session := e.Renderer().BeginEdit(e.Model().FindByPath("a.b"), render.RegionValue, "a.b")
	session.SetText("2")
	session.Commit()

	require.Len(t, *edits, 1)
	payload := (*edits)[0].Payload.(NodeEdit)
	assert.Equal(t, "a.b", payload.Path)
	assert.Equal(t, int64(1), payload.OldValue)
	assert.Equal(t, int64(2), payload.NewValue)
	assert.Equal(t, int64(2), e.Model().FindByPath("a.b").Value)
}

func TestBeforeChangeVeto(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": {"b": 1}}`)
	removed := collect(e, TopicNodeRemove)
	var intents []ChangeIntent
	e.On(TopicBeforeChange, func(ev Event) {
		c := ev.Payload.(CancellableEvent)
		intent := c.Payload.(ChangeIntent)
		intents = append(intents, intent)
		if intent.Op == "delete" {
			c.Cancel()
		}
	})

	require.NoError(t, e.DeleteNode("a.b"))
	assert.NotNil(t, e.Model().FindByPath("a.b"), "vetoed delete leaves the node")
	assert.Empty(t, *removed)

	require.NoError(t, e.EditNode("a.b", int64(2)))
	assert.Equal(t, int64(2), e.Model().FindByPath("a.b").Value, "other ops pass through")
	require.Len(t, intents, 2)
	assert.Equal(t, "delete", intents[0].Op)
	assert.Equal(t, "edit", intents[1].Op)
}

func TestEditSessionSignals(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": 1}`)
	starts := collect(e, TopicEditStart)
	ends := collect(e, TopicEditEnd)
	cancels := collect(e, TopicEditCancel)

	session := e.Renderer().BeginEdit(e.Model().FindByPath("a"), render.RegionValue, "a")
	require.Len(t, *starts, 1)
	assert.Equal(t, "a", (*starts)[0].Payload.(EditSessionChange).Path)

	session.SetText("2")
	session.Commit()
	session.Commit()
	require.Len(t, *ends, 1, "resolution fires once")
	assert.Empty(t, *cancels)

	session = e.Renderer().BeginEdit(e.Model().FindByPath("a"), render.RegionValue, "a")
	session.Cancel()
	assert.Len(t, *starts, 2)
	assert.Len(t, *cancels, 1)
	assert.Len(t, *ends, 1, "cancelled session never commits")
}

func TestSelectAndNavigate(t *testing.T) {
	e := newEditor(t, Options{})
	loadJSON(t, e, `{"a": {"b": 1}}`)
	selects := collect(e, TopicSelect)
	navs := collect(e, TopicNavigate)

	e.Select("a")
	e.Select("a")
	e.Select("a.b")

	require.Len(t, *selects, 2, "re-selecting the current node is a no-op")
	assert.Equal(t, "a.b", e.Selection())
	require.Len(t, *navs, 2)
	nav := (*navs)[1].Payload.(Navigation)
	assert.Equal(t, "a", nav.From)
	assert.Equal(t, "a.b", nav.To)
}

func TestRecoverySignal(t *testing.T) {
	e := newEditor(t, Options{
		OnError: func(*ErrorRecord) bool { return true },
	})
	recoveries := collect(e, TopicRecovery)
	errs := collect(e, TopicError)

	require.Error(t, e.SetContent(`{"broken":`))
	assert.Len(t, *recoveries, 1, "handled recoverable failure reports recovery")
	assert.Empty(t, *errs)
}

type testPlugin struct {
	name      string
	initErr   error
	initPanic bool
	inited    bool
	destroyed bool
}

func (p *testPlugin) Name() string { return p.name }

func (p *testPlugin) Init(*Editor) error {
	if p.initPanic {
		panic("plugin exploded")
	}
	if p.initErr != nil {
		return p.initErr
	}
	p.inited = true
	return nil
}

func (p *testPlugin) Destroy() error {
	p.destroyed = true
	return nil
}
