package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Topic is a named signal in the editor's event contract.
type Topic string

// The public event contract. Payload types are documented per emit site.
const (
	TopicMount            Topic = "mount"
	TopicReady            Topic = "ready"
	TopicContentChange    Topic = "contentchange"
	TopicBeforeChange     Topic = "beforechange"
	TopicNodeEdit         Topic = "nodeedit"
	TopicEditStart        Topic = "editstart"
	TopicEditEnd          Topic = "editend"
	TopicEditCancel       Topic = "editcancel"
	TopicNodeAdd          Topic = "nodeadd"
	TopicNodeRemove       Topic = "noderemove"
	TopicNodeDelete       Topic = "nodedelete"
	TopicNodeMove         Topic = "nodemove"
	TopicValidation       Topic = "validation"
	TopicValidationError  Topic = "validationerror"
	TopicSelect           Topic = "select"
	TopicExpand           Topic = "expand"
	TopicCollapse         Topic = "collapse"
	TopicNavigate         Topic = "navigate"
	TopicModeChange       Topic = "modechange"
	TopicBeforeModeChange Topic = "beforemodechange"
	TopicFormatChange     Topic = "formatchange"
	TopicFormatDetected   Topic = "formatdetected"
	TopicError            Topic = "error"
	TopicRecovery         Topic = "recovery"
	TopicRenderComplete   Topic = "rendercomplete"
	TopicSlowOperation    Topic = "slowoperation"
)

// Metadata is attached to every emitted event.
type Metadata struct {
	ID        string
	Timestamp time.Time
	Source    string
}

// Event is one emitted signal instance.
type Event struct {
	Topic   Topic
	Payload any
	Meta    Metadata
}

// Subscription identifies one registered handler for removal.
type Subscription int

// Emitter is a synchronous topic-keyed dispatcher. Handlers run in
// registration order on the emitting goroutine. The mutex covers the
// deferred readiness emission, which may land from a timer goroutine.
type Emitter struct {
	source string

	mu       sync.Mutex
	handlers map[Topic][]entry
	nextSub  Subscription
	sticky   map[Topic]*Event
}

type entry struct {
	sub Subscription
	fn  func(Event)
}

// NewEmitter creates an emitter stamping events with the given source.
func NewEmitter(source string) *Emitter {
	return &Emitter{
		source:   source,
		handlers: make(map[Topic][]entry),
		sticky:   make(map[Topic]*Event),
	}
}

// MarkSticky makes a topic replay its last event to late subscribers.
// Used for ready and rendercomplete so listeners attached right after
// construction still observe them.
func (em *Emitter) MarkSticky(topic Topic) {
	em.mu.Lock()
	defer em.mu.Unlock()
	if _, ok := em.sticky[topic]; !ok {
		em.sticky[topic] = nil
	}
}

// On registers a handler for one topic. If the topic is sticky and has
// already fired, the handler runs immediately with the last event.
func (em *Emitter) On(topic Topic, fn func(Event)) Subscription {
	em.mu.Lock()
	em.nextSub++
	sub := em.nextSub
	em.handlers[topic] = append(em.handlers[topic], entry{sub: sub, fn: fn})
	replay := em.sticky[topic]
	em.mu.Unlock()
	if replay != nil {
		fn(*replay)
	}
	return sub
}

// Off removes a previously registered handler.
func (em *Emitter) Off(topic Topic, sub Subscription) {
	em.mu.Lock()
	defer em.mu.Unlock()
	entries := em.handlers[topic]
	for i, e := range entries {
		if e.sub == sub {
			em.handlers[topic] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Emit dispatches one event to every handler of its topic.
func (em *Emitter) Emit(topic Topic, payload any) {
	ev := Event{
		Topic:   topic,
		Payload: payload,
		Meta: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    em.source,
		},
	}
	em.mu.Lock()
	if _, ok := em.sticky[topic]; ok {
		em.sticky[topic] = &ev
	}
	entries := make([]entry, len(em.handlers[topic]))
	copy(entries, em.handlers[topic])
	em.mu.Unlock()
	for _, e := range entries {
		e.fn(ev)
	}
}

// CancellableEvent is the payload for cancellable signals such as
// beforemodechange. Any handler may call Cancel to veto the transition.
type CancellableEvent struct {
	Payload   any
	cancelled *bool
}

// Cancel vetoes the pending operation.
func (c CancellableEvent) Cancel() { *c.cancelled = true }

// EmitCancellable dispatches a cancellable event and reports whether any
// handler cancelled it.
func (em *Emitter) EmitCancellable(topic Topic, payload any) (cancelled bool) {
	em.Emit(topic, CancellableEvent{Payload: payload, cancelled: &cancelled})
	return cancelled
}
