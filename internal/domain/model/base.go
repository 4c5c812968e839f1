package model

import (
	"sync"

	"github.com/google/uuid"

	"github.com/danielricci/mead-framework/internal/domain/registry"
	"github.com/danielricci/mead-framework/internal/domain/signal"
)

// Pipeline is the contract for pipe-data sources: a listener that can
// push its data into a destination when asked.
type Pipeline interface {
	Pipe(dst any)
}

// Base is the embeddable host of the listener contract. It carries a
// UUID identity, a mailbox, and the listener set that Refresh and
// Notify deliver to. Three handlers are installed at construction:
// register adds the event source as a listener, unregister removes it,
// and pipe-data pulls the source's data into the owner. Embedding types
// call Bind(self) so outgoing events name them as the source.
type Base struct {
	id      string
	kind    registry.Kind
	mailbox *signal.Mailbox

	mu         sync.RWMutex
	owner      signal.Listener
	listeners  []signal.Listener
	suppressed bool
	staged     signal.Op
}

// Option configures a Base at construction.
type Option func(*Base)

// WithListener pre-attaches listeners, under the same nil, duplicate
// and self guards as AddListener.
func WithListener(listeners ...signal.Listener) Option {
	return func(b *Base) {
		b.AddListener(listeners...)
	}
}

// New creates a listener host of the given kind with a fresh UUID
// identity and the three built-in subscription handlers installed.
func New(kind registry.Kind, opts ...Option) *Base {
	b := &Base{
		id:      uuid.New().String(),
		kind:    kind,
		mailbox: signal.NewMailbox(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.mailbox.Handle(signal.OpRegister, func(event signal.Event) {
		b.AddListener(event.Source)
	})
	b.mailbox.Handle(signal.OpUnregister, func(event signal.Event) {
		b.RemoveListener(event.Source)
	})
	b.mailbox.Handle(signal.OpPipeData, func(event signal.Event) {
		if source, ok := event.Source.(Pipeline); ok {
			source.Pipe(b.Owner())
		}
	})
	return b
}

// ID returns the instance's UUID identity.
func (b *Base) ID() string {
	return b.id
}

// Kind returns the instance's type identity.
func (b *Base) Kind() registry.Kind {
	return b.kind
}

// Invoke routes the event through the mailbox. It reports whether a
// handler was installed for the event's operation.
func (b *Base) Invoke(event signal.Event) bool {
	return b.mailbox.Invoke(event)
}

// Handle installs or overwrites a mailbox handler.
func (b *Base) Handle(op signal.Op, handler signal.Handler) {
	b.mailbox.Handle(op, handler)
}

// Handles reports whether a handler is installed for op.
func (b *Base) Handles(op signal.Op) bool {
	return b.mailbox.Handles(op)
}

// ClearHandlers empties the mailbox. Called on teardown; a cleared
// model drops every event, including register and unregister.
func (b *Base) ClearHandlers() {
	b.mailbox.Clear()
}

// Bind sets the listener surfaced as the source of outgoing events.
// An embedding type passes itself so receivers see the full value, not
// the inner Base. Bind(nil) restores the default.
func (b *Base) Bind(self signal.Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.owner = self
}

// Owner returns the bound listener, defaulting to the Base itself.
func (b *Base) Owner() signal.Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.owner != nil {
		return b.owner
	}
	return b
}

// AddListener attaches listeners. Nil entries, duplicates and the owner
// itself are skipped.
func (b *Base) AddListener(listeners ...signal.Listener) {
	ownerID := b.Owner().ID()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range listeners {
		if l == nil || l.ID() == ownerID {
			continue
		}
		if indexOf(b.listeners, l.ID()) < 0 {
			b.listeners = append(b.listeners, l)
		}
	}
}

// RemoveListener detaches a listener. Removing an absent or nil
// listener is a no-op.
func (b *Base) RemoveListener(listener signal.Listener) {
	if listener == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := indexOf(b.listeners, listener.ID()); i >= 0 {
		b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
	}
}

// Listening reports whether the listener is attached.
func (b *Base) Listening(listener signal.Listener) bool {
	if listener == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return indexOf(b.listeners, listener.ID()) >= 0
}

// ListenerOf returns the first attached listener of the given kind.
func (b *Base) ListenerOf(kind registry.Kind) (signal.Listener, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, l := range b.listeners {
		if l.Kind() == kind {
			return l, true
		}
	}
	return nil, false
}

// Listeners returns a snapshot of the attached listeners in attachment
// order.
func (b *Base) Listeners() []signal.Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]signal.Listener, len(b.listeners))
	copy(out, b.listeners)
	return out
}

// Refresh announces a state change: every attached listener receives a
// model-refresh event whose source is the owner. Suppressed models
// deliver nothing. It returns the delivery count.
func (b *Base) Refresh() int {
	return b.Notify(signal.OpModelRefresh, nil)
}

// Notify is the parameterized form of Refresh. Delivery iterates a
// snapshot of the listener set, so a handler may attach or detach
// listeners mid-delivery without affecting this round.
func (b *Base) Notify(op signal.Op, payload any) int {
	if b.Suppressed() {
		return 0
	}

	event := signal.Event{Source: b.Owner(), Op: op, Payload: payload}
	delivered := 0
	for _, l := range b.Listeners() {
		l.Invoke(event)
		delivered++
	}
	return delivered
}

// Suppress toggles update suppression. While suppressed, Refresh and
// Notify deliver nothing.
func (b *Base) Suppress(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.suppressed = on
}

// Suppressed reports whether updates are suppressed.
func (b *Base) Suppressed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.suppressed
}

// SetOperation stages the operation emitted by the next DoneUpdating.
func (b *Base) SetOperation(op signal.Op) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged = op
}

// Operation returns the currently staged operation.
func (b *Base) Operation() signal.Op {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.staged
}

// DoneUpdating emits the staged operation once and clears it. With
// nothing staged it falls back to a plain model refresh.
func (b *Base) DoneUpdating() int {
	b.mu.Lock()
	op := b.staged
	b.staged = ""
	b.mu.Unlock()

	if op == "" {
		op = signal.OpModelRefresh
	}
	return b.Notify(op, nil)
}

func indexOf(listeners []signal.Listener, id string) int {
	for i, l := range listeners {
		if l.ID() == id {
			return i
		}
	}
	return -1
}
