package signal

import (
	"sort"
	"sync"
)

// Mailbox is the string-keyed handler table backing the listener
// contract. The zero value is ready to use. All methods are safe for
// concurrent use; handlers run outside the mailbox lock, so a handler
// may install or clear handlers on its own mailbox.
type Mailbox struct {
	mu       sync.RWMutex
	handlers map[Op]Handler
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{handlers: make(map[Op]Handler)}
}

// Handle installs or overwrites the handler for op. A nil handler
// removes the entry.
func (m *Mailbox) Handle(op Op, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handlers == nil {
		m.handlers = make(map[Op]Handler)
	}
	if handler == nil {
		delete(m.handlers, op)
		return
	}
	m.handlers[op] = handler
}

// Invoke routes the event to the handler installed for its Op. It
// returns false when no handler is installed; the event is dropped and
// that is not an error, many listeners only care about a subset of
// operations.
func (m *Mailbox) Invoke(event Event) bool {
	m.mu.RLock()
	handler, ok := m.handlers[event.Op]
	m.mu.RUnlock()

	if !ok {
		return false
	}
	handler(event)
	return true
}

// Handles reports whether a handler is installed for op.
func (m *Mailbox) Handles(op Op) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handlers[op]
	return ok
}

// Ops returns the sorted set of operations with installed handlers.
func (m *Mailbox) Ops() []Op {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ops := make([]Op, 0, len(m.handlers))
	for op := range m.handlers {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// Len returns the number of installed handlers.
func (m *Mailbox) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}

// Clear empties the handler table. Called on teardown.
func (m *Mailbox) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = make(map[Op]Handler)
}
