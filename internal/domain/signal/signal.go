package signal

import "github.com/danielricci/mead-framework/internal/domain/registry"

// Op names one operation a listener may handle. The constants below form
// the minimal vocabulary the core itself depends on; applications add
// their own names freely.
type Op string

const (
	// OpRegister asks a listener host to add the event source to its
	// listener set.
	OpRegister Op = "register"
	// OpUnregister asks a listener host to drop the event source from its
	// listener set.
	OpUnregister Op = "unregister"
	// OpPipeData asks the receiver to pull data from the event source.
	OpPipeData Op = "pipe-data"
	// OpModelRefresh announces that the source model's state changed.
	OpModelRefresh Op = "model-refresh"
)

// Event is an immutable notification record: who raised it, which
// operation it names, and an optional payload. Events are constructed
// fresh per notification and passed by value, never mutated. Source may
// be nil for system-originated events.
type Event struct {
	Source  Listener
	Op      Op
	Payload any
}

// SourceID returns the source's ID, or "" when the event has no source.
func (e Event) SourceID() string {
	if e.Source == nil {
		return ""
	}
	return e.Source.ID()
}

// Handler reacts to one event.
type Handler func(Event)

// Listener is the mailbox contract every participating object exposes:
// a registry resource that can receive an event and route it to the
// matching handler. Invoke reports whether a handler was installed for
// the event's Op; an unhandled event is dropped, not an error.
type Listener interface {
	registry.Resource
	Invoke(Event) bool
}
