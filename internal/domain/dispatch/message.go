package dispatch

import (
	"github.com/danielricci/mead-framework/internal/domain/signal"
	"github.com/danielricci/mead-framework/internal/shared/id"
)

// Message is one unit of asynchronous delivery: a sender, an operation
// name and the ordered target set. Targets are snapshotted when the
// message is built; listeners added or removed between enqueue and
// drain do not affect delivery.
type Message struct {
	ID      id.MessageID
	Sender  signal.Listener
	Op      signal.Op
	Targets []signal.Listener
	Payload any
}

// NewMessage builds a message with a fresh id and a defensive copy of
// the target list.
func NewMessage(sender signal.Listener, op signal.Op, targets []signal.Listener, payload any) Message {
	snapshot := make([]signal.Listener, len(targets))
	copy(snapshot, targets)

	return Message{
		ID:      id.NewMessageID(),
		Sender:  sender,
		Op:      op,
		Targets: snapshot,
		Payload: payload,
	}
}

// Event builds the notification record delivered to each target.
func (m Message) Event() signal.Event {
	return signal.Event{Source: m.Sender, Op: m.Op, Payload: m.Payload}
}
