package dispatch

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielricci/mead-framework/internal/domain/signal"
	"github.com/danielricci/mead-framework/internal/shared/id"
)

// Delivery is the per-target record published to taps: one entry for
// every Invoke the dispatcher performs.
type Delivery struct {
	MessageID id.MessageID `json:"message_id"`
	Sender    string       `json:"sender,omitempty"`
	Target    string       `json:"target"`
	Op        signal.Op    `json:"op"`
	Handled   bool         `json:"handled"`
	At        time.Time    `json:"at"`
}

// Tap is a live, buffered feed of dispatcher deliveries. Publishing
// never blocks the delivery loop: when a tap's buffer is full the
// record is dropped and counted against that tap. Close detaches the
// tap and closes its channel.
type Tap struct {
	id  id.TapID
	ch  chan Delivery
	d   *Dispatcher
	mu  sync.Mutex
	off bool

	dropped int64
}

// Tap attaches a new delivery feed. It returns ErrStopped once the
// dispatcher has been stopped.
func (d *Dispatcher) Tap() (*Tap, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return nil, ErrStopped
	}
	t := &Tap{
		id: id.NewTapID(),
		ch: make(chan Delivery, d.tapBuffer),
		d:  d,
	}
	d.taps[t.id] = t
	return t, nil
}

// ID returns the tap's identifier.
func (t *Tap) ID() id.TapID {
	return t.id
}

// C is the delivery feed. It is closed when the tap or the dispatcher
// closes.
func (t *Tap) C() <-chan Delivery {
	return t.ch
}

// Dropped returns how many records were discarded because the tap's
// buffer was full.
func (t *Tap) Dropped() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Close detaches the tap from the dispatcher and closes its channel.
// Idempotent.
func (t *Tap) Close() {
	t.d.mu.Lock()
	delete(t.d.taps, t.id)
	t.d.mu.Unlock()
	t.shut()
}

// shut closes the channel exactly once.
func (t *Tap) shut() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.off {
		t.off = true
		close(t.ch)
	}
}

// send offers a record without blocking.
func (t *Tap) send(rec Delivery) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.off {
		return
	}
	select {
	case t.ch <- rec:
	default:
		t.dropped++
	}
}

// publish fans a delivery record out to every attached tap.
func (d *Dispatcher) publish(rec Delivery) {
	d.mu.RLock()
	if len(d.taps) == 0 {
		d.mu.RUnlock()
		return
	}
	taps := make([]*Tap, 0, len(d.taps))
	for _, t := range d.taps {
		taps = append(taps, t)
	}
	d.mu.RUnlock()

	for _, t := range taps {
		t.send(rec)
	}
}

// closeTaps shuts every attached tap. Called once from Stop.
func (d *Dispatcher) closeTaps() {
	d.mu.Lock()
	taps := make([]*Tap, 0, len(d.taps))
	for _, t := range d.taps {
		taps = append(taps, t)
	}
	d.taps = make(map[id.TapID]*Tap)
	d.mu.Unlock()

	for _, t := range taps {
		t.shut()
	}
	if len(taps) > 0 {
		d.log.Debug("taps closed", zap.Int("count", len(taps)))
	}
}
