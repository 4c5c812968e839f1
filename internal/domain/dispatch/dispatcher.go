package dispatch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielricci/mead-framework/internal/domain/signal"
	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/infrastructure/monitoring"
	"github.com/danielricci/mead-framework/internal/shared/id"
)

const (
	// DefaultQueueSize bounds the inbound queue when no option overrides it.
	DefaultQueueSize = 256
	// DefaultTapBuffer is the per-tap channel capacity.
	DefaultTapBuffer = 64
)

// Dispatcher owns the multi-producer, single-consumer queue of the
// asynchronous bus. Any goroutine may Enqueue; exactly one background
// goroutine drains, delivering each message's event to its targets in
// order. Messages are delivered FIFO relative to each other.
type Dispatcher struct {
	log       *logging.Logger
	metrics   *monitoring.Metrics
	queueSize int
	tapBuffer int

	queue chan Message
	done  chan struct{}

	mu      sync.RWMutex
	started bool
	running bool
	stopped bool
	taps    map[id.TapID]*Tap

	stats struct {
		sync.Mutex
		enqueued  int64
		delivered int64
		dropped   int64
	}
}

// Stats is a point-in-time snapshot of dispatcher activity.
type Stats struct {
	Running   bool  `json:"running"`
	Depth     int   `json:"depth"`
	Capacity  int   `json:"capacity"`
	Enqueued  int64 `json:"enqueued"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
	Taps      int   `json:"taps"`
}

// Option configures a dispatcher.
type Option func(*Dispatcher)

// WithQueueSize sets the inbound queue capacity.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithTapBuffer sets the per-tap channel capacity.
func WithTapBuffer(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.tapBuffer = n
		}
	}
}

// WithLogger attaches a logger for delivery failures and drops.
func WithLogger(log *logging.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithMetrics adds metrics tracking to the dispatcher.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

// New creates a dispatcher. Messages may be enqueued immediately; they
// sit in the queue until Start spawns the consumer.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:       logging.NewNop(),
		queueSize: DefaultQueueSize,
		tapBuffer: DefaultTapBuffer,
		taps:      make(map[id.TapID]*Tap),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.queue = make(chan Message, d.queueSize)
	d.done = make(chan struct{})
	return d
}

// Start spawns the single consumer goroutine. It returns ErrRunning if
// the dispatcher is already draining and ErrStopped after Stop. The
// loop exits when ctx is cancelled or Stop closes the intake; Stop
// additionally drains every message accepted before the close.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return ErrStopped
	}
	if d.started {
		d.mu.Unlock()
		return ErrRunning
	}
	d.started = true
	d.running = true
	d.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	go d.loop(ctx)
	return nil
}

// Enqueue appends a message to the inbound queue without blocking. It
// returns ErrStopped after Stop and ErrQueueFull when the queue is
// saturated; both leave the message undelivered.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrStopped
	}

	select {
	case d.queue <- msg:
	default:
		d.stats.Lock()
		d.stats.dropped++
		d.stats.Unlock()
		if d.metrics != nil {
			d.metrics.RecordDispatchDrop()
		}
		d.log.Warn("dispatch queue full, message dropped",
			zap.String("msg_id", msg.ID.String()),
			zap.String("op", string(msg.Op)),
		)
		return ErrQueueFull
	}

	d.stats.Lock()
	d.stats.enqueued++
	d.stats.Unlock()
	if d.metrics != nil {
		d.metrics.RecordDispatchEnqueue()
		d.metrics.SetDispatchDepth(len(d.queue))
	}
	return nil
}

// Stop closes the intake, waits for the consumer to drain every
// accepted message and shuts the taps. It is idempotent and safe to
// call whether or not Start ever ran.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.stopped = true
	started := d.started
	close(d.queue)
	d.mu.Unlock()

	// Only when Start never ran does Stop own d.done; a consumer loop
	// closes it on exit even if it already stopped on cancellation.
	if !started {
		// No consumer to drain the queue; discard what was buffered.
		for range d.queue {
		}
		close(d.done)
	}
	<-d.done

	d.closeTaps()
}

// Running reports whether the consumer goroutine is draining.
func (d *Dispatcher) Running() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running && !d.stopped
}

// Stats returns a snapshot of dispatcher activity.
func (d *Dispatcher) Stats() Stats {
	d.mu.RLock()
	running := d.running && !d.stopped
	taps := len(d.taps)
	d.mu.RUnlock()

	d.stats.Lock()
	defer d.stats.Unlock()
	return Stats{
		Running:   running,
		Depth:     len(d.queue),
		Capacity:  d.queueSize,
		Enqueued:  d.stats.enqueued,
		Delivered: d.stats.delivered,
		Dropped:   d.stats.dropped,
		Taps:      taps,
	}
}

// loop is the single consumer. It blocks on the queue, delivering one
// message at a time, until the intake closes or ctx is cancelled.
func (d *Dispatcher) loop(ctx context.Context) {
	defer close(d.done)
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	for {
		select {
		case msg, ok := <-d.queue:
			if !ok {
				return
			}
			d.deliver(msg)
		case <-ctx.Done():
			// Cancellation stops delivery immediately; anything still
			// queued is abandoned.
			d.log.Info("dispatcher cancelled", zap.Int("abandoned", len(d.queue)))
			return
		}
	}
}

// deliver fans the message's event out to every target in order. A
// panicking target is recovered and logged; the remaining targets and
// the loop are undisturbed.
func (d *Dispatcher) deliver(msg Message) {
	event := msg.Event()
	start := time.Now()

	for _, target := range msg.Targets {
		if target == nil {
			continue
		}
		handled := d.invoke(msg, target, event)
		d.publish(Delivery{
			MessageID: msg.ID,
			Sender:    event.SourceID(),
			Target:    target.ID(),
			Op:        msg.Op,
			Handled:   handled,
			At:        time.Now(),
		})
	}

	d.stats.Lock()
	d.stats.delivered++
	d.stats.Unlock()
	if d.metrics != nil {
		d.metrics.RecordDispatchDelivery(string(msg.Op), len(msg.Targets), time.Since(start))
		d.metrics.SetDispatchDepth(len(d.queue))
	}
}

func (d *Dispatcher) invoke(msg Message, target signal.Listener, event signal.Event) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("target panicked during delivery",
				zap.String("msg_id", msg.ID.String()),
				zap.String("target", target.ID()),
				zap.String("op", string(msg.Op)),
				zap.Any("panic", r),
			)
		}
	}()
	return target.Invoke(event)
}
