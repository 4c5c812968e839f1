package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielricci/mead-framework/internal/domain/registry"
	"github.com/danielricci/mead-framework/internal/domain/signal"
)

const kindSink registry.Kind = "test.sink"

// sink records every event it receives, in order, safely across
// goroutines.
type sink struct {
	id string

	mu     sync.Mutex
	events []signal.Event
}

func newSink(id string) *sink {
	return &sink{id: id}
}

func (s *sink) ID() string          { return s.id }
func (s *sink) Kind() registry.Kind { return kindSink }

func (s *sink) Invoke(event signal.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return true
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *sink) last() signal.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func TestDeliverToTargetsInOrder(t *testing.T) {
	d := New()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	var mu sync.Mutex
	var order []string

	first := newSink("first")
	second := newSink("second")
	sender := newSink("sender")

	// Wrap targets to record global delivery order.
	rec := func(s *sink) signal.Listener {
		return listenerFunc{id: s.id, fn: func(e signal.Event) bool {
			mu.Lock()
			order = append(order, s.id)
			mu.Unlock()
			return s.Invoke(e)
		}}
	}

	msg := NewMessage(sender, signal.OpModelRefresh, []signal.Listener{rec(first), rec(second)}, nil)
	if err := d.Enqueue(msg); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	waitFor(t, func() bool { return first.count() == 1 && second.count() == 1 })

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("Expected target-list order, got %v", order)
	}
	if first.last().Source.ID() != "sender" {
		t.Errorf("Event source should be the message sender, got %s", first.last().Source.ID())
	}
	if first.last().Op != signal.OpModelRefresh {
		t.Errorf("Event op should carry the message op, got %s", first.last().Op)
	}
}

// listenerFunc adapts a closure to signal.Listener for tests.
type listenerFunc struct {
	id string
	fn func(signal.Event) bool
}

func (l listenerFunc) ID() string                 { return l.id }
func (l listenerFunc) Kind() registry.Kind        { return kindSink }
func (l listenerFunc) Invoke(e signal.Event) bool { return l.fn(e) }

func TestMessagesAreFIFO(t *testing.T) {
	d := New()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	target := newSink("target")
	for i := 0; i < 5; i++ {
		payload := i
		if err := d.Enqueue(NewMessage(nil, signal.OpPipeData, []signal.Listener{target}, payload)); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}

	waitFor(t, func() bool { return target.count() == 5 })

	target.mu.Lock()
	defer target.mu.Unlock()
	for i, event := range target.events {
		if event.Payload != i {
			t.Errorf("Expected FIFO payloads, got %v at position %d", event.Payload, i)
		}
	}
}

func TestSnapshotAtEnqueue(t *testing.T) {
	d := New()

	target := newSink("target")
	latecomer := newSink("latecomer")

	targets := []signal.Listener{target}
	msg := NewMessage(nil, signal.OpModelRefresh, targets, nil)

	// Mutating the caller's slice after building the message must not
	// change who is delivered to.
	targets[0] = latecomer

	if err := d.Enqueue(msg); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	waitFor(t, func() bool { return target.count() == 1 })
	if latecomer.count() != 0 {
		t.Error("Targets are snapshotted at enqueue; the latecomer must not be notified")
	}
}

func TestPanickingTargetIsIsolated(t *testing.T) {
	d := New()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	bomb := listenerFunc{id: "bomb", fn: func(signal.Event) bool {
		panic("handler exploded")
	}}
	survivor := newSink("survivor")

	msg := NewMessage(nil, signal.OpModelRefresh, []signal.Listener{bomb, survivor}, nil)
	if err := d.Enqueue(msg); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	waitFor(t, func() bool { return survivor.count() == 1 })

	// The loop survives to deliver the next message.
	if err := d.Enqueue(NewMessage(nil, signal.OpModelRefresh, []signal.Listener{survivor}, nil)); err != nil {
		t.Fatalf("Enqueue after panic failed: %v", err)
	}
	waitFor(t, func() bool { return survivor.count() == 2 })
}

func TestStopDrainsAcceptedMessages(t *testing.T) {
	d := New()
	target := newSink("target")

	// Enqueue before Start; messages buffer in the queue.
	for i := 0; i < 3; i++ {
		if err := d.Enqueue(NewMessage(nil, signal.OpModelRefresh, []signal.Listener{target}, nil)); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	d.Stop()

	if target.count() != 3 {
		t.Errorf("Stop should drain accepted messages, delivered %d of 3", target.count())
	}
}

func TestEnqueueAfterStop(t *testing.T) {
	d := New()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	d.Stop()

	err := d.Enqueue(NewMessage(nil, signal.OpModelRefresh, nil, nil))
	if !errors.Is(err, ErrStopped) {
		t.Errorf("Expected ErrStopped, got %v", err)
	}
	if d.Running() {
		t.Error("Dispatcher should not report running after Stop")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	d := New()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	d.Stop()
	d.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	d := New()
	if err := d.Enqueue(NewMessage(nil, signal.OpModelRefresh, nil, nil)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	d.Stop()
}

func TestDoubleStart(t *testing.T) {
	d := New()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	if err := d.Start(context.Background()); !errors.Is(err, ErrRunning) {
		t.Errorf("Expected ErrRunning, got %v", err)
	}
}

func TestQueueFullIsObservable(t *testing.T) {
	d := New(WithQueueSize(1))
	// Not started: nothing drains the queue.

	if err := d.Enqueue(NewMessage(nil, signal.OpModelRefresh, nil, nil)); err != nil {
		t.Fatalf("First enqueue should fit: %v", err)
	}
	err := d.Enqueue(NewMessage(nil, signal.OpModelRefresh, nil, nil))
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}

	stats := d.Stats()
	if stats.Dropped != 1 {
		t.Errorf("Expected 1 dropped, got %d", stats.Dropped)
	}
	if stats.Enqueued != 1 {
		t.Errorf("Expected 1 enqueued, got %d", stats.Enqueued)
	}
	d.Stop()
}

func TestContextCancelStopsLoop(t *testing.T) {
	d := New()
	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	cancel()
	waitFor(t, func() bool { return !d.Running() })
	d.Stop()
}

func TestStopAfterCancelledLoop(t *testing.T) {
	d := New()
	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let the consumer exit on its own before any Stop is issued.
	cancel()
	waitFor(t, func() bool { return !d.Running() })

	// Stop must stay safe against an already-exited loop, repeatedly.
	d.Stop()
	d.Stop()

	if err := d.Enqueue(NewMessage(nil, signal.OpModelRefresh, nil, nil)); !errors.Is(err, ErrStopped) {
		t.Errorf("Expected ErrStopped after Stop, got %v", err)
	}
}

func TestStatsCountDeliveries(t *testing.T) {
	d := New()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	target := newSink("target")
	d.Enqueue(NewMessage(nil, signal.OpModelRefresh, []signal.Listener{target}, nil))
	waitFor(t, func() bool { return d.Stats().Delivered == 1 })

	d.Stop()
	stats := d.Stats()
	if stats.Enqueued != 1 || stats.Delivered != 1 {
		t.Errorf("Expected 1 enqueued / 1 delivered, got %+v", stats)
	}
}
