// Package testutil provides shared fixtures for workbench tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/danielricci/mead-framework/internal/domain/registry"
	"github.com/danielricci/mead-framework/internal/domain/signal"
	"github.com/danielricci/mead-framework/internal/engine"
	"github.com/danielricci/mead-framework/internal/infrastructure/config"
)

// NewEngine builds and starts an engine on default configuration,
// stopping it when the test ends.
func NewEngine(t *testing.T) *engine.Engine {
	t.Helper()

	eng := engine.New(config.Default(), nil)
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("engine start: %v", err)
	}
	t.Cleanup(func() { eng.Stop() })
	return eng
}

// Recorder is a listener that records every event it receives, safe for
// use from the dispatcher goroutine.
type Recorder struct {
	id   string
	kind registry.Kind

	mu     sync.Mutex
	events []signal.Event
}

// NewRecorder creates a recorder with the given identity.
func NewRecorder(id string, kind registry.Kind) *Recorder {
	return &Recorder{id: id, kind: kind}
}

// ID implements registry.Resource.
func (r *Recorder) ID() string { return r.id }

// Kind implements registry.Resource.
func (r *Recorder) Kind() registry.Kind { return r.kind }

// Invoke records the event.
func (r *Recorder) Invoke(event signal.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return true
}

// Events returns a snapshot of everything received so far.
func (r *Recorder) Events() []signal.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]signal.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events were received.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
