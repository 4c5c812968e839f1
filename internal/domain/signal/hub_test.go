package signal

import (
	"testing"

	"github.com/danielricci/mead-framework/internal/domain/registry"
)

const kindProbe registry.Kind = "test.probe"

// probe is a minimal listener that records every event it receives.
type probe struct {
	id     string
	kind   registry.Kind
	events []Event
}

func newProbe(id string) *probe {
	return &probe{id: id, kind: kindProbe}
}

func (p *probe) ID() string          { return p.id }
func (p *probe) Kind() registry.Kind { return p.kind }

func (p *probe) Invoke(event Event) bool {
	p.events = append(p.events, event)
	return true
}

func TestMulticastSkipsSource(t *testing.T) {
	hub := NewHub("signals")

	source := newProbe("source")
	other := newProbe("other")
	third := newProbe("third")
	hub.Add(source, false)
	hub.Add(other, false)
	hub.Add(third, false)

	delivered := hub.Multicast(kindProbe, Event{Source: source, Op: OpModelRefresh})

	if delivered != 2 {
		t.Errorf("Expected 2 deliveries, got %d", delivered)
	}
	if len(source.events) != 0 {
		t.Error("The source must never receive its own event")
	}
	if len(other.events) != 1 || len(third.events) != 1 {
		t.Errorf("Every other listener should receive exactly one event, got %d and %d",
			len(other.events), len(third.events))
	}
}

func TestMulticastFollowsInsertionOrder(t *testing.T) {
	hub := NewHub("signals")

	var order []string
	for _, id := range []string{"a", "b", "c"} {
		id := id
		hub.Add(&recorder{id: id, kind: kindProbe, fn: func() {
			order = append(order, id)
		}}, false)
	}

	hub.Multicast(kindProbe, Event{Op: OpModelRefresh})

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("Expected insertion order a,b,c, got %v", order)
	}
}

// recorder invokes fn on every delivery.
type recorder struct {
	id   string
	kind registry.Kind
	fn   func()
}

func (r *recorder) ID() string          { return r.id }
func (r *recorder) Kind() registry.Kind { return r.kind }

func (r *recorder) Invoke(Event) bool {
	r.fn()
	return true
}

func TestMulticastEmptyBucketIsNoop(t *testing.T) {
	hub := NewHub("signals")

	if got := hub.Multicast("test.empty", Event{Op: OpModelRefresh}); got != 0 {
		t.Errorf("Expected 0 deliveries on an empty bucket, got %d", got)
	}
}

func TestMulticastNilSourceDeliversToAll(t *testing.T) {
	hub := NewHub("signals")
	first := newProbe("first")
	second := newProbe("second")
	hub.Add(first, false)
	hub.Add(second, false)

	delivered := hub.Multicast(kindProbe, Event{Op: OpModelRefresh})

	if delivered != 2 {
		t.Errorf("A system event with no source should reach everyone, got %d", delivered)
	}
}

func TestMulticastHandlerMayReenterHub(t *testing.T) {
	hub := NewHub("signals")

	late := newProbe("late")
	hub.Add(&recorder{id: "reentrant", kind: kindProbe, fn: func() {
		hub.Add(late, false)
	}}, false)

	// Delivery iterates a snapshot; the listener added mid-delivery is
	// not notified this round but is present for the next.
	if got := hub.Multicast(kindProbe, Event{Op: OpModelRefresh}); got != 1 {
		t.Errorf("Expected 1 delivery from the snapshot, got %d", got)
	}
	if got := hub.Multicast(kindProbe, Event{Op: OpModelRefresh}); got != 2 {
		t.Errorf("Expected 2 deliveries after the re-entrant add, got %d", got)
	}
}

func TestExistsTracksSharedOnly(t *testing.T) {
	hub := NewHub("signals")

	hub.Add(newProbe("private"), false)
	if hub.Exists(kindProbe) {
		t.Error("A private listener must not satisfy Exists")
	}

	hub.Add(newProbe("public"), true)
	if !hub.Exists(kindProbe) {
		t.Error("A shared listener should satisfy Exists")
	}
}

func TestHubClear(t *testing.T) {
	hub := NewHub("signals")
	hub.Add(newProbe("one"), true)
	hub.Queue(kindProbe, newProbe("queued"))

	if !hub.Clear() {
		t.Fatal("Clear always succeeds")
	}
	if hub.Count() != 0 {
		t.Error("Clear should empty the private pool")
	}
	if hub.Exists(kindProbe) {
		t.Error("Clear should empty the shared pool")
	}
	if hub.CachedCount(kindProbe) != 0 {
		t.Error("Clear should empty the cache")
	}
}

func TestHubListIsDefensiveCopy(t *testing.T) {
	hub := NewHub("signals")
	hub.Add(newProbe("a"), false)

	snapshot := hub.List(kindProbe)
	snapshot[0] = newProbe("mutated")

	if hub.List(kindProbe)[0].ID() != "a" {
		t.Error("Mutating the snapshot must not affect the hub")
	}
}
