package signal

import (
	"go.uber.org/zap"

	"github.com/danielricci/mead-framework/internal/domain/registry"
	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/infrastructure/monitoring"
)

// Hub is the signal registry: a resource registry specialized to
// listener-capable resources, with multicast delivery on top. Its
// history pool holds the private signals of each Kind; its shared pool
// holds the public ones.
type Hub struct {
	*registry.Registry[Listener]

	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewHub creates an empty hub identified by name.
func NewHub(name string) *Hub {
	return &Hub{
		Registry: registry.New[Listener](name),
		log:      logging.NewNop(),
	}
}

// WithLogger attaches a logger to the hub and its underlying registry.
func (h *Hub) WithLogger(log *logging.Logger) *Hub {
	if log != nil {
		h.log = log
		h.Registry.WithLogger(log)
	}
	return h
}

// WithMetrics adds metrics tracking to the hub and its registry.
func (h *Hub) WithMetrics(metrics *monitoring.Metrics) *Hub {
	h.metrics = metrics
	h.Registry.WithMetrics(metrics)
	return h
}

// Multicast delivers the event to every listener currently in the
// private bucket for kind, except the one whose ID equals the event
// source's (a source never notifies itself). Delivery follows bucket
// insertion order; the bucket is snapshotted first and handlers run
// outside the hub lock, so a handler may re-enter the hub. It returns
// the number of listeners that received the event; an empty bucket is a
// no-op returning 0.
func (h *Hub) Multicast(kind registry.Kind, event Event) int {
	sourceID := event.SourceID()

	delivered := 0
	for _, listener := range h.List(kind) {
		if sourceID != "" && listener.ID() == sourceID {
			continue
		}
		listener.Invoke(event)
		delivered++
	}

	if h.metrics != nil {
		h.metrics.RecordMulticast(h.Name(), string(event.Op), delivered)
	}
	h.log.Debug("multicast",
		zap.String("hub", h.Name()),
		zap.String("kind", string(kind)),
		zap.String("op", string(event.Op)),
		zap.Int("delivered", delivered),
	)
	return delivered
}

// Clear flushes the private, shared and cache pools. It always
// succeeds and returns true, matching the registry clear contract.
func (h *Hub) Clear() bool {
	h.Flush()
	return true
}
