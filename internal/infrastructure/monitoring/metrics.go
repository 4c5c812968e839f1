package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the framework.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Registry metrics
	RegistryResources *prometheus.GaugeVec
	ResetsTotal       prometheus.Counter
	ResetsDropped     prometheus.Counter

	// Signal metrics
	MulticastsTotal     *prometheus.CounterVec
	MulticastDeliveries *prometheus.CounterVec

	// Dispatch metrics
	DispatchEnqueued  prometheus.Counter
	DispatchDelivered prometheus.Counter
	DispatchDropped   prometheus.Counter
	DispatchDepth     prometheus.Gauge
	DispatchLatency   prometheus.Histogram

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for the JSON inspector API
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON inspector API.
type Snapshot struct {
	TotalRequests      int64   `json:"total_requests"`
	TotalErrors        int64   `json:"total_errors"`
	TotalMulticasts    int64   `json:"total_multicasts"`
	DispatchEnqueued   int64   `json:"dispatch_enqueued"`
	DispatchDelivered  int64   `json:"dispatch_delivered"`
	DispatchDropped    int64   `json:"dispatch_dropped"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
	ActiveConnections  int64   `json:"active_connections"`
	RegistriesResetRun int64   `json:"registries_reset_runs"`
}

// NewMetrics creates a metrics collector backed by its own Prometheus
// registry, so multiple collectors can coexist in one process (tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_http_requests_total",
				Help: "Total number of inspector HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workbench_http_request_duration_seconds",
				Help:    "Inspector HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		RegistryResources: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "workbench_registry_resources",
				Help: "Number of tracked instances per registry",
			},
			[]string{"registry"},
		),
		ResetsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "workbench_resets_total",
				Help: "Total number of catalog resets",
			},
		),
		ResetsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "workbench_resets_dropped_stores_total",
				Help: "Total number of stores dropped by catalog resets",
			},
		),

		MulticastsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_multicasts_total",
				Help: "Total number of synchronous multicasts",
			},
			[]string{"hub", "op"},
		),
		MulticastDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workbench_multicast_deliveries_total",
				Help: "Total number of listeners reached by multicasts",
			},
			[]string{"hub", "op"},
		),

		DispatchEnqueued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "workbench_dispatch_enqueued_total",
				Help: "Total number of messages accepted by the dispatcher",
			},
		),
		DispatchDelivered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "workbench_dispatch_delivered_total",
				Help: "Total number of messages fully delivered",
			},
		),
		DispatchDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "workbench_dispatch_dropped_total",
				Help: "Total number of messages rejected by a full queue",
			},
		),
		DispatchDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "workbench_dispatch_queue_depth",
				Help: "Current dispatcher queue depth",
			},
		),
		DispatchLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "workbench_dispatch_delivery_seconds",
				Help:    "Per-message fan-out duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "workbench_ws_connections",
				Help: "Number of active WebSocket stream connections",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "workbench_uptime_seconds",
				Help: "Workbench uptime in seconds",
			},
		),
	}

	return m
}

// Handler returns the Prometheus exposition handler for this collector.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an inspector HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// SetRegistryResources sets the tracked-instance gauge for one registry.
func (m *Metrics) SetRegistryResources(name string, count int) {
	m.RegistryResources.WithLabelValues(name).Set(float64(count))
}

// RecordReset records a catalog reset and how many stores it dropped.
func (m *Metrics) RecordReset(dropped int) {
	m.ResetsTotal.Inc()
	m.ResetsDropped.Add(float64(dropped))

	m.mu.Lock()
	m.snapshot.RegistriesResetRun++
	m.mu.Unlock()
}

// RecordMulticast records one synchronous multicast and its fan-out.
func (m *Metrics) RecordMulticast(hub, op string, delivered int) {
	m.MulticastsTotal.WithLabelValues(hub, op).Inc()
	m.MulticastDeliveries.WithLabelValues(hub, op).Add(float64(delivered))

	m.mu.Lock()
	m.snapshot.TotalMulticasts++
	m.mu.Unlock()
}

// RecordDispatchEnqueue records one accepted message.
func (m *Metrics) RecordDispatchEnqueue() {
	m.DispatchEnqueued.Inc()

	m.mu.Lock()
	m.snapshot.DispatchEnqueued++
	m.mu.Unlock()
}

// RecordDispatchDelivery records one fully delivered message.
func (m *Metrics) RecordDispatchDelivery(op string, targets int, duration time.Duration) {
	m.DispatchDelivered.Inc()
	m.DispatchLatency.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.DispatchDelivered++
	m.mu.Unlock()
}

// RecordDispatchDrop records one message rejected by a full queue.
func (m *Metrics) RecordDispatchDrop() {
	m.DispatchDropped.Inc()

	m.mu.Lock()
	m.snapshot.DispatchDropped++
	m.mu.Unlock()
}

// SetDispatchDepth sets the current queue depth gauge.
func (m *Metrics) SetDispatchDepth(depth int) {
	m.DispatchDepth.Set(float64(depth))
}

// IncWSConnections increments the WebSocket connection gauge.
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()

	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements the WebSocket connection gauge.
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()

	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// GetSnapshot returns current values for the JSON inspector API.
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
