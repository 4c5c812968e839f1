package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danielricci/mead-framework/internal/domain/registry"
	"github.com/danielricci/mead-framework/internal/domain/signal"
	"github.com/danielricci/mead-framework/internal/engine"
	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/infrastructure/monitoring"
)

// Handlers serves the inspector REST surface over a live engine.
type Handlers struct {
	engine  *engine.Engine
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandlers creates the inspector handler set.
func NewHandlers(eng *engine.Engine, log *logging.Logger, metrics *monitoring.Metrics) *Handlers {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handlers{engine: eng, log: log, metrics: metrics}
}

// Root describes the service.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "mead-workbench",
		"status":  "running",
	})
}

// Health reports liveness and a coarse engine summary.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"running": h.engine.Running(),
		"uptime":  h.engine.Uptime().Seconds(),
		"stores":  h.engine.Catalog().Len(),
	})
}

// ListRegistries returns stats for every registered store.
func (h *Handlers) ListRegistries(c *gin.Context) {
	stores := h.engine.Catalog().Stores()
	stats := make([]registry.Stats, 0, len(stores))
	for _, store := range stores {
		stats = append(stats, store.Stats())
	}
	c.JSON(http.StatusOK, gin.H{
		"running":    h.engine.Running(),
		"registries": stats,
	})
}

// GetRegistry returns per-kind detail for one store.
func (h *Handlers) GetRegistry(c *gin.Context) {
	name := c.Param("name")
	store, ok := h.engine.Catalog().Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "registry not found: " + name})
		return
	}
	c.JSON(http.StatusOK, store.Stats())
}

// ResetRegistries flushes and drops every non-persistent registry.
func (h *Handlers) ResetRegistries(c *gin.Context) {
	before := h.engine.Catalog().Len()
	dropped := h.engine.Reset()

	h.log.Info("inspector reset",
		zap.Strings("dropped", dropped),
		zap.Int("kept", before-len(dropped)),
	)
	c.JSON(http.StatusOK, gin.H{
		"dropped": dropped,
		"kept":    before - len(dropped),
	})
}

// DispatchStats returns dispatcher activity counters.
func (h *Handlers) DispatchStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Dispatcher().Stats())
}

// PostMessageRequest asks for one asynchronous delivery to a hub bucket.
type PostMessageRequest struct {
	Hub     string `json:"hub" binding:"required"`
	Kind    string `json:"kind" binding:"required"`
	Op      string `json:"op" binding:"required"`
	Payload any    `json:"payload"`
}

// PostMessage snapshots the hub bucket as targets and enqueues one
// message.
func (h *Handlers) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message request: " + err.Error()})
		return
	}

	msgID, targets, err := h.engine.Post(req.Hub, registry.Kind(req.Kind), signal.Op(req.Op), req.Payload)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"id":      msgID,
		"targets": targets,
	})
}

// MulticastRequest asks for one synchronous multicast on a hub.
type MulticastRequest struct {
	Kind    string `json:"kind" binding:"required"`
	Op      string `json:"op" binding:"required"`
	Payload any    `json:"payload"`
}

// Multicast delivers an event synchronously to a hub bucket.
func (h *Handlers) Multicast(c *gin.Context) {
	var req MulticastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multicast request: " + err.Error()})
		return
	}

	hub := h.engine.Hub(c.Param("name"))
	delivered := hub.Multicast(registry.Kind(req.Kind), signal.Event{
		Op:      signal.Op(req.Op),
		Payload: req.Payload,
	})
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}

// DataLayers lists the data store's layers.
func (h *Handlers) DataLayers(c *gin.Context) {
	store := h.engine.Data()
	c.JSON(http.StatusOK, gin.H{
		"layers": store.Layers(),
		"assets": store.Len(),
	})
}

// DataLayer returns every asset of one layer.
func (h *Handlers) DataLayer(c *gin.Context) {
	layer := c.Param("layer")
	assets := h.engine.Data().ByLayer(layer)
	if len(assets) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "layer not found: " + layer})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"layer":  layer,
		"assets": assets,
	})
}

// MetricsJSON returns the monitoring snapshot for dashboards that do
// not speak Prometheus.
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "metrics not enabled"})
		return
	}
	c.JSON(http.StatusOK, h.metrics.GetSnapshot())
}
