package ws

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/danielricci/mead-framework/internal/domain/dispatch"
	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/infrastructure/monitoring"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS middleware.
		return true
	},
}

// Handler streams live dispatcher deliveries over WebSocket. Each
// connection attaches its own tap, so slow consumers drop their own
// records without affecting each other or the delivery loop.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	log        *logging.Logger
	metrics    *monitoring.Metrics
}

// NewHandler creates a WebSocket stream handler.
func NewHandler(d *dispatch.Dispatcher, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{dispatcher: d, log: log, metrics: metrics}
}

// frame is the wire shape of one streamed record.
type frame struct {
	Type     string             `json:"type"`
	TapID    string             `json:"tap_id,omitempty"`
	Delivery *dispatch.Delivery `json:"delivery,omitempty"`
	Message  string             `json:"message,omitempty"`
}

// HandleConnection upgrades the request and forwards tap records until
// the client disconnects or the dispatcher stops.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	tap, err := h.dispatcher.Tap()
	if err != nil {
		h.send(conn, frame{Type: "error", Message: err.Error()})
		return
	}
	defer tap.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	h.send(conn, frame{Type: "hello", TapID: tap.ID().String()})

	// Reader goroutine: its only job is to notice the disconnect.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case rec, ok := <-tap.C():
			if !ok {
				h.send(conn, frame{Type: "closed"})
				return
			}
			if err := h.send(conn, frame{Type: "delivery", Delivery: &rec}); err != nil {
				h.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-gone:
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, f frame) error {
	payload, err := sonic.Marshal(f)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
