package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielricci/mead-framework/internal/domain/data"
	"github.com/danielricci/mead-framework/internal/domain/dispatch"
	"github.com/danielricci/mead-framework/internal/domain/registry"
	"github.com/danielricci/mead-framework/internal/domain/signal"
	"github.com/danielricci/mead-framework/internal/infrastructure/config"
	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/infrastructure/monitoring"
	"github.com/danielricci/mead-framework/internal/shared/id"
)

// Engine is the explicit registry context of one process: it owns the
// catalog, the asynchronous dispatcher and the persistent data store,
// and threads them through every component instead of exposing package
// globals.
type Engine struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics

	catalog    *registry.Catalog
	dispatcher *dispatch.Dispatcher
	store      *data.Store

	mu      sync.Mutex
	started bool
	bootAt  time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics attaches a metrics collector to the engine and everything
// it builds.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// New builds an engine from configuration: catalog, dispatcher and data
// store, all wired to the given logger.
func New(cfg *config.Config, log *logging.Logger, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.NewNop()
	}

	e := &Engine{
		cfg: cfg,
		log: log.Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.catalog = registry.NewCatalog().WithLogger(e.log)
	if e.metrics != nil {
		e.catalog.WithMetrics(e.metrics)
	}

	dispatchOpts := []dispatch.Option{
		dispatch.WithQueueSize(cfg.Dispatch.QueueSize),
		dispatch.WithTapBuffer(cfg.Dispatch.TapBuffer),
		dispatch.WithLogger(log.Named("dispatch")),
	}
	if e.metrics != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithMetrics(e.metrics))
	}
	e.dispatcher = dispatch.New(dispatchOpts...)

	e.store = data.NewStore(e.catalog, log.Named("data"))
	return e
}

// Start boots the engine: the dispatcher consumer is spawned and data
// manifests are loaded when a path or glob is configured. Starting an
// already started engine is an error.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return fmt.Errorf("engine already started")
	}
	e.started = true
	e.bootAt = time.Now()
	e.mu.Unlock()

	if err := e.dispatcher.Start(ctx); err != nil {
		e.mu.Lock()
		e.started = false
		e.bootAt = time.Time{}
		e.mu.Unlock()
		return fmt.Errorf("start dispatcher: %w", err)
	}

	if e.cfg.Data.Glob != "" {
		if _, err := e.store.LoadGlob(e.cfg.Data.Glob); err != nil {
			e.log.Warn("data glob load failed", zap.Error(err))
		}
	} else if _, err := e.store.Load(e.cfg.Data.Path); err != nil {
		e.log.Warn("data path load failed", zap.Error(err))
	}

	e.log.Info("engine started",
		zap.Int64("boot_ms", time.Since(e.bootAt).Milliseconds()),
		zap.Bool("debug", e.cfg.Engine.Debug),
	)
	return nil
}

// Stop shuts the dispatcher down, draining accepted messages.
func (e *Engine) Stop() error {
	e.dispatcher.Stop()
	e.log.Info("engine stopped", zap.Duration("uptime", e.Uptime()))
	return nil
}

// Hub returns the signal registry with the given catalog name, creating
// and registering it on first request.
func (e *Engine) Hub(name string) *signal.Hub {
	return registry.Ensure(e.catalog, name, func() *signal.Hub {
		hub := signal.NewHub(name).WithLogger(e.log.Named(name))
		if e.metrics != nil {
			hub.WithMetrics(e.metrics)
		}
		return hub
	})
}

// Catalog returns the engine's registry-of-registries.
func (e *Engine) Catalog() *registry.Catalog {
	return e.catalog
}

// Dispatcher returns the engine's asynchronous dispatcher.
func (e *Engine) Dispatcher() *dispatch.Dispatcher {
	return e.dispatcher
}

// Data returns the persistent data store.
func (e *Engine) Data() *data.Store {
	return e.store
}

// Post snapshots the hub's private bucket for kind as the target set
// and enqueues one message on the dispatcher. It returns the message id
// and the number of targets captured.
func (e *Engine) Post(hub string, kind registry.Kind, op signal.Op, payload any) (id.MessageID, int, error) {
	targets := e.Hub(hub).List(kind)
	msg := dispatch.NewMessage(nil, op, targets, payload)
	if err := e.dispatcher.Enqueue(msg); err != nil {
		return "", 0, err
	}
	return msg.ID, len(targets), nil
}

// Reset flushes and drops every non-persistent registry. Persistent
// ones, the data store among them, keep their contents.
func (e *Engine) Reset() []string {
	return e.catalog.Reset()
}

// Running reports whether any non-persistent registry tracks at least
// one instance: the session-liveness probe.
func (e *Engine) Running() bool {
	return e.catalog.Running()
}

// Uptime returns the time since Start, zero when never started.
func (e *Engine) Uptime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bootAt.IsZero() {
		return 0
	}
	return time.Since(e.bootAt)
}

// Debug reports whether the engine runs with debug features enabled.
func (e *Engine) Debug() bool {
	return e.cfg.Engine.Debug
}
