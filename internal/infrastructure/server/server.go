package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/danielricci/mead-framework/internal/api/http"
	"github.com/danielricci/mead-framework/internal/api/middleware"
	"github.com/danielricci/mead-framework/internal/api/ws"
	"github.com/danielricci/mead-framework/internal/engine"
	"github.com/danielricci/mead-framework/internal/infrastructure/config"
	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/infrastructure/monitoring"
	"github.com/danielricci/mead-framework/internal/infrastructure/tracing"
)

// Server wraps the inspector HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	http    *http.Server
	engine  *engine.Engine
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// New assembles the inspector server around a live engine.
func New(cfg *config.Config, eng *engine.Engine, logger *logging.Logger, metrics *monitoring.Metrics) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.Middleware())
	if metrics != nil {
		router.Use(monitoring.Middleware(metrics))
	}
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.Origins)))
	if cfg.RateLimit.Enabled {
		logger.Info("rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(eng, logger.Named("http"), metrics)
	wsHandler := ws.NewHandler(eng.Dispatcher(), logger.Named("ws"), metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Registry inspection
	router.GET("/registries", handlers.ListRegistries)
	router.GET("/registries/:name", handlers.GetRegistry)
	router.POST("/registries/reset", handlers.ResetRegistries)

	// Signal bus
	router.GET("/dispatch", handlers.DispatchStats)
	router.POST("/dispatch/messages", handlers.PostMessage)
	router.POST("/hubs/:name/multicast", handlers.Multicast)

	// Data store
	router.GET("/data/layers", handlers.DataLayers)
	router.GET("/data/layers/:layer", handlers.DataLayer)

	// Live dispatch stream
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
		router.GET("/metrics/json", handlers.MetricsJSON)
	}

	return &Server{
		router:  router,
		engine:  eng,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}
}

// Router exposes the gin engine, mainly for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Address()
	s.logger.Info("inspector listening", zap.String("addr", addr))

	s.http = &http.Server{Addr: addr, Handler: s.router}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully, then the engine, then
// flushes the logger.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down inspector")

	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("http shutdown failed", zap.Error(err))
			return err
		}
	}
	if err := s.engine.Stop(); err != nil {
		return err
	}
	s.logger.Sync()
	return nil
}
