package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/danielricci/mead-framework/internal/engine"
	"github.com/danielricci/mead-framework/internal/infrastructure/config"
	"github.com/danielricci/mead-framework/internal/infrastructure/logging"
	"github.com/danielricci/mead-framework/internal/infrastructure/monitoring"
	"github.com/danielricci/mead-framework/internal/infrastructure/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	port := flag.String("port", "", "Inspector port (overrides PORT)")
	configCheck := flag.Bool("config-check", false, "Validate configuration and exit")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *configCheck {
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Configuration invalid: %v", err)
		}
		fmt.Println("configuration ok")
		return
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	logger.Info("starting mead workbench",
		zap.String("addr", cfg.Server.Address()),
		zap.Bool("debug", cfg.Engine.Debug),
	)

	metrics := monitoring.NewMetrics()
	eng := engine.New(cfg, logger, engine.WithMetrics(metrics))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := eng.Start(ctx); err != nil {
		logger.Fatal("engine failed to start", zap.Error(err))
	}

	srv := server.New(cfg, eng, logger, metrics)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
			os.Exit(1)
		}
	case err := <-errChan:
		logger.Fatal("server error", zap.Error(err))
	}
}
