/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the
workbench, tracking inspector HTTP requests, registry pool sizes,
multicast fan-out, dispatcher throughput and WebSocket connections. Each
Metrics value owns its own Prometheus registry so collectors can coexist
within one process.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to the Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record domain metrics
	metrics.SetRegistryResources("signals", hub.Count())
	metrics.RecordMulticast("signals", "model-refresh", delivered)

# Metrics Endpoint

Expose the collector's exposition handler:

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
