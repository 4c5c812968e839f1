// Package config provides 12-factor configuration management for the workbench.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Engine: engine lifecycle flags (debug)
//   - Dispatch: dispatcher queue and tap buffer sizes
//   - Data: data manifest path and glob
//   - Logging: log level and output format
//   - RateLimit: per-client rate limiting configuration
//   - CORS: allowed inspector origins
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Inspector listening on %s\n", cfg.Server.Address())
//
// Environment Variables:
//   - PORT, HOST, ENGINE_DEBUG
//   - DISPATCH_QUEUE_SIZE, DISPATCH_TAP_BUFFER
//   - DATA_PATH, DATA_GLOB
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS
package config
