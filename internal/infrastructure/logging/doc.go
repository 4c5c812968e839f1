// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Every framework subsystem (registries, dispatcher, data store, inspector)
// takes a *Logger and scopes it with Named, so one configuration drives the
// whole process.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("engine starting", zap.String("port", "8090"))
//	busLog := logger.Named("dispatch")
//	busLog.Warn("queue full", zap.String("msg_id", msgID))
package logging
