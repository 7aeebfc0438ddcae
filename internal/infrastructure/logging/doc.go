// Package logging provides structured logging using uber/zap.
//
// Every service in the backend (multiplexer, git, task store, MCP
// launcher, HTTP layer) takes a *Logger; the GUI's own console output is
// replayed through the same logger by the log-ingestion endpoint, so one
// stream carries both sides of the app.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// Construction:
//   - New(cfg): explicit Config (level, mode, output paths)
//   - NewDefault(): info-level production preset
//   - NewNop(): discard-everything logger for tests
//   - Named(name): child logger tagged with the owning subsystem
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Error("Failed to open session", zap.Error(err))
package logging
