// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to an in-memory ring buffer served over the API
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"engine": "debug",  // Per-module overrides
//			"api":    "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("engine")
//	logger.Info("Starting up", "torch", name)
//	logger.Debug("Details", "effect", effect)
//	logger.Error("Failed", "error", err)
//
// Add contextual attributes:
//
//	logger := logging.GetLogger("engine").With("effect_id", id)
//	logger.Info("Effect started")  // Includes effect_id in all logs
//
// # Viewing Logs
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t strobed              # All strobed logs
//	journalctl -t strobed -f           # Follow live
//	journalctl -t strobed --since "5m" # Last 5 minutes
//	journalctl -t strobed -p err       # Errors only
//
// Filter by structured fields:
//
//	journalctl -t strobed MODULE=engine
//	journalctl -t strobed EFFECT_ID=effect_6f2a
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	engine = "debug"
//	api = "warn"
package logging
