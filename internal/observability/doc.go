// Package observability provides structured logging for the reader.
//
// Its one subpackage, logging, wraps log/slog with a file-backed handler:
// since the terminal's alternate screen buffer occupies stdout/stderr while
// the UI is running, logs go to app.log under the config directory instead.
//
// Example usage:
//
//	import "feedtui/internal/observability/logging"
//
//	func main() {
//	    logger, closer, _ := logging.New(configDir)
//	    defer closer.Close()
//	    logger.Info("application started")
//	}
package observability
