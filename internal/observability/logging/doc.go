// Package logging wraps log/slog for a terminal application that cannot
// write to stdout/stderr while its alternate screen buffer is active.
//
// Example usage:
//
//	logger, closer, err := logging.New(configDir)
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	logger.Info("application started")
package logging
