// Package simlog provides the package-level structured logger used by the
// simulation driver. The core has nothing worth logging at Info level on
// the hot path; the driver logs one Debug line per step, and an aborted
// step is returned to the caller as an error (the demo command logs it at
// Error level), following the precedent set by gazed-vu/physics for internal
// invariant diagnostics.
package simlog

import "log/slog"

var logger = slog.Default()

// SetLogger overrides the package-level logger, e.g. to attach a handler
// with a different level or sink.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the current package-level logger.
func Logger() *slog.Logger {
	return logger
}
