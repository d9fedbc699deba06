package logging

import "log/slog"

// EnableTrace turns on trace records. Init sets it when the configured level is TRACE.
var EnableTrace = false

// Trace logs a message at DEBUG level, but only if EnableTrace is true.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}

// TraceDefault logs to the default logger if EnableTrace is true.
func TraceDefault(msg string, args ...any) {
	if EnableTrace {
		slog.Debug(msg, args...)
	}
}
