// Package observability provides structured logging, metrics, and tracing
// for the gateway and engine services.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Metrics and tracing are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// NewLogger creates a text-handler logger writing to stderr at the given
// level. Unrecognized level names fall back to info.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// EnrichLogger adds request context to a logger.
// Returns a new logger with request_id and service fields.
func EnrichLogger(logger *slog.Logger, requestID, service string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("request_id", requestID),
		slog.String("service", service),
	)
}

// LogRelayStart logs the start of a relay invocation.
func LogRelayStart(logger *slog.Logger, endpoint string, promptLen int) {
	if logger == nil {
		return
	}
	logger.Info("relay starting",
		slog.String("endpoint", endpoint),
		slog.Int("prompt_len", promptLen),
	)
}

// LogRelaySuccess logs a completed relay with the upstream response size.
func LogRelaySuccess(logger *slog.Logger, durationMs float64, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Info("relay completed",
		slog.Float64("duration_ms", durationMs),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogRelayFailure logs a classified relay failure.
// The raw error is logged here even when it is not surfaced to the caller.
func LogRelayFailure(logger *slog.Logger, kind string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("relay failed",
		slog.String("kind", kind),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogGenerationStart logs the start of a workflow generation.
func LogGenerationStart(logger *slog.Logger, promptLen int) {
	if logger == nil {
		return
	}
	logger.Info("workflow generation starting",
		slog.Int("prompt_len", promptLen),
	)
}

// LogGenerationComplete logs successful workflow generation.
func LogGenerationComplete(logger *slog.Logger, name string, nodeCount int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("workflow generated",
		slog.String("workflow_name", name),
		slog.Int("nodes", nodeCount),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogGenerationError logs workflow generation failure.
func LogGenerationError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("workflow generation failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
