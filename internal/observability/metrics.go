package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records gateway and engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRelay records a relay invocation with its duration and outcome.
	// Outcome is "success" or the failure kind ("upstream", "connectivity", "unknown").
	RecordRelay(ctx context.Context, outcome string, duration time.Duration)

	// RecordValidationFailure records a prompt rejected before the relay ran.
	RecordValidationFailure(ctx context.Context)

	// RecordGeneration records an engine workflow generation.
	RecordGeneration(ctx context.Context, success bool, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	relayCalls        metric.Int64Counter
	relayLatency      metric.Float64Histogram
	relayFailures     metric.Int64Counter
	validationRejects metric.Int64Counter
	generations       metric.Int64Counter
	generationLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("architect")

	relayCalls, err := meter.Int64Counter("architect.relay.calls",
		metric.WithDescription("Number of relay invocations"),
	)
	if err != nil {
		return nil, err
	}

	relayLatency, err := meter.Float64Histogram("architect.relay.latency_ms",
		metric.WithDescription("Relay invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	relayFailures, err := meter.Int64Counter("architect.relay.failures",
		metric.WithDescription("Number of classified relay failures"),
	)
	if err != nil {
		return nil, err
	}

	validationRejects, err := meter.Int64Counter("architect.gateway.validation_rejects",
		metric.WithDescription("Number of prompts rejected by validation"),
	)
	if err != nil {
		return nil, err
	}

	generations, err := meter.Int64Counter("architect.engine.generations",
		metric.WithDescription("Number of workflow generations"),
	)
	if err != nil {
		return nil, err
	}

	generationLatency, err := meter.Float64Histogram("architect.engine.generation_latency_ms",
		metric.WithDescription("Workflow generation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		relayCalls:        relayCalls,
		relayLatency:      relayLatency,
		relayFailures:     relayFailures,
		validationRejects: validationRejects,
		generations:       generations,
		generationLatency: generationLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRelay records a relay invocation.
func (m *otelMetrics) RecordRelay(ctx context.Context, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("outcome", outcome),
	}

	m.relayCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.relayLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if outcome != "success" {
		m.relayFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordValidationFailure records a rejected prompt.
func (m *otelMetrics) RecordValidationFailure(ctx context.Context) {
	m.validationRejects.Add(ctx, 1)
}

// RecordGeneration records an engine workflow generation.
func (m *otelMetrics) RecordGeneration(ctx context.Context, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.generations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.generationLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
