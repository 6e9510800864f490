// Package relay forwards validated prompts to the AI Engine and classifies
// failures into a closed set: upstream, connectivity, unknown.
//
// A relay invocation makes exactly one outbound call. Nothing is retried,
// nothing is cached, and no state is shared across invocations beyond the
// read-only base URL resolved at construction.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/taskarchitect/architect/internal/observability"
)

const (
	// DefaultBaseURL is used when no AI Engine address is configured.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the ceiling on one outbound call.
	DefaultTimeout = 30 * time.Second

	// generatePath is the fixed path suffix appended to the base URL.
	generatePath = "/generate"
)

// generateRequest is the outbound body sent to the AI Engine.
type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Client relays prompts to the AI Engine.
type Client struct {
	http     *http.Client
	baseURL  string
	endpoint string
	timeout  time.Duration
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the AI Engine base URL. A trailing slash is trimmed.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithTimeout sets the ceiling on one outbound call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger. A nil logger disables relay logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSpanManager sets the span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *Client) { c.spans = s }
}

// WithHTTPClient replaces the underlying HTTP client. The client's Timeout
// is overwritten with the relay timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a relay Client. The resolved base URL is logged once here and
// never changes afterwards.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	c.http.Timeout = c.timeout
	c.endpoint = c.baseURL + generatePath

	if c.logger != nil {
		c.logger.Info("relay configured",
			slog.String("base_url", c.baseURL),
			slog.Duration("timeout", c.timeout),
		)
	}
	return c
}

// Endpoint returns the resolved AI Engine endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Generate forwards prompt to the AI Engine and returns the response body
// verbatim. The prompt is assumed already validated; it is not re-validated
// here.
//
// On failure the returned error is one of *UpstreamError,
// *ConnectivityError, or *UnknownError, classified in that precedence order.
func (c *Client) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	done := observability.TimedOperation()
	ctx, span := c.spans.StartRelaySpan(ctx, c.endpoint)

	result, err := c.generate(ctx, prompt)

	durationMs := done()
	duration := time.Duration(durationMs) * time.Millisecond
	c.spans.EndSpanWithError(span, err)

	if err != nil {
		kind := KindOf(err)
		c.metrics.RecordRelay(ctx, kind.String(), duration)
		observability.LogRelayFailure(c.logger, kind.String(), unwrapForLog(err), durationMs)
		return nil, err
	}

	c.metrics.RecordRelay(ctx, "success", duration)
	observability.LogRelaySuccess(c.logger, durationMs, len(result))
	return result, nil
}

// generate performs the single outbound call and classifies its outcome.
func (c *Client) generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	observability.LogRelayStart(c.logger, c.endpoint, len(prompt))

	payload, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return nil, &UnknownError{Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &UnknownError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID := observability.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(observability.RequestIDHeader, requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// No HTTP response was received: timeout, refusal, or DNS failure.
		return nil, &ConnectivityError{Timeout: c.timeout, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnknownError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = DefaultUpstreamDetail
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Detail: detail}
	}

	return json.RawMessage(body), nil
}

// unwrapForLog prefers the underlying cause when one exists, so logs carry
// the raw detail that the caller-facing message replaces.
func unwrapForLog(err error) error {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		if cause := u.Unwrap(); cause != nil {
			return cause
		}
	}
	return err
}
