// Package server exposes the gateway's inbound HTTP surface: prompt
// validation, the /workflow/generate route, and the mapping from classified
// relay failures to response statuses.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taskarchitect/architect/internal/observability"
	"github.com/taskarchitect/architect/internal/relay"
)

// Generator relays a validated prompt and returns the AI Engine's body
// verbatim. Satisfied by *relay.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (json.RawMessage, error)
}

// generateRequest is the inbound body for POST /workflow/generate.
type generateRequest struct {
	Prompt string `json:"prompt"`
}

// errorResponse mirrors the AI Engine's error shape so callers see one
// error format end to end.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Handler serves the gateway routes.
type Handler struct {
	relay   Generator
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// NewHandler creates a gateway handler. A nil metrics recorder is replaced
// with a no-op.
func NewHandler(gen Generator, logger *slog.Logger, metrics observability.MetricsRecorder) *Handler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Handler{relay: gen, logger: logger, metrics: metrics}
}

// Routes returns the gateway mux with all routes registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /workflow/generate", h.handleGenerate)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	return mux
}

// handleGenerate validates the prompt, relays it, and maps the outcome:
// validation 400, upstream 500, connectivity 503, unknown 500.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ValidatePrompt(req.Prompt); err != nil {
		h.metrics.RecordValidationFailure(r.Context())
		if h.logger != nil {
			h.logger.Warn("prompt rejected", slog.String("reason", err.Error()))
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.relay.Generate(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}

// handleHealth reports liveness only; it does not probe the AI Engine.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// statusFor maps a classified relay error to a response status. Validation
// failures never reach here; they are rejected before the relay call.
// Upstream and unknown failures both collapse to 500; the upstream status
// code survives on *relay.UpstreamError if forwarding is ever wanted.
func statusFor(err error) int {
	switch relay.KindOf(err) {
	case relay.KindConnectivity:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Detail: detail})
}
