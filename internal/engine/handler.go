package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// WorkflowGenerator produces a workflow document for a prompt.
// Satisfied by *Generator.
type WorkflowGenerator interface {
	Generate(ctx context.Context, prompt string) (Document, error)
}

// promptRequest is the inbound body for POST /generate.
type promptRequest struct {
	Prompt string `json:"prompt"`
}

// errorResponse is the engine's error body. The gateway relay extracts the
// detail field from it.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Handler serves the engine routes.
type Handler struct {
	gen    WorkflowGenerator
	logger *slog.Logger
}

// NewHandler creates an engine handler.
func NewHandler(gen WorkflowGenerator, logger *slog.Logger) *Handler {
	return &Handler{gen: gen, logger: logger}
}

// Routes returns the engine mux with all routes registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate", h.handleGenerate)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	return mux
}

// handleGenerate produces a workflow document for the posted prompt.
// Generation failures become 500 with the failure message as detail, the
// contract the gateway's relay classifies against.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt must not be empty")
		return
	}

	doc, err := h.gen.Generate(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

// handleHealth reports liveness only.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Detail: detail})
}
