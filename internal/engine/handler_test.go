package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubWorkflowGenerator scripts the generator outcome.
type stubWorkflowGenerator struct {
	doc Document
	err error
}

func (s *stubWorkflowGenerator) Generate(_ context.Context, _ string) (Document, error) {
	return s.doc, s.err
}

func postEngine(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestEngineHandleGenerateSuccess(t *testing.T) {
	doc := Document{"name": "X", "nodes": []any{}, "connections": map[string]any{}}
	h := NewHandler(&stubWorkflowGenerator{doc: doc}, discardLogger())

	rec := postEngine(t, h, `{"prompt":"summarize team updates"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "X", got.Name())
}

func TestEngineHandleGenerateFailure(t *testing.T) {
	h := NewHandler(&stubWorkflowGenerator{
		err: errors.New("Workflow generation failed: model timeout"),
	}, discardLogger())

	rec := postEngine(t, h, `{"prompt":"summarize team updates"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Workflow generation failed: model timeout", resp.Detail)
}

func TestEngineHandleGenerateEmptyPrompt(t *testing.T) {
	h := NewHandler(&stubWorkflowGenerator{}, discardLogger())

	rec := postEngine(t, h, `{"prompt":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEngineHandleGenerateMalformedBody(t *testing.T) {
	h := NewHandler(&stubWorkflowGenerator{}, discardLogger())

	rec := postEngine(t, h, `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEngineHandleHealth(t *testing.T) {
	h := NewHandler(&stubWorkflowGenerator{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
