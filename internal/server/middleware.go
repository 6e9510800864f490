package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskarchitect/architect/internal/observability"
)

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// WithRequestLogging assigns each request an ID, echoes it on the response,
// and logs one completion line per request. Inbound X-Request-ID values are
// honored, and the ID is stored in the request context so the relay can
// forward it on the outbound call; IDs survive the gateway-to-engine hop.
func WithRequestLogging(next http.Handler, logger *slog.Logger, service string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(observability.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(observability.RequestIDHeader, requestID)
		r = r.WithContext(observability.ContextWithRequestID(r.Context(), requestID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		done := observability.TimedOperation()

		next.ServeHTTP(rec, r)

		if logger != nil {
			observability.EnrichLogger(logger, requestID, service).Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Float64("duration_ms", done()),
			)
		}
	})
}
