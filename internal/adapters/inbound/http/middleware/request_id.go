package middleware

import (
	"net/http"

	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

type contextKey string

// RequestID propagates the caller's X-Request-Id or generates one, echoing it
// back on the response and exposing it to request-scoped loggers.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), requestID)))
		})
	}
}
