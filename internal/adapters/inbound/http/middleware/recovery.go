package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/architeacher/device-inventory/pkg/logger"
)

const internalErrorBody = `{"message":"Internal server error","status":500}`

// Recovery returns a middleware that recovers from panics.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						// the client connection is gone, let net/http abort it quietly
						panic(rvr)
					}

					var errMsg string
					switch v := rvr.(type) {
					case string:
						errMsg = v
					case error:
						errMsg = v.Error()
					default:
						errMsg = fmt.Sprintf("%v", v)
					}

					reqLogger := log.WithContext(r.Context())
					reqLogger.Error().
						Str("error", errMsg).
						Str("stack", string(debug.Stack())).
						Str("path", r.URL.Path).
						Str("method", r.Method).
						Msg("panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(internalErrorBody))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
