package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/interfaces/rest"
)

// RequestID enforces the X-Request-ID header: it must be present and
// carry a UUID. The value is echoed back on the response.
func RequestID(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				rest.WriteError(w, application.NewFormatError("Header 'X-Request-ID' is missing"), logger)
				return
			}
			if _, err := uuid.Parse(requestID); err != nil {
				rest.WriteError(w, application.NewFormatError("Header 'X-Request-ID' has to be represented as UUID"), logger)
				return
			}

			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r)
		})
	}
}
