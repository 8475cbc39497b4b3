package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"application-service/internal/httputil"
)

// Recoverer converts panics into a 500 response. In production the body is a
// generic message; elsewhere the panic value is included for debugging.
func Recoverer(production bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "unhandled error", "error", rec, "path", r.URL.Path)
					if production {
						httputil.RespondWithError(w, http.StatusInternalServerError, "Server error")
					} else {
						httputil.RespondWithError(w, http.StatusInternalServerError, fmt.Sprintf("%v", rec))
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
