package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

func Panic(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered", "path", r.URL.Path, "error", err, "stack", string(debug.Stack()))
					deny(w, http.StatusInternalServerError, envelope{Message: "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
