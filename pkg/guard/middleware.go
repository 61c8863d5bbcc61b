package guard

import (
	"log/slog"
	"net/http"
	"time"

	"gatherguru/pkg/authstate"
	"gatherguru/pkg/storage"
)

// Middleware applies a guard to page requests using the token cookie the browser sends.
// A stale cookie is expired in the response, matching what the client does with its storage.
func Middleware(kind Kind, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess authstate.Session
			if c, err := r.Cookie(storage.TokenKey); err == nil {
				sess, err = authstate.FromToken(c.Value, time.Now())
				if err != nil {
					logger.Debug("page cookie rejected", "path", r.URL.Path, "reason", err)
					http.SetCookie(w, &http.Cookie{
						Name:     storage.TokenKey,
						Path:     "/",
						MaxAge:   -1,
						Secure:   true,
						SameSite: http.SameSiteStrictMode,
					})
				}
			}

			d := Check(kind, sess)
			if !d.Allow {
				http.Redirect(w, r, d.Redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
