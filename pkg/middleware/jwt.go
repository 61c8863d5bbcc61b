package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"gatherguru/pkg/claims"
	"gatherguru/pkg/session"
	"gatherguru/pkg/user"
)

// PublicRoutes maps mux path templates to the single method that may be called without a token.
type PublicRoutes map[string]string

type accountLookup interface {
	Profile(ctx context.Context, userID string) (*user.User, error)
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

func deny(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func unauthorized(w http.ResponseWriter) {
	deny(w, http.StatusUnauthorized, envelope{Message: "unauthorized"})
}

// CheckJWT admits a request when its bearer token verifies, the account is active and the
// user still holds a server session. Inactive or blocked accounts get 403 with their status.
func CheckJWT(secret []byte, public PublicRoutes, sessions session.Repository, accounts accountLookup, logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := mux.CurrentRoute(r)
			if route == nil {
				deny(w, http.StatusNotFound, envelope{Message: "route not found"})
				return
			}
			template, err := route.GetPathTemplate()
			if err != nil {
				deny(w, http.StatusNotFound, envelope{Message: "route not found"})
				return
			}

			if method, ok := public[template]; ok && method == r.Method {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				unauthorized(w)
				return
			}

			c, err := claims.Parse(strings.TrimPrefix(auth, "Bearer "), secret)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				unauthorized(w)
				return
			}

			// Checked before the session, which blocking an account also ends.
			account, err := accounts.Profile(r.Context(), c.User.ID)
			if err != nil {
				unauthorized(w)
				return
			}
			if err := user.StatusError(account.Status); err != nil {
				deny(w, http.StatusForbidden, envelope{Message: err.Error(), Status: string(account.Status)})
				return
			}

			ok, err := sessions.IsValid(r.Context(), c.User.ID)
			if err != nil || !ok {
				logger.Debug("no live session", "user", c.User.ID, "error", err)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(claims.WithClaims(r.Context(), c)))
		})
	}
}

// RequireRole must run after CheckJWT.
func RequireRole(roles ...claims.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := claims.FromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			for _, role := range roles {
				if c.User.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, http.StatusForbidden, envelope{Message: "insufficient permissions"})
		})
	}
}
