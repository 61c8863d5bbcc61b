package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gatherguru/pkg/claims"
	"gatherguru/pkg/session/mocks"
	"gatherguru/pkg/user"
)

var testSecret = []byte("middleware-secret")

type stubAccounts map[string]*user.User

func (s stubAccounts) Profile(_ context.Context, id string) (*user.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func newTestRouter(sessions *mocks.SessionRepo, accounts stubAccounts) *mux.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	public := PublicRoutes{"/api/events": http.MethodGet}

	r := mux.NewRouter()
	r.Use(CheckJWT(testSecret, public, sessions, accounts, logger))

	echo := func(w http.ResponseWriter, r *http.Request) {
		if c, ok := claims.FromContext(r.Context()); ok {
			_, _ = io.WriteString(w, c.User.ID)
			return
		}
		_, _ = io.WriteString(w, "anonymous")
	}
	r.HandleFunc("/api/events", echo).Methods(http.MethodGet, http.MethodPost)
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(RequireRole(claims.RoleAdmin))
	admin.HandleFunc("/stats", echo).Methods(http.MethodGet)
	return r
}

func bearer(t *testing.T, id string, role claims.Role) string {
	t.Helper()
	token, err := claims.NewToken(claims.UserClaims{ID: id, Role: role}, testSecret, time.Now())
	require.NoError(t, err)
	return "Bearer " + token
}

func TestCheckJWT(t *testing.T) {
	sessions := new(mocks.SessionRepo)
	sessions.On("IsValid", mock.Anything, "u1").Return(true, nil)
	sessions.On("IsValid", mock.Anything, "u2").Return(false, nil)
	sessions.On("IsValid", mock.Anything, "u3").Return(true, nil)
	sessions.On("IsValid", mock.Anything, "u4").Return(false, errors.New("db down"))
	sessions.On("IsValid", mock.Anything, "a1").Return(true, nil)
	sessions.On("IsValid", mock.Anything, "u5").Return(false, nil)
	sessions.On("IsValid", mock.Anything, "u6").Return(false, nil)

	router := newTestRouter(sessions, stubAccounts{
		"u1": {ID: "u1", Status: user.StatusActive},
		"u2": {ID: "u2", Status: user.StatusActive},
		"u3": {ID: "u3", Status: user.StatusBlocked},
		"u4": {ID: "u4", Status: user.StatusActive},
		"u5": {ID: "u5", Status: user.StatusBlocked},
		"u6": {ID: "u6", Status: user.StatusInactive},
		"a1": {ID: "a1", Status: user.StatusActive},
	})

	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		wantCode   int
		wantBody   string
		wantStatus string
	}{
		{name: "public route", method: http.MethodGet, path: "/api/events", wantCode: http.StatusOK, wantBody: "anonymous"},
		{name: "public path wrong method", method: http.MethodPost, path: "/api/events", wantCode: http.StatusUnauthorized},
		{name: "not bearer", method: http.MethodPost, path: "/api/events", auth: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodPost, path: "/api/events", auth: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "valid token", method: http.MethodPost, path: "/api/events", auth: bearer(t, "u1", claims.RoleUser), wantCode: http.StatusOK, wantBody: "u1"},
		{name: "session gone", method: http.MethodPost, path: "/api/events", auth: bearer(t, "u2", claims.RoleUser), wantCode: http.StatusUnauthorized},
		{name: "session lookup fails", method: http.MethodPost, path: "/api/events", auth: bearer(t, "u4", claims.RoleUser), wantCode: http.StatusUnauthorized},
		{name: "blocked account", method: http.MethodPost, path: "/api/events", auth: bearer(t, "u3", claims.RoleUser), wantCode: http.StatusForbidden, wantStatus: "blocked"},
		{name: "blocked account after session ended", method: http.MethodPost, path: "/api/events", auth: bearer(t, "u5", claims.RoleUser), wantCode: http.StatusForbidden, wantStatus: "blocked"},
		{name: "deactivated account after session ended", method: http.MethodPost, path: "/api/events", auth: bearer(t, "u6", claims.RoleUser), wantCode: http.StatusForbidden, wantStatus: "inactive"},
		{name: "deleted account", method: http.MethodPost, path: "/api/events", auth: bearer(t, "gone", claims.RoleUser), wantCode: http.StatusUnauthorized},
		{name: "role allowed", method: http.MethodGet, path: "/api/admin/stats", auth: bearer(t, "a1", claims.RoleAdmin), wantCode: http.StatusOK, wantBody: "a1"},
		{name: "role denied", method: http.MethodGet, path: "/api/admin/stats", auth: bearer(t, "u1", claims.RoleUser), wantCode: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, path: "/api/nowhere", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, resp.Body.String())
			}
			if tt.wantStatus != "" {
				var body envelope
				require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
				assert.Equal(t, tt.wantStatus, body.Status)
				assert.False(t, body.Success)
			}
		})
	}
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	h := RequireRole(claims.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Panic(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "internal server error")
}
