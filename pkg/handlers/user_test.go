package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gatherguru/pkg/claims"
	"gatherguru/pkg/handlers"
	"gatherguru/pkg/user"
	"gatherguru/pkg/user/mocks"
)

var secret = []byte("handler-secret")

func TestLoginHandler(t *testing.T) {
	m := new(mocks.Service)
	m.On("Login", mock.Anything, "ada@example.com", "correct", claims.RoleUser).
		Return(&user.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: claims.RoleUser, Status: user.StatusActive}, nil)
	m.On("Login", mock.Anything, "ghost@example.com", "correct", claims.RoleUser).Return(nil, user.ErrUserNotFound)
	m.On("Login", mock.Anything, "ada@example.com", "wrong", claims.RoleUser).Return(nil, user.ErrInvalidCredentials)
	m.On("Login", mock.Anything, "blocked@example.com", "correct", claims.RoleUser).Return(nil, user.ErrAccountBlocked)
	m.On("Login", mock.Anything, "crash@example.com", "correct", claims.RoleUser).Return(nil, errors.New("db down"))

	handler := handlers.NewUserHandler(m, secret, quietLogger())

	tests := []struct {
		name           string
		body           string
		contentType    string
		expectedStatus int
		expectedError  string
		accountStatus  string
	}{
		{
			name:           "Successful login",
			body:           `{"email":"ada@example.com","password":"correct"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "User not found",
			body:           `{"email":"ghost@example.com","password":"correct"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "user not found",
		},
		{
			name:           "Invalid credentials",
			body:           `{"email":"ada@example.com","password":"wrong"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "invalid credentials",
		},
		{
			name:           "Blocked account",
			body:           `{"email":"blocked@example.com","password":"correct"}`,
			expectedStatus: http.StatusForbidden,
			expectedError:  "account is blocked",
			accountStatus:  "blocked",
		},
		{
			name:           "Internal error is hidden",
			body:           `{"email":"crash@example.com","password":"correct"}`,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal server error",
		},
		{
			name:           "Bad Content-Type",
			body:           `{"email":"ada@example.com","password":"correct"}`,
			contentType:    "text/plain",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid Content-Type",
		},
		{
			name:           "Bad JSON",
			body:           `{"email" oops "ada@example.com"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad json",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := jsonRequest(http.MethodPost, "/api/auth/login", test.body)
			if test.contentType != "" {
				req.Header.Set("Content-Type", test.contentType)
			}
			resp := httptest.NewRecorder()

			handler.Login(claims.RoleUser)(resp, req)

			assert.Equal(t, test.expectedStatus, resp.Code)
			env := decode(t, resp)
			if test.expectedError != "" {
				assert.False(t, env.Success)
				assert.Equal(t, test.expectedError, env.Message)
				assert.Equal(t, test.accountStatus, env.Status)
				return
			}

			var auth handlers.AuthResponse
			require.NoError(t, json.Unmarshal(env.Data, &auth))
			assert.Equal(t, claims.RoleUser, auth.Role)

			c, err := claims.Parse(auth.Token, secret)
			require.NoError(t, err)
			assert.Equal(t, "u1", c.User.ID)
			assert.Equal(t, "ada@example.com", c.User.Email)
			assert.NotContains(t, string(env.Data), "password")
		})
	}
}

func TestRegister(t *testing.T) {
	m := new(mocks.Service)
	handler := handlers.NewUserHandler(m, secret, quietLogger())

	t.Run("organizer", func(t *testing.T) {
		m.On("Register", mock.Anything, "Org", "org@example.com", "secret1", claims.RoleOrganizer).
			Return(&user.User{ID: "o1", Name: "Org", Email: "org@example.com", Role: claims.RoleOrganizer}, nil).Once()

		resp := httptest.NewRecorder()
		handler.Register(resp, jsonRequest(http.MethodPost, "/api/auth/register",
			`{"name":"Org","email":"org@example.com","password":"secret1","role":"organizer"}`))

		assert.Equal(t, http.StatusCreated, resp.Code)
		var auth handlers.AuthResponse
		require.NoError(t, json.Unmarshal(decode(t, resp).Data, &auth))
		assert.Equal(t, claims.RoleOrganizer, auth.Role)
	})

	t.Run("defaults to attendee", func(t *testing.T) {
		m.On("Register", mock.Anything, "Ada", "ada@example.com", "secret1", claims.RoleUser).
			Return(nil, user.ErrUserExists).Once()

		resp := httptest.NewRecorder()
		handler.Register(resp, jsonRequest(http.MethodPost, "/api/auth/register",
			`{"name":"Ada","email":"ada@example.com","password":"secret1"}`))

		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "user already exists", decode(t, resp).Message)
	})

	t.Run("unknown role", func(t *testing.T) {
		resp := httptest.NewRecorder()
		handler.Register(resp, jsonRequest(http.MethodPost, "/api/auth/register",
			`{"name":"Ada","email":"ada@example.com","password":"secret1","role":"root"}`))

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("validation", func(t *testing.T) {
		m.On("Register", mock.Anything, "", "x", "1", claims.RoleUser).
			Return(nil, user.ErrValidation).Once()

		resp := httptest.NewRecorder()
		handler.Register(resp, jsonRequest(http.MethodPost, "/api/auth/register", `{"name":"","email":"x","password":"1"}`))

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestLogoutAndProfile(t *testing.T) {
	m := new(mocks.Service)
	handler := handlers.NewUserHandler(m, secret, quietLogger())

	t.Run("logout", func(t *testing.T) {
		m.On("Logout", mock.Anything, "u1").Return(nil).Once()

		resp := httptest.NewRecorder()
		handler.Logout(resp, as(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), "u1", claims.RoleUser))

		assert.Equal(t, http.StatusOK, resp.Code)
		m.AssertCalled(t, "Logout", mock.Anything, "u1")
	})

	t.Run("no claims", func(t *testing.T) {
		resp := httptest.NewRecorder()
		handler.Profile(resp, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("update profile", func(t *testing.T) {
		m.On("UpdateProfile", mock.Anything, "u1", "Ada L.", "").
			Return(&user.User{ID: "u1", Name: "Ada L.", Role: claims.RoleUser}, nil).Once()

		resp := httptest.NewRecorder()
		req := as(jsonRequest(http.MethodPut, "/api/profile", `{"name":"Ada L."}`), "u1", claims.RoleUser)
		handler.UpdateProfile(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		var u user.User
		require.NoError(t, json.Unmarshal(decode(t, resp).Data, &u))
		assert.Equal(t, "Ada L.", u.Name)
	})
}
