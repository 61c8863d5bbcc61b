package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"gatherguru/pkg/claims"
	"gatherguru/pkg/user"
)

type RegisterForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileForm struct {
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

// AuthResponse is returned by register and every login endpoint.
type AuthResponse struct {
	Token string      `json:"token"`
	Role  claims.Role `json:"role"`
	User  *user.User  `json:"user"`
}

type Handler struct {
	Service user.ServiceInterface
	Logger  *slog.Logger
	Secret  []byte
	now     func() time.Time
}

func NewUserHandler(service user.ServiceInterface, secret []byte, logger *slog.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  logger,
		Secret:  secret,
		now:     time.Now,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	role := claims.RoleUser
	if req.Role != "" {
		parsed, err := claims.ParseRole(req.Role)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		role = parsed
	}

	u, err := h.Service.Register(r.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		fail(w, h.Logger, "register", err)
		return
	}
	h.issueToken(w, u, http.StatusCreated, "register")
}

// Login returns the handler for the login form of one role.
func (h *Handler) Login(role claims.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginForm
		if ok := DecodeJSONBody(w, r, &req); !ok {
			return
		}

		u, err := h.Service.Login(r.Context(), req.Email, req.Password, role)
		if err != nil {
			h.Logger.Info("login rejected", "role", role.String(), "error", err)
			fail(w, h.Logger, "login", err)
			return
		}
		h.issueToken(w, u, http.StatusOK, "login")
	}
}

func (h *Handler) issueToken(w http.ResponseWriter, u *user.User, status int, action string) {
	token, err := claims.NewToken(u.Claims(), h.Secret, h.now())
	if err != nil {
		h.Logger.Error("token signing", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if ok := writeJSON(w, h.Logger, status, AuthResponse{Token: token, Role: u.Role, User: u}); ok {
		h.Logger.Info(action, "user", u.ID, "role", u.Role.String())
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}
	if err := h.Service.Logout(r.Context(), c.User.ID); err != nil {
		fail(w, h.Logger, "logout", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusOK, map[string]string{"message": "logged out"}); ok {
		h.Logger.Info("logout", "user", c.User.ID)
	}
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}
	u, err := h.Service.Profile(r.Context(), c.User.ID)
	if err != nil {
		fail(w, h.Logger, "profile", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, u)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}

	u, err := h.Service.UpdateProfile(r.Context(), c.User.ID, req.Name, req.ProfileImage)
	if err != nil {
		fail(w, h.Logger, "update profile", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusOK, u); ok {
		h.Logger.Info("profile updated", "user", c.User.ID)
	}
}
