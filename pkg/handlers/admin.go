package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"gatherguru/pkg/booking"
	"gatherguru/pkg/claims"
	"gatherguru/pkg/event"
	"gatherguru/pkg/user"
)

type StatusForm struct {
	Status user.Status `json:"status"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users      int   `json:"users"`
	Organizers int   `json:"organizers"`
	Events     int64 `json:"events"`
	Bookings   int64 `json:"bookings"`
}

type AdminHandler struct {
	Users    user.ServiceInterface
	Events   event.ServiceInterface
	Bookings booking.ServiceInterface
	Logger   *slog.Logger
}

func NewAdminHandler(users user.ServiceInterface, events event.ServiceInterface, bookings booking.ServiceInterface, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Events: events, Bookings: bookings, Logger: logger}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	role := claims.RoleUser
	if q := r.URL.Query().Get("role"); q != "" {
		parsed, err := claims.ParseRole(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		role = parsed
	}

	users, err := h.Users.List(r.Context(), role)
	if err != nil {
		fail(w, h.Logger, "list users", err)
		return
	}
	if users == nil {
		users = []*user.User{}
	}
	writeJSON(w, h.Logger, http.StatusOK, users)
}

func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var form StatusForm
	if ok := DecodeJSONBody(w, r, &form); !ok {
		return
	}
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)[muxVarID]
	if id == c.User.ID {
		writeError(w, http.StatusBadRequest, "cannot change your own status")
		return
	}

	if err := h.Users.SetStatus(r.Context(), id, form.Status); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		fail(w, h.Logger, "set user status", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusOK, map[string]string{"id": id, "status": string(form.Status)}); ok {
		h.Logger.Info("user status changed", "user", id, "status", form.Status, "admin", c.User.ID)
	}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var stats Stats
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() (err error) {
		stats.Users, err = h.Users.CountByRole(ctx, claims.RoleUser)
		return err
	})
	g.Go(func() (err error) {
		stats.Organizers, err = h.Users.CountByRole(ctx, claims.RoleOrganizer)
		return err
	})
	g.Go(func() (err error) {
		stats.Events, err = h.Events.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Bookings, err = h.Bookings.Count(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		fail(w, h.Logger, "stats", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, stats)
}
