package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gatherguru/pkg/booking"
	"gatherguru/pkg/event"
)

// EventForm is the body of create and update requests.
type EventForm struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"startsAt"`
	Price       int64     `json:"price"`
	Capacity    int       `json:"capacity"`
	Image       string    `json:"image"`
}

func (f EventForm) event() *event.Event {
	return &event.Event{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
		Venue:       f.Venue,
		StartsAt:    f.StartsAt,
		Price:       f.Price,
		Capacity:    f.Capacity,
		Image:       f.Image,
	}
}

type EventHandler struct {
	Service  event.ServiceInterface
	Bookings booking.ServiceInterface
	Logger   *slog.Logger
}

func NewEventHandler(service event.ServiceInterface, bookings booking.ServiceInterface, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		Service:  service,
		Bookings: bookings,
		Logger:   logger,
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	upcoming, _ := strconv.ParseBool(q.Get("upcoming"))

	events, err := h.Service.List(r.Context(), event.Filter{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		Upcoming: upcoming,
	})
	if err != nil {
		fail(w, h.Logger, "list events", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Service.GetByID(r.Context(), mux.Vars(r)[muxVarID])
	if err != nil {
		fail(w, h.Logger, "get event", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, ev)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form EventForm
	if ok := DecodeJSONBody(w, r, &form); !ok {
		return
	}
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}

	ev := form.event()
	if err := h.Service.Create(r.Context(), c.User.ID, ev); err != nil {
		fail(w, h.Logger, "create event", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusCreated, ev); ok {
		h.Logger.Info("event created", "event", ev.ID, "organizer", c.User.ID)
	}
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var form EventForm
	if ok := DecodeJSONBody(w, r, &form); !ok {
		return
	}
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)[muxVarID]
	ev, err := h.Service.Update(r.Context(), c.User.ID, id, form.event())
	if err != nil {
		fail(w, h.Logger, "update event", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusOK, ev); ok {
		h.Logger.Info("event updated", "event", id, "organizer", c.User.ID)
	}
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)[muxVarID]
	if err := h.Service.Delete(r.Context(), c.User, id); err != nil {
		fail(w, h.Logger, "delete event", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusOK, map[string]string{"message": "event deleted"}); ok {
		h.Logger.Info("event deleted", "event", id, "by", c.User.ID, "role", c.User.Role.String())
	}
}

func (h *EventHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}
	events, err := h.Service.ListByOrganizer(r.Context(), c.User.ID)
	if err != nil {
		fail(w, h.Logger, "list organizer events", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, events)
}

func (h *EventHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}
	bookings, err := h.Bookings.ListByEvent(r.Context(), c.User.ID, mux.Vars(r)[muxVarID])
	if err != nil {
		fail(w, h.Logger, "list event bookings", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, bookings)
}
