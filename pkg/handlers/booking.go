package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"gatherguru/pkg/booking"
)

type BookingForm struct {
	EventID  string `json:"eventId"`
	Quantity int    `json:"quantity"`
}

type BookingHandler struct {
	Service booking.ServiceInterface
	Logger  *slog.Logger
}

func NewBookingHandler(service booking.ServiceInterface, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var form BookingForm
	if ok := DecodeJSONBody(w, r, &form); !ok {
		return
	}
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}
	if form.Quantity == 0 {
		form.Quantity = 1
	}

	b, err := h.Service.Book(r.Context(), c.User.ID, form.EventID, form.Quantity)
	if err != nil {
		fail(w, h.Logger, "book", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusCreated, b)
}

func (h *BookingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}
	bookings, err := h.Service.ListByUser(r.Context(), c.User.ID)
	if err != nil {
		fail(w, h.Logger, "list bookings", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, bookings)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}
	b, err := h.Service.Cancel(r.Context(), c.User.ID, mux.Vars(r)[muxVarID])
	if err != nil {
		fail(w, h.Logger, "cancel booking", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, b)
}
