package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gatherguru/pkg/booking"
	"gatherguru/pkg/claims"
	"gatherguru/pkg/event"
	"gatherguru/pkg/payment"
	"gatherguru/pkg/user"
)

const (
	muxVarID        = "id"
	maxBodyBytes    = 8 << 20
	contentTypeJSON = "application/json"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	// Status carries the account status on 403s for inactive or blocked accounts.
	Status string `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) bool {
	resp, err := json.Marshal(Envelope{Success: true, Data: data})
	if err != nil {
		logger.Error("failed to serialize JSON response", "error", err)
		writeError(w, http.StatusInternalServerError, "failed json marshal")
		return false
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(resp); err != nil {
		logger.Error("failed to write response to client", "error", err)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Success: false, Message: msg}); err != nil {
		return
	}
}

func DecodeJSONBody(w http.ResponseWriter, r *http.Request, req any) bool {
	if r.Header.Get("Content-Type") != contentTypeJSON {
		writeError(w, http.StatusBadRequest, "invalid Content-Type")
		return false
	}

	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}

	return true
}

func getClaimsFromContext(w http.ResponseWriter, r *http.Request) (*claims.Claims, bool) {
	c, ok := claims.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return c, true
}

// statusFor maps domain errors onto HTTP status codes; anything unknown is a server error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, user.ErrValidation),
		errors.Is(err, event.ErrValidation),
		errors.Is(err, event.ErrInvalidID),
		errors.Is(err, booking.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrAccountInactive),
		errors.Is(err, user.ErrAccountBlocked),
		errors.Is(err, event.ErrNotOwner),
		errors.Is(err, booking.ErrNotOwner),
		errors.Is(err, payment.ErrIntentMismatch):
		return http.StatusForbidden
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrUserExists),
		errors.Is(err, event.ErrSoldOut),
		errors.Is(err, booking.ErrNotPending),
		errors.Is(err, booking.ErrAlreadyCanceled),
		errors.Is(err, payment.ErrNothingToPay):
		return http.StatusConflict
	case errors.Is(err, payment.ErrPaymentIncomplete):
		return http.StatusPaymentRequired
	case errors.Is(err, payment.ErrBadSignature):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes err with its mapped status, hiding the text of unexpected errors.
func fail(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(action, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	body := Envelope{Success: false, Message: err.Error(), Status: accountStatus(err)}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func accountStatus(err error) string {
	switch {
	case errors.Is(err, user.ErrAccountInactive):
		return string(user.StatusInactive)
	case errors.Is(err, user.ErrAccountBlocked):
		return string(user.StatusBlocked)
	}
	return ""
}
