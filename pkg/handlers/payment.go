package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"gatherguru/pkg/payment"
)

const maxWebhookBytes = 64 << 10

type IntentForm struct {
	BookingID string `json:"bookingId"`
}

type ConfirmForm struct {
	BookingID       string `json:"bookingId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type PaymentHandler struct {
	Service payment.ServiceInterface
	Logger  *slog.Logger
}

func NewPaymentHandler(service payment.ServiceInterface, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{Service: service, Logger: logger}
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var form IntentForm
	if ok := DecodeJSONBody(w, r, &form); !ok {
		return
	}
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}

	intent, err := h.Service.CreateIntent(r.Context(), c.User.ID, form.BookingID)
	if err != nil {
		fail(w, h.Logger, "create payment intent", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, intent)
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var form ConfirmForm
	if ok := DecodeJSONBody(w, r, &form); !ok {
		return
	}
	c, ok := getClaimsFromContext(w, r)
	if !ok {
		return
	}

	b, err := h.Service.ConfirmPayment(r.Context(), c.User.ID, form.BookingID, form.PaymentIntentID)
	if err != nil {
		fail(w, h.Logger, "confirm payment", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusOK, b); ok {
		h.Logger.Info("payment confirmed", "booking", b.ID, "user", c.User.ID)
	}
}

// Webhook reads the raw body: the signature covers the exact bytes sent.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if err := h.Service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		fail(w, h.Logger, "payment webhook", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, map[string]bool{"received": true})
}
