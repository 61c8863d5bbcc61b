package payment

import (
	"context"
	"errors"
)

// Payment intent statuses the service acts on.
const (
	StatusSucceeded = "succeeded"
	StatusCanceled  = "canceled"
)

// Webhook event types the service acts on; everything else is acknowledged and ignored.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
	EventIntentCanceled  = "payment_intent.canceled"
)

var (
	ErrNothingToPay      = errors.New("booking does not need payment")
	ErrIntentMismatch    = errors.New("payment does not belong to this booking")
	ErrPaymentIncomplete = errors.New("payment has not succeeded")
	ErrBadSignature      = errors.New("invalid webhook signature")
)

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	BookingID    string `json:"bookingId"`
}

type WebhookEvent struct {
	ID     string
	Type   string
	Intent *Intent
}

// Gateway is the payment processor. previousIntentID names the intent this one replaces, if any.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, bookingID, previousIntentID string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
	// Refund returns the full amount of a succeeded intent. Repeated calls refund once.
	Refund(ctx context.Context, intentID string) error
}
