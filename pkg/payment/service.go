package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherguru/pkg/booking"
)

const (
	KeyPaid     = "payment.paid"
	KeyFailed   = "payment.failed"
	KeyRefunded = "payment.refunded"
)

type bookings interface {
	GetForUser(ctx context.Context, userID, bookingID string) (*booking.Booking, error)
	AttachPayment(ctx context.Context, bookingID, paymentIntentID string) error
	Confirm(ctx context.Context, bookingID, paymentIntentID string) (*booking.Booking, error)
	Fail(ctx context.Context, bookingID, paymentIntentID string) (*booking.Booking, error)
}

type ServiceInterface interface {
	CreateIntent(ctx context.Context, userID, bookingID string) (*Intent, error)
	ConfirmPayment(ctx context.Context, userID, bookingID, intentID string) (*booking.Booking, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type Service struct {
	Gateway   Gateway
	Bookings  bookings
	Publisher booking.Publisher
	Currency  string
	Logger    *slog.Logger
}

func NewService(gw Gateway, bookings bookings, pub booking.Publisher, currency string, logger *slog.Logger) *Service {
	return &Service{Gateway: gw, Bookings: bookings, Publisher: pub, Currency: currency, Logger: logger}
}

// CreateIntent opens a payment for a pending booking, reusing the one already attached if it is
// still open.
func (s *Service) CreateIntent(ctx context.Context, userID, bookingID string) (*Intent, error) {
	b, err := s.Bookings.GetForUser(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != booking.StatusPending || b.Amount <= 0 {
		return nil, ErrNothingToPay
	}

	if b.PaymentIntentID != "" {
		existing, err := s.Gateway.GetIntent(ctx, b.PaymentIntentID)
		if err == nil && existing.Status != StatusCanceled && existing.Status != StatusSucceeded {
			return existing, nil
		}
	}

	intent, err := s.Gateway.CreateIntent(ctx, b.Amount, s.Currency, b.ID, b.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if err = s.Bookings.AttachPayment(ctx, b.ID, intent.ID); err != nil {
		return nil, err
	}

	s.Logger.Info("payment intent created", "booking", b.ID, "intent", intent.ID, "amount", intent.Amount)
	return intent, nil
}

// ConfirmPayment is called by the client after the payment form completes. The intent is
// re-read from the processor rather than trusting the client's word.
func (s *Service) ConfirmPayment(ctx context.Context, userID, bookingID, intentID string) (*booking.Booking, error) {
	b, err := s.Bookings.GetForUser(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	intent, err := s.Gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.BookingID != b.ID {
		return nil, ErrIntentMismatch
	}
	if intent.Status != StatusSucceeded {
		return nil, fmt.Errorf("%w: status %s", ErrPaymentIncomplete, intent.Status)
	}

	return s.settle(ctx, intent)
}

// settle confirms the booking a succeeded intent paid for. When the booking has already left
// "pending" (expired, cancelled or paid by another intent) the charge is refunded and
// booking.ErrNotPending is returned.
func (s *Service) settle(ctx context.Context, intent *Intent) (*booking.Booking, error) {
	confirmed, err := s.Bookings.Confirm(ctx, intent.BookingID, intent.ID)
	if err == nil {
		s.publish(ctx, KeyPaid, intent)
		return confirmed, nil
	}
	if !errors.Is(err, booking.ErrNotPending) {
		return nil, err
	}

	s.Logger.Error("payment succeeded for a booking that is no longer pending, refunding",
		"booking", intent.BookingID, "intent", intent.ID, "amount", intent.Amount)
	if refundErr := s.Gateway.Refund(ctx, intent.ID); refundErr != nil {
		return nil, fmt.Errorf("refund intent %s: %w", intent.ID, refundErr)
	}
	s.publish(ctx, KeyRefunded, intent)
	return nil, err
}

func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if ev.Intent == nil || ev.Intent.BookingID == "" {
		s.Logger.Debug("webhook ignored", "event", ev.ID, "type", ev.Type)
		return nil
	}

	// A failed attempt leaves the intent usable, so the booking stays pending for a retry.
	// Only a cancelled intent gives the seats back.
	switch ev.Type {
	case EventIntentSucceeded:
		_, err = s.settle(ctx, ev.Intent)
	case EventIntentFailed:
		s.Logger.Info("payment attempt failed", "event", ev.ID, "booking", ev.Intent.BookingID, "intent", ev.Intent.ID)
		s.publish(ctx, KeyFailed, ev.Intent)
	case EventIntentCanceled:
		_, err = s.Bookings.Fail(ctx, ev.Intent.BookingID, ev.Intent.ID)
	}
	if errors.Is(err, booking.ErrNotPending) || errors.Is(err, booking.ErrIntentReplaced) {
		s.Logger.Warn("webhook for settled booking", "event", ev.ID, "type", ev.Type, "booking", ev.Intent.BookingID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s booking %s: %w", ev.Type, ev.Intent.BookingID, err)
	}

	s.Logger.Info("webhook handled", "event", ev.ID, "type", ev.Type, "booking", ev.Intent.BookingID)
	return nil
}

type message struct {
	Event      string `json:"event"`
	Version    int    `json:"version"`
	OccurredAt string `json:"occurred_at"`
	Data       Intent `json:"data"`
}

func (s *Service) publish(ctx context.Context, key string, intent *Intent) {
	data := *intent
	data.ClientSecret = ""
	msg := message{Event: key, Version: 1, OccurredAt: time.Now().UTC().Format(time.RFC3339), Data: data}
	if err := s.Publisher.PublishJSON(ctx, key, msg); err != nil {
		s.Logger.Error("publish payment event", "key", key, "intent", intent.ID, "error", err)
	}
}
