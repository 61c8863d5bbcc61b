package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gatherguru/pkg/event"
	"gatherguru/pkg/generator"
)

// Routing keys of the events published on the broker.
const (
	KeyCreated   = "booking.created"
	KeyConfirmed = "booking.confirmed"
	KeyCancelled = "booking.cancelled"
)

type ServiceInterface interface {
	Book(ctx context.Context, userID, eventID string, qty int) (*Booking, error)
	Cancel(ctx context.Context, userID, bookingID string) (*Booking, error)
	GetForUser(ctx context.Context, userID, bookingID string) (*Booking, error)
	AttachPayment(ctx context.Context, bookingID, paymentIntentID string) error
	Confirm(ctx context.Context, bookingID, paymentIntentID string) (*Booking, error)
	Fail(ctx context.Context, bookingID, paymentIntentID string) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	ListByEvent(ctx context.Context, organizerID, eventID string) ([]*Booking, error)
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	Repo      Repository
	Events    Events
	Publisher Publisher
	Logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, events Events, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		Repo:      repo,
		Events:    events,
		Publisher: publisher,
		Logger:    logger,
		now:       time.Now,
	}
}

// Message is the payload published for every booking status change.
type Message struct {
	Event      string `json:"event"`
	Version    int    `json:"version"`
	OccurredAt string `json:"occurred_at"`
	Data       struct {
		BookingID string `json:"booking_id"`
		EventID   string `json:"event_id"`
		UserID    string `json:"user_id"`
		Quantity  int    `json:"quantity"`
		Amount    int64  `json:"amount"`
		Status    Status `json:"status"`
	} `json:"data"`
}

func (s *Service) publish(ctx context.Context, key string, b *Booking) {
	msg := Message{Event: key, Version: 1, OccurredAt: s.now().UTC().Format(time.RFC3339)}
	msg.Data.BookingID = b.ID
	msg.Data.EventID = b.EventID
	msg.Data.UserID = b.UserID
	msg.Data.Quantity = b.Quantity
	msg.Data.Amount = b.Amount
	msg.Data.Status = b.Status

	if err := s.Publisher.PublishJSON(ctx, key, msg); err != nil {
		s.Logger.Error("publish booking event", "key", key, "booking", b.ID, "error", err)
	}
}

// Book reserves qty seats for userID. Free events are confirmed at once, paid ones wait for payment.
func (s *Service) Book(ctx context.Context, userID, eventID string, qty int) (*Booking, error) {
	if qty < 1 || qty > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, MaxQuantity)
	}

	current, err := s.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if current.StartsAt.Before(s.now()) {
		return nil, fmt.Errorf("%w: event has already started", ErrValidation)
	}

	ev, err := s.Events.ReserveSeats(ctx, eventID, qty)
	if err != nil {
		return nil, err
	}

	code, err := generator.TicketCode()
	if err != nil {
		s.release(ctx, eventID, qty)
		return nil, fmt.Errorf("ticket code gen error: %w", err)
	}

	now := s.now().UTC()
	b := &Booking{
		ID:         uuid.NewString(),
		TicketCode: code,
		EventID:    eventID,
		UserID:     userID,
		Quantity:   qty,
		Amount:     ev.Price * int64(qty),
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if ev.Free() {
		b.Status = StatusConfirmed
	}

	if err = s.Repo.Create(ctx, b); err != nil {
		s.release(ctx, eventID, qty)
		return nil, err
	}

	s.Logger.Info("booking created", "booking", b.ID, "event", eventID, "user", userID, "status", b.Status)
	if b.Status == StatusConfirmed {
		s.publish(ctx, KeyConfirmed, b)
	} else {
		s.publish(ctx, KeyCreated, b)
	}
	return b, nil
}

func (s *Service) release(ctx context.Context, eventID string, qty int) {
	if err := s.Events.ReleaseSeats(ctx, eventID, qty); err != nil {
		s.Logger.Error("release seats", "event", eventID, "qty", qty, "error", err)
	}
}

func (s *Service) GetForUser(ctx context.Context, userID, bookingID string) (*Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrNotOwner
	}
	return b, nil
}

// Cancel withdraws a pending or confirmed booking and hands its seats back.
func (s *Service) Cancel(ctx context.Context, userID, bookingID string) (*Booking, error) {
	b, err := s.GetForUser(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, ErrAlreadyCanceled
	}

	cancelled, err := s.Repo.Transition(ctx, b.ID, b.Status, StatusCancelled, "")
	if err != nil {
		return nil, err
	}
	s.release(ctx, cancelled.EventID, cancelled.Quantity)

	s.Logger.Info("booking cancelled", "booking", b.ID, "user", userID)
	s.publish(ctx, KeyCancelled, cancelled)
	return cancelled, nil
}

func (s *Service) AttachPayment(ctx context.Context, bookingID, paymentIntentID string) error {
	return s.Repo.SetPaymentIntent(ctx, bookingID, paymentIntentID)
}

// Confirm marks a paid booking confirmed. Confirming twice with the same payment is a no-op,
// since both the client and the payment webhook report success.
func (s *Service) Confirm(ctx context.Context, bookingID, paymentIntentID string) (*Booking, error) {
	b, err := s.Repo.Transition(ctx, bookingID, StatusPending, StatusConfirmed, paymentIntentID)
	if errors.Is(err, ErrNotPending) {
		existing, getErr := s.Repo.GetByID(ctx, bookingID)
		if getErr == nil && existing.Status == StatusConfirmed && existing.PaymentIntentID == paymentIntentID {
			return existing, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking confirmed", "booking", b.ID, "payment", paymentIntentID)
	s.publish(ctx, KeyConfirmed, b)
	return b, nil
}

// Fail cancels a pending booking whose payment intent was cancelled at the processor. An intent
// that has since been replaced by a newer one leaves the booking alone with ErrIntentReplaced.
func (s *Service) Fail(ctx context.Context, bookingID, paymentIntentID string) (*Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrNotPending
	}
	if b.PaymentIntentID != paymentIntentID {
		return nil, ErrIntentReplaced
	}
	return s.expire(ctx, bookingID)
}

// expire cancels a pending booking and hands its seats back.
func (s *Service) expire(ctx context.Context, bookingID string) (*Booking, error) {
	b, err := s.Repo.Transition(ctx, bookingID, StatusPending, StatusCancelled, "")
	if err != nil {
		return nil, err
	}
	s.release(ctx, b.EventID, b.Quantity)

	s.Logger.Info("pending booking cancelled", "booking", b.ID)
	s.publish(ctx, KeyCancelled, b)
	return b, nil
}

// ExpirePending cancels bookings left unpaid for longer than ttl.
func (s *Service) ExpirePending(ctx context.Context, ttl time.Duration) ([]*Booking, error) {
	stale, err := s.Repo.ListPendingBefore(ctx, s.now().Add(-ttl).UTC())
	if err != nil {
		return nil, fmt.Errorf("list stale bookings: %w", err)
	}

	expired := make([]*Booking, 0, len(stale))
	for _, b := range stale {
		cancelled, err := s.expire(ctx, b.ID)
		if err != nil {
			// paid or cancelled in the meantime
			if errors.Is(err, ErrNotPending) {
				continue
			}
			return expired, err
		}
		expired = append(expired, cancelled)
	}
	return expired, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// ListByEvent returns an event's bookings to the organizer who owns it.
func (s *Service) ListByEvent(ctx context.Context, organizerID, eventID string) ([]*Booking, error) {
	ev, err := s.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != organizerID {
		return nil, event.ErrNotOwner
	}
	return s.Repo.ListByEvent(ctx, eventID)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.Repo.Count(ctx)
}
