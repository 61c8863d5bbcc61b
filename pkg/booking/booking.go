package booking

import (
	"context"
	"errors"
	"time"

	"gatherguru/pkg/event"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

const MaxQuantity = 10

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotOwner        = errors.New("booking belongs to another user")
	ErrNotPending      = errors.New("booking is not pending")
	ErrAlreadyCanceled = errors.New("booking is already cancelled")
	ErrIntentReplaced  = errors.New("payment was replaced by a newer one")
	ErrValidation      = errors.New("validation error")
)

type Booking struct {
	ID              string    `bson:"_id" json:"id"`
	TicketCode      string    `bson:"ticketCode" json:"ticketCode"`
	EventID         string    `bson:"eventId" json:"eventId"`
	UserID          string    `bson:"userId" json:"userId"`
	Quantity        int       `bson:"quantity" json:"quantity"`
	Amount          int64     `bson:"amount" json:"amount"`
	Status          Status    `bson:"status" json:"status"`
	PaymentIntentID string    `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Booking, error)
	// Transition moves a booking from one status to another and fails with ErrNotPending
	// (or ErrBookingNotFound) when the stored status is not from.
	Transition(ctx context.Context, id string, from, to Status, paymentIntentID string) (*Booking, error)
	SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error
	ListPendingBefore(ctx context.Context, before time.Time) ([]*Booking, error)
	Count(ctx context.Context) (int64, error)
}

// Events is the part of the event store bookings need.
type Events interface {
	GetByID(ctx context.Context, id string) (*event.Event, error)
	ReserveSeats(ctx context.Context, id string, qty int) (*event.Event, error)
	ReleaseSeats(ctx context.Context, id string, qty int) error
}

// Publisher sends domain events to the message broker.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}
