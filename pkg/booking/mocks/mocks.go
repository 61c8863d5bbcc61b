package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"gatherguru/pkg/booking"
	"gatherguru/pkg/event"
)

func bookingOrNil(args mock.Arguments) (*booking.Booking, error) {
	if b := args.Get(0); b != nil {
		return b.(*booking.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func bookingsOrNil(args mock.Arguments) ([]*booking.Booking, error) {
	if b := args.Get(0); b != nil {
		return b.([]*booking.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

type Repository struct {
	mock.Mock
}

func (m *Repository) Create(ctx context.Context, b *booking.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *Repository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	return bookingOrNil(m.Called(ctx, id))
}

func (m *Repository) ListByUser(ctx context.Context, userID string) ([]*booking.Booking, error) {
	return bookingsOrNil(m.Called(ctx, userID))
}

func (m *Repository) ListByEvent(ctx context.Context, eventID string) ([]*booking.Booking, error) {
	return bookingsOrNil(m.Called(ctx, eventID))
}

func (m *Repository) Transition(ctx context.Context, id string, from, to booking.Status, paymentIntentID string) (*booking.Booking, error) {
	return bookingOrNil(m.Called(ctx, id, from, to, paymentIntentID))
}

func (m *Repository) SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	return m.Called(ctx, id, paymentIntentID).Error(0)
}

func (m *Repository) ListPendingBefore(ctx context.Context, before time.Time) ([]*booking.Booking, error) {
	return bookingsOrNil(m.Called(ctx, before))
}

func (m *Repository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type Events struct {
	mock.Mock
}

func eventOrNil(args mock.Arguments) (*event.Event, error) {
	if e := args.Get(0); e != nil {
		return e.(*event.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Events) GetByID(ctx context.Context, id string) (*event.Event, error) {
	return eventOrNil(m.Called(ctx, id))
}

func (m *Events) ReserveSeats(ctx context.Context, id string, qty int) (*event.Event, error) {
	return eventOrNil(m.Called(ctx, id, qty))
}

func (m *Events) ReleaseSeats(ctx context.Context, id string, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

type Publisher struct {
	mock.Mock
}

func (m *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	return m.Called(ctx, key, v).Error(0)
}

type Service struct {
	mock.Mock
}

func (m *Service) Book(ctx context.Context, userID, eventID string, qty int) (*booking.Booking, error) {
	return bookingOrNil(m.Called(ctx, userID, eventID, qty))
}

func (m *Service) Cancel(ctx context.Context, userID, bookingID string) (*booking.Booking, error) {
	return bookingOrNil(m.Called(ctx, userID, bookingID))
}

func (m *Service) GetForUser(ctx context.Context, userID, bookingID string) (*booking.Booking, error) {
	return bookingOrNil(m.Called(ctx, userID, bookingID))
}

func (m *Service) AttachPayment(ctx context.Context, bookingID, paymentIntentID string) error {
	return m.Called(ctx, bookingID, paymentIntentID).Error(0)
}

func (m *Service) Confirm(ctx context.Context, bookingID, paymentIntentID string) (*booking.Booking, error) {
	return bookingOrNil(m.Called(ctx, bookingID, paymentIntentID))
}

func (m *Service) Fail(ctx context.Context, bookingID, paymentIntentID string) (*booking.Booking, error) {
	return bookingOrNil(m.Called(ctx, bookingID, paymentIntentID))
}

func (m *Service) ListByUser(ctx context.Context, userID string) ([]*booking.Booking, error) {
	return bookingsOrNil(m.Called(ctx, userID))
}

func (m *Service) ListByEvent(ctx context.Context, organizerID, eventID string) ([]*booking.Booking, error) {
	return bookingsOrNil(m.Called(ctx, organizerID, eventID))
}

func (m *Service) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
