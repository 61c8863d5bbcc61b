package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gatherguru/pkg/booking"
	"gatherguru/pkg/payment"
)

func intentOrNil(args mock.Arguments) (*payment.Intent, error) {
	if i := args.Get(0); i != nil {
		return i.(*payment.Intent), args.Error(1)
	}
	return nil, args.Error(1)
}

type Gateway struct {
	mock.Mock
}

func (m *Gateway) CreateIntent(ctx context.Context, amount int64, currency, bookingID, previousIntentID string) (*payment.Intent, error) {
	return intentOrNil(m.Called(ctx, amount, currency, bookingID, previousIntentID))
}

func (m *Gateway) Refund(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

func (m *Gateway) GetIntent(ctx context.Context, id string) (*payment.Intent, error) {
	return intentOrNil(m.Called(ctx, id))
}

func (m *Gateway) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if ev := args.Get(0); ev != nil {
		return ev.(*payment.WebhookEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

type Service struct {
	mock.Mock
}

func (m *Service) CreateIntent(ctx context.Context, userID, bookingID string) (*payment.Intent, error) {
	return intentOrNil(m.Called(ctx, userID, bookingID))
}

func (m *Service) ConfirmPayment(ctx context.Context, userID, bookingID, intentID string) (*booking.Booking, error) {
	args := m.Called(ctx, userID, bookingID, intentID)
	if b := args.Get(0); b != nil {
		return b.(*booking.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}
