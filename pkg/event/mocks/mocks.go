package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gatherguru/pkg/claims"
	"gatherguru/pkg/event"
)

func eventOrNil(args mock.Arguments) (*event.Event, error) {
	if e := args.Get(0); e != nil {
		return e.(*event.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func eventsOrNil(args mock.Arguments) ([]*event.Event, error) {
	if e := args.Get(0); e != nil {
		return e.([]*event.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

type Repository struct {
	mock.Mock
}

func (m *Repository) Create(ctx context.Context, e *event.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *Repository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	return eventOrNil(m.Called(ctx, id))
}

func (m *Repository) List(ctx context.Context, f event.Filter) ([]*event.Event, error) {
	return eventsOrNil(m.Called(ctx, f))
}

func (m *Repository) ListByOrganizer(ctx context.Context, organizerID string) ([]*event.Event, error) {
	return eventsOrNil(m.Called(ctx, organizerID))
}

func (m *Repository) Update(ctx context.Context, e *event.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *Repository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *Repository) ReserveSeats(ctx context.Context, id string, qty int) (*event.Event, error) {
	return eventOrNil(m.Called(ctx, id, qty))
}

func (m *Repository) ReleaseSeats(ctx context.Context, id string, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

func (m *Repository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type Service struct {
	mock.Mock
}

func (m *Service) Create(ctx context.Context, organizerID string, e *event.Event) error {
	return m.Called(ctx, organizerID, e).Error(0)
}

func (m *Service) GetByID(ctx context.Context, id string) (*event.Event, error) {
	return eventOrNil(m.Called(ctx, id))
}

func (m *Service) List(ctx context.Context, f event.Filter) ([]*event.Event, error) {
	return eventsOrNil(m.Called(ctx, f))
}

func (m *Service) ListByOrganizer(ctx context.Context, organizerID string) ([]*event.Event, error) {
	return eventsOrNil(m.Called(ctx, organizerID))
}

func (m *Service) Update(ctx context.Context, organizerID, id string, changes *event.Event) (*event.Event, error) {
	return eventOrNil(m.Called(ctx, organizerID, id, changes))
}

func (m *Service) Delete(ctx context.Context, actor claims.UserClaims, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *Service) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
