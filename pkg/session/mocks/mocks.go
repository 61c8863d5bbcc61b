package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type SessionRepo struct {
	mock.Mock
}

func (m *SessionRepo) Create(ctx context.Context, userID, sessionID string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, userID, sessionID, ttl)
	return args.String(0), args.Error(1)
}

func (m *SessionRepo) IsValid(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *SessionRepo) Invalidate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
