package session

import (
	"context"
	"time"
)

// Session is the server-side record that keeps a user's tokens usable.
// Logging out deletes it, which revokes every token issued before.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Repository interface {
	Create(ctx context.Context, userID, sessionID string, ttl time.Duration) (string, error)
	IsValid(ctx context.Context, userID string) (bool, error)
	Invalidate(ctx context.Context, userID string) error
}
