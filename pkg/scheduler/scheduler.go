package scheduler

import (
	"context"
	"log/slog"
	"time"

	"gatherguru/pkg/booking"
)

type bookingExpirer interface {
	ExpirePending(ctx context.Context, ttl time.Duration) ([]*booking.Booking, error)
}

type sessionPurger interface {
	Purge(ctx context.Context) (int64, error)
}

// Scheduler periodically cancels unpaid bookings and drops expired server sessions.
type Scheduler struct {
	bookings bookingExpirer
	sessions sessionPurger
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func New(bookings bookingExpirer, sessions sessionPurger, ttl, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		bookings: bookings,
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval, "booking_ttl", s.ttl)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	expired, err := s.bookings.ExpirePending(ctx, s.ttl)
	if err != nil {
		s.logger.Error("failed to expire pending bookings", "error", err)
	}
	for _, b := range expired {
		s.logger.Info("booking expired", "booking", b.ID, "user", b.UserID, "event", b.EventID)
	}

	if s.sessions == nil {
		return
	}
	n, err := s.sessions.Purge(ctx)
	if err != nil {
		s.logger.Error("failed to purge sessions", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", "count", n)
	}
}
