package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gatherguru/pkg/claims"
	"gatherguru/pkg/image"
)

type ServiceInterface interface {
	Create(ctx context.Context, organizerID string, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, f Filter) ([]*Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, organizerID, id string, changes *Event) (*Event, error)
	Delete(ctx context.Context, actor claims.UserClaims, id string) error
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	Repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{Repo: repo, now: time.Now}
}

func validate(e *Event) error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case strings.TrimSpace(e.Category) == "":
		return fmt.Errorf("%w: category is required", ErrValidation)
	case strings.TrimSpace(e.Venue) == "":
		return fmt.Errorf("%w: venue is required", ErrValidation)
	case e.StartsAt.IsZero():
		return fmt.Errorf("%w: start time is required", ErrValidation)
	case e.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	case e.Capacity < 1 || e.Capacity > MaxCapacity:
		return fmt.Errorf("%w: capacity must be between 1 and %d", ErrValidation, MaxCapacity)
	}
	if e.Image != "" {
		if err := image.Validate(e.Image); err != nil {
			return fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, organizerID string, e *Event) error {
	if err := validate(e); err != nil {
		return err
	}
	now := s.now().UTC()
	e.OrganizerID = organizerID
	e.TicketsSold = 0
	e.CreatedAt = now
	e.UpdatedAt = now
	return s.Repo.Create(ctx, e)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Event, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Event, error) {
	return s.Repo.List(ctx, f)
}

func (s *Service) ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error) {
	return s.Repo.ListByOrganizer(ctx, organizerID)
}

// Update replaces the editable fields of an event owned by organizerID.
// Capacity may not drop below the tickets already sold.
func (s *Service) Update(ctx context.Context, organizerID, id string, changes *Event) (*Event, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.OrganizerID != organizerID {
		return nil, ErrNotOwner
	}
	if err = validate(changes); err != nil {
		return nil, err
	}
	if changes.Capacity < current.TicketsSold {
		return nil, fmt.Errorf("%w: capacity is below the %d tickets already sold", ErrValidation, current.TicketsSold)
	}

	current.Title = changes.Title
	current.Description = changes.Description
	current.Category = changes.Category
	current.Venue = changes.Venue
	current.StartsAt = changes.StartsAt
	current.Price = changes.Price
	current.Capacity = changes.Capacity
	if changes.Image != "" {
		current.Image = changes.Image
	}
	current.UpdatedAt = s.now().UTC()

	if err = s.Repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Delete lets the owning organizer or any admin remove an event.
func (s *Service) Delete(ctx context.Context, actor claims.UserClaims, id string) error {
	if actor.Role != claims.RoleAdmin {
		current, err := s.Repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if actor.Role != claims.RoleOrganizer || current.OrganizerID != actor.ID {
			return ErrNotOwner
		}
	}
	return s.Repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.Repo.Count(ctx)
}
