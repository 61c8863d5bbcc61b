package event

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxCapacity = 100000

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidID     = errors.New("invalid ID format")
	ErrNotOwner      = errors.New("event belongs to another organizer")
	ErrSoldOut       = errors.New("not enough tickets left")
	ErrValidation    = errors.New("validation error")
)

type Event struct {
	MongoID     primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID          string             `bson:"-" json:"id"`
	OrganizerID string             `bson:"organizerId" json:"organizerId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Venue       string             `bson:"venue" json:"venue"`
	StartsAt    time.Time          `bson:"startsAt" json:"startsAt"`
	// Price is in the smallest currency unit; 0 means free entry.
	Price       int64     `bson:"price" json:"price"`
	Capacity    int       `bson:"capacity" json:"capacity"`
	TicketsSold int       `bson:"ticketsSold" json:"ticketsSold"`
	Image       string    `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (e *Event) Free() bool { return e.Price == 0 }

func (e *Event) Available() int { return e.Capacity - e.TicketsSold }

type Filter struct {
	Category string
	Search   string
	// Upcoming keeps only events that have not started.
	Upcoming bool
}

type Repository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, f Filter) ([]*Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id string) error
	ReserveSeats(ctx context.Context, id string, qty int) (*Event, error)
	ReleaseSeats(ctx context.Context, id string, qty int) error
	Count(ctx context.Context) (int64, error)
}
