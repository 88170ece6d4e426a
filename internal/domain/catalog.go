package domain

import (
	"context"
	"time"
)

// EventVenue is a place where events happen.
// swagger:model EventVenue
type EventVenue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventType is an event category.
// swagger:model EventType
type EventType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventVenueRepository stores venues. Delete returns ErrReferenced while events use the venue.
type EventVenueRepository interface {
	Create(ctx context.Context, v *EventVenue) error
	GetByID(ctx context.Context, id string) (*EventVenue, error)
	List(ctx context.Context, params PaginationParams) ([]*EventVenue, int, error)
	Update(ctx context.Context, v *EventVenue) error
	Delete(ctx context.Context, id string) error
}

// EventTypeRepository stores event categories. Deleting one detaches it from its events.
type EventTypeRepository interface {
	Create(ctx context.Context, t *EventType) error
	GetByID(ctx context.Context, id string) (*EventType, error)
	List(ctx context.Context, params PaginationParams) ([]*EventType, int, error)
	Update(ctx context.Context, t *EventType) error
	Delete(ctx context.Context, id string) error
}

// CatalogService administers venues and event types. Reads are public, writes admin-only.
type CatalogService interface {
	CreateVenue(ctx context.Context, actor *Actor, v *EventVenue) error
	GetVenue(ctx context.Context, id string) (*EventVenue, error)
	ListVenues(ctx context.Context, params PaginationParams) ([]*EventVenue, int, error)
	UpdateVenue(ctx context.Context, actor *Actor, v *EventVenue) error
	DeleteVenue(ctx context.Context, actor *Actor, id string) error

	CreateEventType(ctx context.Context, actor *Actor, t *EventType) error
	GetEventType(ctx context.Context, id string) (*EventType, error)
	ListEventTypes(ctx context.Context, params PaginationParams) ([]*EventType, int, error)
	UpdateEventType(ctx context.Context, actor *Actor, t *EventType) error
	DeleteEventType(ctx context.Context, actor *Actor, id string) error
}
