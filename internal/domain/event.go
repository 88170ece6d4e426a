package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Variant distinguishes public, private and paid events. All three share one shape.
type Variant string

const (
	VariantPublic  Variant = "public"
	VariantPrivate Variant = "private"
	VariantPaid    Variant = "paid"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	switch v {
	case VariantPublic, VariantPrivate, VariantPaid:
		return true
	}
	return false
}

// Capabilities are the registration rules a variant enables.
type Capabilities struct {
	RequiresInvitationCode bool
	RequiresPayment        bool
}

// Capabilities returns the capability flags of the variant.
func (v Variant) Capabilities() Capabilities {
	switch v {
	case VariantPrivate:
		return Capabilities{RequiresInvitationCode: true}
	case VariantPaid:
		return Capabilities{RequiresInvitationCode: true, RequiresPayment: true}
	}
	return Capabilities{}
}

// DefaultEventDuration is used when an event is created without a duration.
const DefaultEventDuration = 2 * time.Hour

// Event is a scheduled event of any variant.
// swagger:model Event
type Event struct {
	ID                      string           `json:"id"`
	Variant                 Variant          `json:"variant"`
	Name                    string           `json:"name"`
	VenueID                 *string          `json:"venue_id"`
	CategoryID              *string          `json:"category_id"`
	ShortInformation        *string          `json:"short_information"`
	FullInformation         *string          `json:"full_information"`
	StartDatetime           time.Time        `json:"start_datetime"`
	Duration                time.Duration    `json:"-"`
	ClosingRegistrationDate time.Time        `json:"closing_registration_date"`
	MaxVisitors             int              `json:"max_visitors"`
	Price                   *decimal.Decimal `json:"price,omitempty"`
	InvitationCode          string           `json:"-"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// EndDatetime is the start time plus the duration.
func (e *Event) EndDatetime() time.Time {
	return e.StartDatetime.Add(e.Duration)
}

// ClampClosingDate enforces closing_registration_date <= start_datetime.
func (e *Event) ClampClosingDate() {
	if e.ClosingRegistrationDate.After(e.StartDatetime) {
		e.ClosingRegistrationDate = e.StartDatetime
	}
}

// RegistrationOpen reports whether registration is still accepted at now.
func (e *Event) RegistrationOpen(now time.Time) bool {
	return e.ClosingRegistrationDate.After(now)
}

// EventFilter narrows event listings.
type EventFilter struct {
	Variant    Variant
	CategoryID string
	VenueID    string
}

// EventPatch carries optional field updates. Nil fields are left unchanged.
type EventPatch struct {
	Name                    *string
	VenueID                 *string
	CategoryID              *string
	ShortInformation        *string
	FullInformation         *string
	StartDatetime           *time.Time
	Duration                *time.Duration
	ClosingRegistrationDate *time.Time
	MaxVisitors             *int
	Price                   *decimal.Decimal
}

// Apply copies the set fields of p onto e and re-clamps the closing date.
func (p EventPatch) Apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.VenueID != nil {
		e.VenueID = p.VenueID
	}
	if p.CategoryID != nil {
		e.CategoryID = p.CategoryID
	}
	if p.ShortInformation != nil {
		e.ShortInformation = p.ShortInformation
	}
	if p.FullInformation != nil {
		e.FullInformation = p.FullInformation
	}
	if p.StartDatetime != nil {
		e.StartDatetime = *p.StartDatetime
	}
	if p.Duration != nil {
		e.Duration = *p.Duration
	}
	if p.ClosingRegistrationDate != nil {
		e.ClosingRegistrationDate = *p.ClosingRegistrationDate
	}
	if p.MaxVisitors != nil {
		e.MaxVisitors = *p.MaxVisitors
	}
	if p.Price != nil {
		e.Price = p.Price
	}
	e.ClampClosingDate()
}

// EventRepository defines storage for events of every variant.
type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, variant Variant, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, variant Variant, id string) error
	// ListStartingOn returns events whose start_datetime falls on the calendar day of day.
	ListStartingOn(ctx context.Context, day time.Time) ([]*Event, error)
}

// EventDetails is an event with its derived fields, as returned to clients.
type EventDetails struct {
	*Event
	EndDatetime   time.Time `json:"end_datetime"`
	DurationSecs  int64     `json:"duration_seconds"`
	VisitorsCount int       `json:"visitors_count"`
}

// NewEventDetails builds EventDetails for e.
func NewEventDetails(e *Event, visitors int) *EventDetails {
	return &EventDetails{
		Event:         e,
		EndDatetime:   e.EndDatetime(),
		DurationSecs:  int64(e.Duration / time.Second),
		VisitorsCount: visitors,
	}
}

// EventService defines catalog administration for events of every variant.
type EventService interface {
	CreateEvent(ctx context.Context, actor *Actor, e *Event) (*EventDetails, error)
	GetEvent(ctx context.Context, actor *Actor, variant Variant, id string) (*EventDetails, error)
	ListEvents(ctx context.Context, actor *Actor, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, actor *Actor, variant Variant, id string, patch EventPatch) (*EventDetails, error)
	DeleteEvent(ctx context.Context, actor *Actor, variant Variant, id string) error
}
