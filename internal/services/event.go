package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.RegistrationRepository
	notifier       domain.Notifier
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
	newCode        func() (string, error)
}

func NewEventService(eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
		newCode:        generateInvitationCode,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, actor *domain.Actor, e *domain.Event) (*domain.EventDetails, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if e.Duration == 0 {
		e.Duration = domain.DefaultEventDuration
	}
	e.ClampClosingDate()
	if err := validateEvent(e); err != nil {
		return nil, err
	}
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt

	if !e.Variant.Capabilities().RequiresInvitationCode {
		e.InvitationCode = ""
		if err := s.eventRepo.Create(ctx, e); err != nil {
			return nil, fmt.Errorf("create event: %w", err)
		}
		return domain.NewEventDetails(e, 0), nil
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate invitation code: %w", err)
		}
		e.InvitationCode = code
		err = s.eventRepo.Create(ctx, e)
		if err == nil {
			return domain.NewEventDetails(e, 0), nil
		}
		if !errors.Is(err, domain.ErrDuplicateCode) {
			return nil, fmt.Errorf("create event: %w", err)
		}
	}
	return nil, fmt.Errorf("create event: %w", domain.ErrDuplicateCode)
}

func (s *eventService) GetEvent(ctx context.Context, actor *domain.Actor, variant domain.Variant, id string) (*domain.EventDetails, error) {
	if err := authorizeRead(actor, variant); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.getEvent(ctx, variant, id)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, e)
}

func (s *eventService) ListEvents(ctx context.Context, actor *domain.Actor, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if err := authorizeRead(actor, filter.Variant); err != nil {
		return nil, 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actor *domain.Actor, variant domain.Variant, id string, patch domain.EventPatch) (*domain.EventDetails, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.getEvent(ctx, variant, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(e)
	if err := validateEvent(e); err != nil {
		return nil, err
	}
	e.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, e); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.details(ctx, e)
}

// DeleteEvent removes the event with its registrations and tells every confirmed visitor.
func (s *eventService) DeleteEvent(ctx context.Context, actor *domain.Actor, variant domain.Variant, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.getEvent(ctx, variant, id)
	if err != nil {
		return err
	}
	// Recipients must be read before the cascade removes the rows.
	guests, err := s.regRepo.ListGuests(ctx, e.ID, variant.Capabilities().RequiresPayment)
	if err != nil {
		return fmt.Errorf("list guests: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, variant, e.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if len(guests) == 0 {
		return nil
	}
	recipients := make([]string, 0, len(guests))
	for _, g := range guests {
		recipients = append(recipients, g.Email)
	}
	s.notifier.Notify(domain.Notification{
		Kind:       domain.NotifyEventCancelled,
		Variant:    variant,
		EventID:    e.ID,
		EventName:  e.Name,
		Recipients: recipients,
	})
	s.logger.Info("event deleted", "event_id", e.ID, "variant", variant, "notified", len(recipients))
	return nil
}

func (s *eventService) getEvent(ctx context.Context, variant domain.Variant, id string) (*domain.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, variant, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *eventService) details(ctx context.Context, e *domain.Event) (*domain.EventDetails, error) {
	n, err := s.regRepo.CountGuests(ctx, e.ID, e.Variant.Capabilities().RequiresPayment)
	if err != nil {
		return nil, fmt.Errorf("count guests: %w", err)
	}
	return domain.NewEventDetails(e, n), nil
}

func validateEvent(e *domain.Event) error {
	switch {
	case !e.Variant.Valid():
		return domain.NewValidationError("variant", "unknown event variant")
	case strings.TrimSpace(e.Name) == "":
		return domain.NewValidationError("name", "name is required")
	case len(e.Name) > 255:
		return domain.NewValidationError("name", "name must be at most 255 characters")
	case e.StartDatetime.IsZero():
		return domain.NewValidationError("start_datetime", "start_datetime is required")
	case e.ClosingRegistrationDate.IsZero():
		return domain.NewValidationError("closing_registration_date", "closing_registration_date is required")
	case e.Duration < 0:
		return domain.NewValidationError("duration", "duration must not be negative")
	case e.MaxVisitors < 0:
		return domain.NewValidationError("max_visitors", "max_visitors must not be negative")
	}
	if e.Variant.Capabilities().RequiresPayment {
		if e.Price == nil || !e.Price.IsPositive() {
			return domain.NewValidationError("price", "price must be greater than zero")
		}
	} else if e.Price != nil {
		return domain.NewValidationError("price", "only paid events have a price")
	}
	return nil
}
