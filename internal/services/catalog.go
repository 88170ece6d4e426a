package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type catalogService struct {
	venueRepo      domain.EventVenueRepository
	typeRepo       domain.EventTypeRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewCatalogService returns the venue and event type administration service.
func NewCatalogService(venueRepo domain.EventVenueRepository, typeRepo domain.EventTypeRepository, timeout time.Duration) domain.CatalogService {
	return &catalogService{
		venueRepo:      venueRepo,
		typeRepo:       typeRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewValidationError("name", "name is required")
	}
	if len(name) > 255 {
		return domain.NewValidationError("name", "name must be at most 255 characters")
	}
	return nil
}

func validateVenue(v *domain.EventVenue) error {
	if err := validateName(v.Name); err != nil {
		return err
	}
	if v.Latitude != nil && (*v.Latitude < -90 || *v.Latitude > 90) {
		return domain.NewValidationError("latitude", "latitude must be between -90 and 90")
	}
	if v.Longitude != nil && (*v.Longitude < -180 || *v.Longitude > 180) {
		return domain.NewValidationError("longitude", "longitude must be between -180 and 180")
	}
	return nil
}

func (s *catalogService) CreateVenue(ctx context.Context, actor *domain.Actor, v *domain.EventVenue) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := validateVenue(v); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v.CreatedAt = s.now()
	v.UpdatedAt = v.CreatedAt
	if err := s.venueRepo.Create(ctx, v); err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

func (s *catalogService) GetVenue(ctx context.Context, id string) (*domain.EventVenue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return v, nil
}

func (s *catalogService) ListVenues(ctx context.Context, params domain.PaginationParams) ([]*domain.EventVenue, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venues, total, err := s.venueRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list venues: %w", err)
	}
	return venues, total, nil
}

func (s *catalogService) UpdateVenue(ctx context.Context, actor *domain.Actor, v *domain.EventVenue) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := validateVenue(v); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v.UpdatedAt = s.now()
	if err := s.venueRepo.Update(ctx, v); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update venue: %w", err)
	}
	return nil
}

func (s *catalogService) DeleteVenue(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.venueRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrReferenced) {
			return err
		}
		return fmt.Errorf("delete venue: %w", err)
	}
	return nil
}

func (s *catalogService) CreateEventType(ctx context.Context, actor *domain.Actor, t *domain.EventType) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := validateName(t.Name); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	if err := s.typeRepo.Create(ctx, t); err != nil {
		return fmt.Errorf("create event type: %w", err)
	}
	return nil
}

func (s *catalogService) GetEventType(ctx context.Context, id string) (*domain.EventType, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event type: %w", err)
	}
	return t, nil
}

func (s *catalogService) ListEventTypes(ctx context.Context, params domain.PaginationParams) ([]*domain.EventType, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	types, total, err := s.typeRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list event types: %w", err)
	}
	return types, total, nil
}

func (s *catalogService) UpdateEventType(ctx context.Context, actor *domain.Actor, t *domain.EventType) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := validateName(t.Name); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t.UpdatedAt = s.now()
	if err := s.typeRepo.Update(ctx, t); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update event type: %w", err)
	}
	return nil
}

func (s *catalogService) DeleteEventType(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.typeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event type: %w", err)
	}
	return nil
}
