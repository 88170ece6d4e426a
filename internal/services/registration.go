package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type registrationService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.RegistrationRepository
	userRepo       domain.UserRepository
	gateways       domain.PaymentGatewayFactory
	payment        domain.PaymentSettings
	notifier       domain.Notifier
	logger         *slog.Logger
	contextTimeout time.Duration
	policies       map[domain.Variant]variantPolicy
	now            func() time.Time
	newCode        func() (string, error)
}

// NewRegistrationService returns the registration state machine. gateways may be nil when payments are disabled.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	gateways domain.PaymentGatewayFactory,
	payment domain.PaymentSettings,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	s := &registrationService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		userRepo:       userRepo,
		gateways:       gateways,
		payment:        payment,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
		newCode:        generateRegistrationCode,
	}
	s.policies = newVariantPolicies(s)
	return s
}

func (s *registrationService) Register(ctx context.Context, actor *domain.Actor, variant domain.Variant, eventID, invitationCode string) (*domain.Registration, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, variant, eventID)
	if err != nil {
		return nil, err
	}
	if variant.Capabilities().RequiresInvitationCode && !codeMatches(ev.InvitationCode, invitationCode) {
		return nil, domain.ErrWrongInvitationCode
	}
	if !ev.RegistrationOpen(s.now()) {
		return nil, domain.ErrRegistrationClosed
	}
	if err := s.checkCapacity(ctx, ev); err != nil {
		return nil, err
	}
	return s.policies[variant].register(ctx, ev, actor.UserID)
}

func (s *registrationService) CancelRegistration(ctx context.Context, actor *domain.Actor, variant domain.Variant, eventID string) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, variant, eventID)
	if err != nil {
		return err
	}
	reg, err := s.regRepo.Delete(ctx, ev.ID, actor.UserID, false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	s.policies[variant].cancelled(ctx, ev, reg)
	return nil
}

func (s *registrationService) Invite(ctx context.Context, actor *domain.Actor, variant domain.Variant, eventID, targetUserID string) (*domain.Registration, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !variant.Capabilities().RequiresInvitationCode {
		return nil, domain.NewValidationError("event", "invitations are only available for private and paid events")
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, variant, eventID)
	if err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	reg := domain.NewRegistration(ev.ID, target.ID, actor.UserID, false, s.now())
	if err := s.insert(ctx, reg); err != nil {
		return nil, err
	}
	s.notify(domain.NotifyInvitation, ev, reg)
	return reg, nil
}

func (s *registrationService) AcceptInvitation(ctx context.Context, actor *domain.Actor, variant domain.Variant, eventID string) (*domain.Registration, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, variant, eventID)
	if err != nil {
		return nil, err
	}
	return s.policies[variant].accept(ctx, ev, actor.UserID)
}

func (s *registrationService) RevokeInvitation(ctx context.Context, actor *domain.Actor, variant domain.Variant, eventID string) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, variant, eventID)
	if err != nil {
		return err
	}
	if _, err := s.regRepo.Delete(ctx, ev.ID, actor.UserID, true); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

func (s *registrationService) GetInvitationCode(ctx context.Context, actor *domain.Actor, variant domain.Variant, eventID string) (string, error) {
	if err := requireAdmin(actor); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, variant, eventID)
	if err != nil {
		return "", err
	}
	if ev.InvitationCode == "" {
		return "", domain.ErrNotFound
	}
	return ev.InvitationCode, nil
}

func (s *registrationService) ListGuests(ctx context.Context, actor *domain.Actor, variant domain.Variant, eventID string) ([]*domain.Guest, error) {
	if err := authorizeRead(actor, variant); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, variant, eventID)
	if err != nil {
		return nil, err
	}
	guests, err := s.regRepo.ListGuests(ctx, ev.ID, variant.Capabilities().RequiresPayment)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	return guests, nil
}

// ListRegistrations pages through every row of the event for administrators.
func (s *registrationService) ListRegistrations(ctx context.Context, actor *domain.Actor, variant domain.Variant, eventID string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.getEvent(ctx, variant, eventID)
	if err != nil {
		return nil, 0, err
	}
	regs, total, err := s.regRepo.ListByEvent(ctx, ev.ID, params.Normalized())
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	return regs, total, nil
}

func (s *registrationService) getEvent(ctx context.Context, variant domain.Variant, eventID string) (*domain.Event, error) {
	ev, err := s.eventRepo.GetByID(ctx, variant, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

func (s *registrationService) checkCapacity(ctx context.Context, ev *domain.Event) error {
	if ev.MaxVisitors <= 0 {
		return nil
	}
	n, err := s.regRepo.CountGuests(ctx, ev.ID, ev.Variant.Capabilities().RequiresPayment)
	if err != nil {
		return fmt.Errorf("count guests: %w", err)
	}
	if n >= ev.MaxVisitors {
		return domain.ErrEventFull
	}
	return nil
}

// insert stores reg under a fresh public code, regenerating the code on collision.
func (s *registrationService) insert(ctx context.Context, reg *domain.Registration) error {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return fmt.Errorf("generate registration code: %w", err)
		}
		reg.Code = code
		err = s.regRepo.Create(ctx, reg)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateCode) {
			return fmt.Errorf("create registration: %w", err)
		}
	}
	return fmt.Errorf("create registration: %w", domain.ErrDuplicateCode)
}

func (s *registrationService) notify(kind domain.NotificationKind, ev *domain.Event, reg *domain.Registration) {
	s.notifier.Notify(domain.Notification{
		Kind:             kind,
		Variant:          ev.Variant,
		EventID:          ev.ID,
		EventName:        ev.Name,
		RegistrationCode: reg.Code,
		RecipientUserIDs: []string{reg.UserID},
	})
}

func codeMatches(stored, given string) bool {
	if stored == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
