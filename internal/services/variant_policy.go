package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"eventhub/internal/domain"
)

// variantPolicy holds the steps that differ between event variants.
// Shared checks (authentication, invitation code, closing date, capacity) run before it.
type variantPolicy interface {
	// register creates the actor's accepted row.
	register(ctx context.Context, ev *domain.Event, userID string) (*domain.Registration, error)
	// accept turns the actor's pending invitation into an accepted row.
	accept(ctx context.Context, ev *domain.Event, userID string) (*domain.Registration, error)
	// cancelled runs after the actor's row was deleted.
	cancelled(ctx context.Context, ev *domain.Event, reg *domain.Registration)
}

func newVariantPolicies(s *registrationService) map[domain.Variant]variantPolicy {
	open := &openPolicy{s: s}
	return map[domain.Variant]variantPolicy{
		domain.VariantPublic:  open,
		domain.VariantPrivate: open,
		domain.VariantPaid:    &paidPolicy{s: s},
	}
}

// openPolicy serves public and private events: acceptance confirms attendance at once.
type openPolicy struct {
	s *registrationService
}

func (p *openPolicy) register(ctx context.Context, ev *domain.Event, userID string) (*domain.Registration, error) {
	reg := domain.NewRegistration(ev.ID, userID, "", true, p.s.now())
	if err := p.s.insert(ctx, reg); err != nil {
		return nil, err
	}
	p.s.notify(domain.NotifyRegistrationConfirmed, ev, reg)
	return reg, nil
}

func (p *openPolicy) accept(ctx context.Context, ev *domain.Event, userID string) (*domain.Registration, error) {
	reg, err := p.s.regRepo.Accept(ctx, ev.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	p.s.notify(domain.NotifyRegistrationConfirmed, ev, reg)
	return reg, nil
}

func (p *openPolicy) cancelled(_ context.Context, ev *domain.Event, reg *domain.Registration) {
	if reg.IsInvitationAccepted {
		p.s.notify(domain.NotifyRegistrationCancelled, ev, reg)
	}
}

// paidPolicy serves paid events: an accepted row is confirmed only once its bill is paid.
type paidPolicy struct {
	s *registrationService
}

func (p *paidPolicy) register(ctx context.Context, ev *domain.Event, userID string) (*domain.Registration, error) {
	gw, err := p.s.gateway()
	if err != nil {
		return nil, err
	}
	reg := domain.NewRegistration(ev.ID, userID, "", true, p.s.now())
	status := domain.PaymentCreated
	reg.PaymentStatus = &status
	if err := p.s.insert(ctx, reg); err != nil {
		return nil, err
	}

	payURL, err := p.s.createBill(ctx, gw, ev, reg)
	if err != nil {
		// No bill exists, so the row could never be paid.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.s.contextTimeout)
		defer cancel()
		if derr := p.s.regRepo.DeleteByID(cleanupCtx, reg.ID); derr != nil {
			p.s.logger.Error("failed to remove unpayable registration", "registration", reg.Code, "error", derr)
		}
		return nil, err
	}
	if err := p.s.storePaymentLink(ctx, reg, payURL); err != nil {
		return nil, err
	}
	return reg, nil
}

func (p *paidPolicy) accept(ctx context.Context, ev *domain.Event, userID string) (*domain.Registration, error) {
	gw, err := p.s.gateway()
	if err != nil {
		return nil, err
	}
	reg, err := p.s.regRepo.Accept(ctx, ev.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	if err := p.s.regRepo.SetPayment(ctx, reg.ID, domain.PaymentCreated, nil); err != nil {
		p.reopen(ctx, reg)
		return nil, fmt.Errorf("mark payment created: %w", err)
	}
	status := domain.PaymentCreated
	reg.PaymentStatus = &status

	payURL, err := p.s.createBill(ctx, gw, ev, reg)
	if err != nil {
		p.reopen(ctx, reg)
		return nil, err
	}
	if err := p.s.storePaymentLink(ctx, reg, payURL); err != nil {
		return nil, err
	}
	return reg, nil
}

// reopen puts the invitation back to pending so the invitee can accept it again.
func (p *paidPolicy) reopen(ctx context.Context, reg *domain.Registration) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.s.contextTimeout)
	defer cancel()
	if err := p.s.regRepo.Reopen(cleanupCtx, reg.ID); err != nil {
		p.s.logger.Error("failed to reopen invitation", "registration", reg.Code, "error", err)
	}
}

func (p *paidPolicy) cancelled(ctx context.Context, ev *domain.Event, reg *domain.Registration) {
	if reg.PaymentStatus != nil && reg.PaymentStatus.Pending() {
		if gw, err := p.s.gateway(); err == nil {
			callCtx, cancel := context.WithTimeout(ctx, p.s.payment.CallTimeout)
			defer cancel()
			if err := gw.CancelBill(callCtx, reg.Code); err != nil {
				p.s.logger.Warn("failed to cancel bill", "registration", reg.Code, "error", err)
			}
		}
	}
	if reg.Confirmed(domain.VariantPaid) {
		p.s.notify(domain.NotifyRegistrationCancelled, ev, reg)
	}
}

func (s *registrationService) gateway() (domain.PaymentGateway, error) {
	if s.gateways == nil {
		return nil, domain.ErrPaymentUnavailable
	}
	gw, err := s.gateways()
	if err != nil {
		if errors.Is(err, domain.ErrPaymentUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentUnavailable, err)
	}
	return gw, nil
}

// createBill opens a bill for the event price keyed by the registration code and returns the payment page URL.
func (s *registrationService) createBill(ctx context.Context, gw domain.PaymentGateway, ev *domain.Event, reg *domain.Registration) (string, error) {
	if ev.Price == nil {
		return "", domain.NewValidationError("price", "paid event has no price")
	}
	callCtx, cancel := context.WithTimeout(ctx, s.payment.CallTimeout)
	defer cancel()

	bill, err := gw.CreateBill(callCtx, domain.BillRequest{
		BillID:   reg.Code,
		Amount:   *ev.Price,
		Lifetime: s.payment.BillLifetime,
		Comment:  fmt.Sprintf("Registration %s for %s", reg.Code, ev.Name),
	})
	if err != nil {
		return "", fmt.Errorf("%w: create bill: %v", domain.ErrPaymentGateway, err)
	}
	return withSuccessURL(bill.PayURL, s.payment.SuccessPaymentURL), nil
}

// storePaymentLink saves the link. A failure leaves the row CREATED for reconciliation.
func (s *registrationService) storePaymentLink(ctx context.Context, reg *domain.Registration, payURL string) error {
	if err := s.regRepo.SetPayment(ctx, reg.ID, domain.PaymentCreated, &payURL); err != nil {
		return fmt.Errorf("store payment link: %w", err)
	}
	reg.PaymentLink = &payURL
	return nil
}

func withSuccessURL(payURL, successURL string) string {
	if successURL == "" {
		return payURL
	}
	u, err := url.Parse(payURL)
	if err != nil {
		return payURL
	}
	q := u.Query()
	q.Set("successUrl", successURL)
	u.RawQuery = q.Encode()
	return u.String()
}
