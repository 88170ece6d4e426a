package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type paymentReconciler struct {
	regRepo   domain.RegistrationRepository
	eventRepo domain.EventRepository
	gateways  domain.PaymentGatewayFactory
	payment   domain.PaymentSettings
	notifier  domain.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewPaymentReconciler returns the job that syncs pending bills with the gateway.
func NewPaymentReconciler(
	regRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	gateways domain.PaymentGatewayFactory,
	payment domain.PaymentSettings,
	notifier domain.Notifier,
	logger *slog.Logger,
) domain.PaymentReconciler {
	return &paymentReconciler{
		regRepo:   regRepo,
		eventRepo: eventRepo,
		gateways:  gateways,
		payment:   payment,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Reconcile makes one gateway call per pending row. Row failures are counted and skipped.
func (r *paymentReconciler) Reconcile(ctx context.Context) (*domain.ReconcileResult, error) {
	result := &domain.ReconcileResult{}
	if r.gateways == nil {
		result.Idle = true
		return result, nil
	}
	gw, err := r.gateways()
	if err != nil {
		if errors.Is(err, domain.ErrPaymentUnavailable) {
			result.Idle = true
			return result, nil
		}
		return nil, fmt.Errorf("build payment gateway: %w", err)
	}

	pending, err := r.regRepo.ListPendingPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}
	if len(pending) == 0 {
		result.Idle = true
		return result, nil
	}

	for _, reg := range pending {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		r.reconcileOne(ctx, gw, reg, result)
	}
	return result, nil
}

func (r *paymentReconciler) reconcileOne(ctx context.Context, gw domain.PaymentGateway, reg *domain.Registration, result *domain.ReconcileResult) {
	old := *reg.PaymentStatus
	status, err := r.checkStatus(ctx, gw, reg)
	if err != nil {
		result.Failed++
		r.logger.Warn("failed to check bill status", "registration", reg.Code, "error", err)
		return
	}
	result.Checked++
	if status == old {
		return
	}

	if err := r.regRepo.UpdatePaymentStatus(ctx, reg.Code, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug("registration removed during reconciliation", "registration", reg.Code)
			return
		}
		result.Failed++
		r.logger.Error("failed to store payment status", "registration", reg.Code, "error", err)
		return
	}
	result.Updated++
	result.Transitions = append(result.Transitions,
		fmt.Sprintf("registration %s: payment status %s -> %s", reg.Code, old, status))

	if status == domain.PaymentPaid && reg.IsInvitationAccepted {
		r.notifyPaid(ctx, reg)
	}
	if status.Terminal() {
		callCtx, cancel := context.WithTimeout(ctx, r.payment.CallTimeout)
		defer cancel()
		if err := gw.CancelBill(callCtx, reg.Code); err != nil {
			r.logger.Warn("failed to reject bill", "registration", reg.Code, "error", err)
			return
		}
		result.Rejected++
		result.Rejections = append(result.Rejections, fmt.Sprintf("registration %s: bill rejected", reg.Code))
	}
}

// checkStatus asks the gateway for the bill state. A CREATED row whose bill the gateway
// never saw is treated as expired once the bill lifetime has passed.
func (r *paymentReconciler) checkStatus(ctx context.Context, gw domain.PaymentGateway, reg *domain.Registration) (domain.PaymentStatus, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.payment.CallTimeout)
	defer cancel()

	status, err := gw.CheckStatus(callCtx, reg.Code)
	if err == nil {
		return status, nil
	}
	if errors.Is(err, domain.ErrNotFound) && *reg.PaymentStatus == domain.PaymentCreated &&
		r.now().Sub(reg.CreatedAt) > r.payment.BillLifetime {
		return domain.PaymentExpired, nil
	}
	return "", err
}

func (r *paymentReconciler) notifyPaid(ctx context.Context, reg *domain.Registration) {
	n := domain.Notification{
		Kind:             domain.NotifyRegistrationConfirmed,
		Variant:          domain.VariantPaid,
		EventID:          reg.EventID,
		RegistrationCode: reg.Code,
		RecipientUserIDs: []string{reg.UserID},
	}
	if ev, err := r.eventRepo.GetByID(ctx, domain.VariantPaid, reg.EventID); err == nil {
		n.EventName = ev.Name
	} else {
		r.logger.Warn("failed to load event for notification", "event_id", reg.EventID, "error", err)
	}
	r.notifier.Notify(n)
}
