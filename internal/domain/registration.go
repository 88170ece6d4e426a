package domain

import (
	"context"
	"time"
)

// PaymentStatus is the bill state of a paid-event registration.
type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "CREATED"
	PaymentWaiting  PaymentStatus = "WAITING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentExpired  PaymentStatus = "EXPIRED"
	PaymentRejected PaymentStatus = "REJECTED"
)

// Pending reports whether the bill may still change state at the gateway.
func (s PaymentStatus) Pending() bool {
	return s == PaymentCreated || s == PaymentWaiting
}

// Terminal reports whether the bill can no longer be paid.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentExpired || s == PaymentRejected
}

// RegistrationCodeLength is the length of the public registration record code.
const RegistrationCodeLength = 10

// Registration is one (event, user) row: a pending invitation or a confirmed attendance.
// swagger:model Registration
type Registration struct {
	ID                   string         `json:"id"`
	Code                 string         `json:"code"`
	EventID              string         `json:"event_id"`
	UserID               string         `json:"user_id"`
	InvitingUserID       string         `json:"inviting_user_id"`
	IsInvitationAccepted bool           `json:"is_invitation_accepted"`
	PaymentStatus        *PaymentStatus `json:"payment_status,omitempty"`
	PaymentLink          *string        `json:"payment_link,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// NewRegistration returns a registration row. An empty invitingUserID means self-registration.
func NewRegistration(eventID, userID, invitingUserID string, accepted bool, now time.Time) *Registration {
	if invitingUserID == "" {
		invitingUserID = userID
	}
	return &Registration{
		EventID:              eventID,
		UserID:               userID,
		InvitingUserID:       invitingUserID,
		IsInvitationAccepted: accepted,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Confirmed reports whether the row counts as a visitor for an event of the given variant.
func (r *Registration) Confirmed(variant Variant) bool {
	if !r.IsInvitationAccepted {
		return false
	}
	if variant.Capabilities().RequiresPayment {
		return r.PaymentStatus != nil && *r.PaymentStatus == PaymentPaid
	}
	return true
}

// Guest is a confirmed visitor with the contact data needed for notifications.
// swagger:model Guest
type Guest struct {
	RegistrationCode string `json:"registration_code"`
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
}

// RegistrationRepository is the registration ledger. Uniqueness of (event, user) is enforced by storage.
type RegistrationRepository interface {
	// Create inserts reg and fills ID. Returns ErrAlreadyRegistered on a duplicate (event, user)
	// and ErrDuplicateCode when reg.Code is taken.
	Create(ctx context.Context, reg *Registration) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	// Accept marks the user's pending row accepted. Returns ErrNotFound when no pending row exists.
	Accept(ctx context.Context, eventID, userID string) (*Registration, error)
	// Reopen turns an accepted row back into a pending invitation without payment data.
	Reopen(ctx context.Context, id string) error
	// SetPayment stores status and link for the row with the given id.
	SetPayment(ctx context.Context, id string, status PaymentStatus, link *string) error
	// UpdatePaymentStatus sets the status by registration code. Returns ErrNotFound if the row is gone.
	UpdatePaymentStatus(ctx context.Context, code string, status PaymentStatus) error
	// Delete removes the user's row. When pendingOnly is set only a not-yet-accepted row matches.
	Delete(ctx context.Context, eventID, userID string, pendingOnly bool) (*Registration, error)
	DeleteByID(ctx context.Context, id string) error
	ListGuests(ctx context.Context, eventID string, requirePaid bool) ([]*Guest, error)
	// ListByEvent returns one page of all rows of the event, pending invitations included.
	ListByEvent(ctx context.Context, eventID string, params PaginationParams) ([]*Registration, int, error)
	CountGuests(ctx context.Context, eventID string, requirePaid bool) (int, error)
	ListPendingPayments(ctx context.Context) ([]*Registration, error)
}

// RegistrationService is the invitation/registration state machine.
type RegistrationService interface {
	Register(ctx context.Context, actor *Actor, variant Variant, eventID, invitationCode string) (*Registration, error)
	CancelRegistration(ctx context.Context, actor *Actor, variant Variant, eventID string) error
	Invite(ctx context.Context, actor *Actor, variant Variant, eventID, targetUserID string) (*Registration, error)
	AcceptInvitation(ctx context.Context, actor *Actor, variant Variant, eventID string) (*Registration, error)
	RevokeInvitation(ctx context.Context, actor *Actor, variant Variant, eventID string) error
	GetInvitationCode(ctx context.Context, actor *Actor, variant Variant, eventID string) (string, error)
	ListGuests(ctx context.Context, actor *Actor, variant Variant, eventID string) ([]*Guest, error)
	ListRegistrations(ctx context.Context, actor *Actor, variant Variant, eventID string, params PaginationParams) ([]*Registration, int, error)
}
