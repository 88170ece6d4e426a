package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and repositories. Controllers map them to HTTP status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyRegistered  = errors.New("registration for this event already exists")
	ErrReferenced         = errors.New("resource is still referenced")
	ErrPaymentUnavailable = errors.New("payment gateway is not configured")
	ErrPaymentGateway     = errors.New("payment gateway request failed")
	// ErrDuplicateCode is returned when a generated public code collides with an existing one.
	ErrDuplicateCode = errors.New("generated code already in use")
)

// Validation failures. Each wraps ErrInvalidInput through ValidationError.
var (
	ErrRegistrationClosed  = NewValidationError("closing_registration_date", "registration is closed for this event")
	ErrWrongInvitationCode = NewValidationError("invitation_code", "wrong invitation code")
	ErrEventFull           = NewValidationError("max_visitors", "event has no free places left")
)

// ValidationError is an input error tied to a single field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match every validation error.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
