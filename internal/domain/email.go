package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// NotificationKind names a lifecycle message. Each kind maps to an email template.
type NotificationKind string

const (
	NotifyRegistrationConfirmed NotificationKind = "registration_confirmed"
	NotifyRegistrationCancelled NotificationKind = "registration_cancelled"
	NotifyEventCancelled        NotificationKind = "event_cancelled"
	NotifyEventReminder         NotificationKind = "event_reminder"
	NotifyInvitation            NotificationKind = "invitation"
)

// Notification is a fire-and-forget message for one or more recipients.
type Notification struct {
	Kind             NotificationKind
	Variant          Variant
	EventID          string
	EventName        string
	RegistrationCode string
	DaysBefore       int
	// Recipients are email addresses. When empty, RecipientUserIDs are resolved at delivery.
	Recipients       []string
	RecipientUserIDs []string
}

// Notifier accepts notifications without blocking the caller.
type Notifier interface {
	Notify(n Notification)
}

// NotificationEmailData is the template context of a notification email.
type NotificationEmailData struct {
	Email            string
	Variant          Variant
	EventName        string
	RegistrationCode string
	DaysBefore       int
}

// IsPaid is used by templates for the paid-event wording.
func (d NotificationEmailData) IsPaid() bool {
	return d.Variant == VariantPaid
}

// EmailService sends domain-level emails.
type EmailService interface {
	SendNotification(ctx context.Context, kind NotificationKind, data *NotificationEmailData) error
}

// ReminderSender emails confirmed registrants about upcoming events.
type ReminderSender interface {
	// SendReminders notifies registrants of events starting each configured number of days after now.
	SendReminders(ctx context.Context, now time.Time) (int, error)
}
