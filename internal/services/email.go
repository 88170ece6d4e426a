package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventhub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendNotification renders the template named after kind and mails it to data.Email.
func (s *emailService) SendNotification(ctx context.Context, kind domain.NotificationKind, data *domain.NotificationEmailData) error {
	if data == nil {
		return fmt.Errorf("%s email data is nil", kind)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(string(kind), data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", kind, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	s.logger.Debug("email sent", "kind", kind, "to", data.Email)
	return nil
}
