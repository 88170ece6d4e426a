package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type reminderService struct {
	eventRepo domain.EventRepository
	regRepo   domain.RegistrationRepository
	notifier  domain.Notifier
	days      []int
	logger    *slog.Logger
}

// NewReminderService returns a sender that reminds confirmed visitors the given numbers of days ahead.
func NewReminderService(eventRepo domain.EventRepository, regRepo domain.RegistrationRepository, notifier domain.Notifier, days []int, logger *slog.Logger) domain.ReminderSender {
	return &reminderService{
		eventRepo: eventRepo,
		regRepo:   regRepo,
		notifier:  notifier,
		days:      days,
		logger:    logger,
	}
}

// SendReminders returns the number of queued reminders. Re-running on the same day sends them again.
func (s *reminderService) SendReminders(ctx context.Context, now time.Time) (int, error) {
	sent := 0
	for _, d := range s.days {
		events, err := s.eventRepo.ListStartingOn(ctx, now.AddDate(0, 0, d))
		if err != nil {
			return sent, fmt.Errorf("list events %d days ahead: %w", d, err)
		}
		for _, ev := range events {
			guests, err := s.regRepo.ListGuests(ctx, ev.ID, ev.Variant.Capabilities().RequiresPayment)
			if err != nil {
				s.logger.Error("failed to list guests for reminder", "event_id", ev.ID, "error", err)
				continue
			}
			for _, g := range guests {
				s.notifier.Notify(domain.Notification{
					Kind:             domain.NotifyEventReminder,
					Variant:          ev.Variant,
					EventID:          ev.ID,
					EventName:        ev.Name,
					RegistrationCode: g.RegistrationCode,
					DaysBefore:       d,
					Recipients:       []string{g.Email},
				})
				sent++
			}
		}
	}
	return sent, nil
}
