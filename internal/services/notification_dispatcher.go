package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"eventhub/internal/domain"
)

// NotificationDispatcher queues notifications and delivers them as emails from a worker pool.
// Notify never blocks: when the queue is full the notification is dropped and logged.
type NotificationDispatcher struct {
	queue       chan domain.Notification
	email       domain.EmailService
	users       domain.UserRepository
	logger      *slog.Logger
	workers     int
	sendTimeout time.Duration
}

func NewNotificationDispatcher(email domain.EmailService, users domain.UserRepository, logger *slog.Logger, workers, queueSize int, sendTimeout time.Duration) *NotificationDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &NotificationDispatcher{
		queue:       make(chan domain.Notification, queueSize),
		email:       email,
		users:       users,
		logger:      logger,
		workers:     workers,
		sendTimeout: sendTimeout,
	}
}

func (d *NotificationDispatcher) Notify(n domain.Notification) {
	select {
	case d.queue <- n:
	default:
		d.logger.Warn("notification queue full, dropping", "kind", n.Kind, "event_id", n.EventID)
	}
}

// Run delivers queued notifications until ctx is done, then drains what is already queued.
func (d *NotificationDispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case n := <-d.queue:
					d.Deliver(context.WithoutCancel(ctx), n)
				}
			}
		}()
	}
	wg.Wait()
	d.drain(context.WithoutCancel(ctx))
	return nil
}

func (d *NotificationDispatcher) drain(ctx context.Context) {
	for {
		select {
		case n := <-d.queue:
			d.Deliver(ctx, n)
		default:
			return
		}
	}
}

// Deliver sends n to every recipient. Failures are logged per recipient and never returned.
func (d *NotificationDispatcher) Deliver(ctx context.Context, n domain.Notification) {
	recipients := append([]string{}, n.Recipients...)
	for _, id := range n.RecipientUserIDs {
		u, err := d.users.GetByID(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				d.logger.Error("failed to resolve notification recipient", "user_id", id, "error", err)
			}
			continue
		}
		recipients = append(recipients, u.Email)
	}
	for _, to := range recipients {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := d.email.SendNotification(sendCtx, n.Kind, &domain.NotificationEmailData{
			Email:            to,
			Variant:          n.Variant,
			EventName:        n.EventName,
			RegistrationCode: n.RegistrationCode,
			DaysBefore:       n.DaysBefore,
		})
		cancel()
		if err != nil {
			d.logger.Error("failed to send notification", "kind", n.Kind, "to", to, "error", err)
		}
	}
}
