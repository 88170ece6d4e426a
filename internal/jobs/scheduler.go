package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"eventhub/internal/domain"
)

// Config holds the cron specs of the background jobs.
type Config struct {
	ReconcileSchedule string
	ReminderSchedule  string
	// JobTimeout bounds a single run of any job.
	JobTimeout time.Duration
}

// Scheduler runs payment reconciliation and event reminders on cron schedules.
// A run still in progress when its next tick fires is skipped.
type Scheduler struct {
	cron       *cron.Cron
	reconciler domain.PaymentReconciler
	reminders  domain.ReminderSender
	logger     *slog.Logger
	timeout    time.Duration
	now        func() time.Time
}

func NewScheduler(cfg Config, reconciler domain.PaymentReconciler, reminders domain.ReminderSender, logger *slog.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		reconciler: reconciler,
		reminders:  reminders,
		logger:     logger,
		timeout:    cfg.JobTimeout,
		now:        time.Now,
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Minute
	}
	if _, err := s.cron.AddFunc(cfg.ReconcileSchedule, func() { s.ReconcilePayments(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule payment reconciliation %q: %w", cfg.ReconcileSchedule, err)
	}
	if _, err := s.cron.AddFunc(cfg.ReminderSchedule, func() { s.SendReminders(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", cfg.ReminderSchedule, err)
	}
	return s, nil
}

// Run starts the schedules and blocks until ctx is done and running jobs have finished.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// ReconcilePayments runs one reconciliation and logs its summary.
func (s *Scheduler) ReconcilePayments(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		s.logger.Error("payment reconciliation failed", "error", err)
		return
	}
	s.logger.Info("payment reconciliation finished",
		"checked", res.Checked,
		"updated", res.Updated,
		"rejected", res.Rejected,
		"failed", res.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
		"summary", res.Summary(),
	)
}

// SendReminders queues reminders for events starting the configured days from now.
func (s *Scheduler) SendReminders(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.reminders.SendReminders(ctx, s.now())
	if err != nil {
		s.logger.Error("sending reminders failed", "queued", n, "error", err)
		return
	}
	s.logger.Info("reminders queued", "count", n)
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
