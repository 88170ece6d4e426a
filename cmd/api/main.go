package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/email"
	"eventhub/internal/adapters/payment"
	httpdelivery "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/jobs"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
)

const shutdownTimeout = 15 * time.Second

// @title Eventhub API
// @version 1.0
// @description Public, private and paid events with registrations, invitations and bill payments.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(db); err != nil {
			return err
		}
		logger.Info("database migrated")
	}

	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	venueRepo := postgres.NewEventVenueRepository(db)
	typeRepo := postgres.NewEventTypeRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.AWSInsecureSkipVerify,
		},
		SMTP: email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	dispatcher := services.NewNotificationDispatcher(emailService, userRepo, logger,
		cfg.Notifications.Workers, cfg.Notifications.QueueSize, cfg.Notifications.SendTimeout)

	gateways := payment.NewGatewayFactory(payment.Config{
		Provider:          cfg.Payment.Provider,
		QiwiPrivateKey:    cfg.Payment.QiwiPrivateKey,
		QiwiBaseURL:       cfg.Payment.QiwiBaseURL,
		MidtransServerKey: cfg.Payment.MidtransServerKey,
		MidtransProd:      cfg.Payment.MidtransProduction,
		Timeout:           cfg.Payment.Timeout,
	})
	if _, err := gateways(); err != nil {
		logger.Warn("payments disabled, paid registrations will be refused", "provider", cfg.Payment.Provider, "error", err)
	}
	paymentSettings := domain.PaymentSettings{
		BillLifetime:      cfg.Payment.BillLifetime,
		SuccessPaymentURL: cfg.Payment.SuccessURL,
		CallTimeout:       cfg.Payment.Timeout,
	}

	eventService := services.NewEventService(eventRepo, regRepo, dispatcher, logger, cfg.RequestTimeout)
	registrationService := services.NewRegistrationService(eventRepo, regRepo, userRepo, gateways, paymentSettings, dispatcher, logger, cfg.RequestTimeout)
	catalogService := services.NewCatalogService(venueRepo, typeRepo, cfg.RequestTimeout)

	reconciler := services.NewPaymentReconciler(regRepo, eventRepo, gateways, paymentSettings, dispatcher, logger)
	reminders := services.NewReminderService(eventRepo, regRepo, dispatcher, cfg.Jobs.ReminderDays, logger)
	scheduler, err := jobs.NewScheduler(jobs.Config{
		ReconcileSchedule: cfg.Jobs.ReconcileSchedule,
		ReminderSchedule:  cfg.Jobs.ReminderSchedule,
		JobTimeout:        cfg.Jobs.Timeout,
	}, reconciler, reminders, logger)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpdelivery.NewRouter(httpdelivery.RouterDeps{
			Logger:         logger,
			Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
			Events:         eventService,
			Registrations:  registrationService,
			Catalog:        catalogService,
			RateLimiter:    limiter,
			AllowedOrigins: cfg.AllowedOrigins,
			HealthCheck:    db.PingContext,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// The dispatcher outlives the server so notifications raised by in-flight requests are delivered.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatchDone := make(chan error, 1)
	go func() { dispatchDone <- dispatcher.Run(dispatchCtx) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error { return limiter.Run(gctx, time.Minute) })

	err = g.Wait()
	stopDispatch()
	<-dispatchDone
	logger.Info("server stopped")
	return err
}
