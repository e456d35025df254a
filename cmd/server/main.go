package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hireloop/portal-api/internal/adapters/email"
	"github.com/hireloop/portal-api/internal/adapters/firebase"
	httphandler "github.com/hireloop/portal-api/internal/adapters/http/handler"
	redispub "github.com/hireloop/portal-api/internal/adapters/redis"
	"github.com/hireloop/portal-api/internal/adapters/repository/postgres"
	"github.com/hireloop/portal-api/internal/adapters/zoom"
	"github.com/hireloop/portal-api/internal/core/application"
	"github.com/hireloop/portal-api/internal/core/auth"
	"github.com/hireloop/portal-api/internal/core/company"
	"github.com/hireloop/portal-api/internal/core/employee"
	"github.com/hireloop/portal-api/internal/core/event"
	"github.com/hireloop/portal-api/internal/core/mail"
	"github.com/hireloop/portal-api/internal/core/meeting"
	"github.com/hireloop/portal-api/internal/core/notification"
	"github.com/hireloop/portal-api/internal/core/user"
	"github.com/hireloop/portal-api/internal/platform/config"
	pg "github.com/hireloop/portal-api/internal/platform/db/postgres"
	rdb "github.com/hireloop/portal-api/internal/platform/db/redis"
	"github.com/hireloop/portal-api/internal/platform/logging"
	"github.com/hireloop/portal-api/internal/platform/scheduler"
	"github.com/hireloop/portal-api/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database pool: %w", err)
	}
	defer dbPool.Close()

	publisher, closePublisher, err := newPublisher(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closePublisher()

	mailer, err := newMailer(ctx, cfg.Mail, logger)
	if err != nil {
		return err
	}

	verifier, err := firebase.NewVerifier(ctx, cfg.Auth.FirebaseProjectID, cfg.Auth.CredentialsFile)
	if err != nil {
		return fmt.Errorf("initialize token verifier: %w", err)
	}

	txManager := pg.NewTransactionManager(dbPool)

	userRepo := postgres.NewUserRepository(dbPool)
	userSvc := user.NewService(userRepo, nil)
	authSvc := auth.NewService(verifier, userRepo)

	notificationSvc := notification.NewService(postgres.NewNotificationRepository(dbPool), publisher, nil)
	employeeSvc := employee.NewService(postgres.NewEmployeeRepository(dbPool), userRepo, nil)

	applicationSvc := application.NewService(application.Deps{
		Repo:      postgres.NewApplicationRepository(dbPool),
		Jobs:      postgres.NewJobRepository(dbPool),
		Hirer:     employeeSvc,
		Notifier:  notificationSvc,
		Publisher: publisher,
		TX:        txManager,
	})

	companySvc := company.NewService(company.Deps{
		Repo:      postgres.NewCompanyRepository(dbPool),
		Users:     userRepo,
		Employees: employeeSvc,
		Notifier:  notificationSvc,
		Mailer:    mailer,
		TX:        txManager,
	})

	meetingSvc := meeting.NewService(meeting.Deps{
		Repo: postgres.NewMeetingRepository(dbPool),
		Scheduler: zoom.NewClient(zoom.Config{
			AccountID:    cfg.Zoom.AccountID,
			ClientID:     cfg.Zoom.ClientID,
			ClientSecret: cfg.Zoom.ClientSecret,
			BaseURL:      cfg.Zoom.BaseURL,
			TokenURL:     cfg.Zoom.TokenURL,
			UserID:       cfg.Zoom.UserID,
		}),
		Admins:        userRepo,
		Notifier:      notificationSvc,
		Mailer:        mailer,
		TX:            txManager,
		ReminderLead:  cfg.Reminders.LeadTime,
		ReminderBatch: cfg.Reminders.BatchSize,
	})

	router := httphandler.NewRouter(httphandler.Services{
		Auth:          authSvc,
		Users:         userSvc,
		Applications:  applicationSvc,
		Notifications: notificationSvc,
		Companies:     companySvc,
		Employees:     employeeSvc,
		Meetings:      meetingSvc,
		Pinger:        dbPool,
		Logger:        logger,
	})

	srv := server.New(cfg.Server, router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		srv.MonitorHealth(gctx, dbPool, 15*time.Second)
		return nil
	})
	if cfg.Reminders.Enabled {
		reminders := scheduler.New(meetingSvc, cfg.Reminders.Schedule, logger)
		g.Go(func() error { return reminders.Run(gctx) })
	}

	return g.Wait()
}

func newPublisher(ctx context.Context, cfg config.RedisConfig) (event.Publisher, func(), error) {
	if cfg.URL == "" {
		slog.Info("redis url not set, realtime events disabled")
		return event.NopPublisher{}, func() {}, nil
	}

	client, err := rdb.NewClient(ctx, cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize redis: %w", err)
	}
	return redispub.NewPublisher(client, cfg.ChannelPrefix), func() { _ = client.Close() }, nil
}

func newMailer(ctx context.Context, cfg config.MailConfig, logger *slog.Logger) (mail.Sender, error) {
	switch cfg.Driver {
	case config.MailDriverSMTP:
		s, err := email.NewSMTPSender(cfg)
		if err != nil {
			return nil, fmt.Errorf("initialize smtp mailer: %w", err)
		}
		return s, nil
	case config.MailDriverGmail:
		s, err := email.NewGmailSender(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("initialize gmail mailer: %w", err)
		}
		return s, nil
	default:
		return email.NewLogSender(logger), nil
	}
}
