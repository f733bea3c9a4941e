package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"confernet/config"
	"confernet/internal/adapters/api"
	"confernet/internal/adapters/email"
	"confernet/internal/adapters/identity"
	"confernet/internal/adapters/venue"
	"confernet/internal/app"
	delivery "confernet/internal/delivery/http"
	"confernet/internal/delivery/http/controllers"
	"confernet/internal/delivery/http/views"
	"confernet/internal/delivery/ws"
	"confernet/internal/domain"
	"confernet/internal/repository/memory"
	"confernet/internal/repository/postgres"
	"confernet/internal/services"
)

const (
	serviceTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// @title ConferNet API
// @version 1.0
// @description JSON polling endpoints of the ConferNet conference app.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	hints, closeHints, err := newHintStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeHints()

	httpClient := &http.Client{Timeout: serviceTimeout}
	backend := api.NewClient(cfg.APIURL, httpClient)
	venues, err := venue.NewCatalog()
	if err != nil {
		return err
	}

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	feedbackService := services.NewFeedbackService(backend, logger, serviceTimeout)
	accountService := services.NewAccountService(backend, emailService, cfg.AppURL, logger, serviceTimeout)
	eventService := services.NewEventService(backend, feedbackService, logger, serviceTimeout)
	messageService := services.NewMessageService(backend, logger, serviceTimeout)
	peopleService := services.NewPeopleService(backend, venues, serviceTimeout)
	scheduleService := services.NewScheduleService(backend, venues, serviceTimeout)

	registry := app.NewRegistry(newIdentityBackend(cfg, httpClient), hints, app.Config{
		SignupDelay: cfg.SignupRedirectDelay,
		IdleTTL:     cfg.InstanceIdleTTL,
		HintTTL:     cfg.HintTTL,
	}, logger)
	defer registry.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go registry.RunJanitor(ctx)

	renderer, err := views.New()
	if err != nil {
		return err
	}
	base := controllers.NewBase(logger, renderer, cfg.SecureCookies)
	c := delivery.Controllers{
		Base:        base,
		Account:     controllers.NewAccountController(base, accountService),
		Events:      controllers.NewEventController(base, eventService, feedbackService, scheduleService, peopleService),
		People:      controllers.NewPeopleController(base, peopleService),
		Messages:    controllers.NewMessageController(base, messageService),
		Schedule:    controllers.NewScheduleController(base, scheduleService, venues),
		Interaction: controllers.NewInteractionController(base),
		Thread:      ws.NewThreadHandler(logger, messageService, controllers.ThreadPollInterval, cfg.CORSOrigins),
	}
	handler := delivery.NewHandler(delivery.NewRouter(c, logger), c, registry, delivery.HandlerConfig{
		AllowedOrigins: cfg.CORSOrigins,
		SecureCookies:  cfg.SecureCookies,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Environment, "api_url", cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}
	logger.Info("server exited")
	return nil
}

func newIdentityBackend(cfg *config.Config, httpClient *http.Client) domain.IdentityBackend {
	if cfg.IdentityProvider == "toolkit" {
		return identity.NewToolkitBackend(cfg.IdentityURL, cfg.IdentityAPIKey, httpClient)
	}
	return identity.NewLocalBackend(cfg.JWTSecret, cfg.TokenExpiry, bcrypt.DefaultCost)
}

// newHintStore returns the configured hint store and a func releasing it.
func newHintStore(cfg *config.Config, logger *slog.Logger) (domain.HintStore, func(), error) {
	if cfg.HintStore != "postgres" {
		return memory.NewHintStore(), func() {}, nil
	}
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("session hints stored in postgres")
	return postgres.NewHintRepository(db), closer(db, logger), nil
}

func closer(db *sql.DB, logger *slog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", "err", err)
		}
	}
}
