// @title Seminar RSVP API
// @version 1.0
// @description Seminar registration, invitations and RSVPs for agents and attendees.
// @BasePath /
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"seminarrsvp/config"
	_ "seminarrsvp/docs"
	"seminarrsvp/internal/adapters/auth"
	"seminarrsvp/internal/adapters/awscfg"
	"seminarrsvp/internal/adapters/email"
	"seminarrsvp/internal/adapters/qrcode"
	"seminarrsvp/internal/adapters/sms"
	httpdelivery "seminarrsvp/internal/delivery/http"
	"seminarrsvp/internal/delivery/http/controllers"
	"seminarrsvp/internal/delivery/http/middleware"
	"seminarrsvp/internal/domain"
	"seminarrsvp/internal/repository/mongodb"
	"seminarrsvp/internal/repository/postgres"
	"seminarrsvp/internal/services"
)

const (
	qrCodeSize      = 256
	shutdownTimeout = 15 * time.Second
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded outside production")
	migrate := pflag.Bool("migrate", true, "create tables or indexes on startup")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	if err := run(cfg, logger, *migrate); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

type store struct {
	seminars domain.SeminarRepository
	users    domain.UserRepository
	close    func(context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool) (*store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := mongodb.EnsureIndexes(ctx, db); err != nil {
				_ = client.Disconnect(ctx)
				return nil, err
			}
		}
		return &store{
			seminars: mongodb.NewSeminarRepository(db),
			users:    mongodb.NewUserRepository(db),
			close:    client.Disconnect,
		}, nil
	default:
		db, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &store{
			seminars: postgres.NewSeminarRepository(db),
			users:    postgres.NewUserRepository(db),
			close:    func(context.Context) error { return db.Close() },
		}, nil
	}
}

func run(cfg *config.Config, logger *slog.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, migrate)
	if err != nil {
		return err
	}
	logger.Info("store ready", "driver", cfg.StoreDriver)

	aws := awscfg.Settings{
		Region:             cfg.AWS.Region,
		AccessKeyID:        cfg.AWS.AccessKeyID,
		SecretAccessKey:    cfg.AWS.SecretAccessKey,
		InsecureSkipVerify: cfg.AWS.InsecureSkipVerify,
	}
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		AWS:         aws,
	}, logger)
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("load email templates: %w", err)
	}
	smsSender := sms.NewSender(sms.SenderConfig{
		Provider: cfg.SMSProvider,
		SenderID: cfg.SMSSenderID,
		AWS:      aws,
	}, logger)

	notifier := services.NewNotifier(logger, cfg.NotifyWorkers, cfg.NotifyQueueSize, cfg.NotifyTimeout)
	notifications := services.NewNotificationService(
		qrcode.NewGenerator(qrCodeSize),
		smsSender,
		services.NewEmailService(mailer, renderer, logger),
		notifier,
		cfg.BaseURL,
		logger,
	)

	authService := services.NewAuthService(
		st.users,
		auth.NewBcryptHasher(0),
		auth.NewJWTIssuer(cfg.JWTSecret, nil),
		notifications,
		cfg.TokenExpiry,
		cfg.AdminCreateCode,
		cfg.RequestTimeout,
	)
	seminarService := services.NewSeminarService(st.seminars, st.users, notifications, logger, cfg.BaseURL, cfg.RequestTimeout)
	rsvpService := services.NewRSVPService(st.seminars, st.users, services.NewUserDirectory(st.users), notifications, logger, cfg.RequestTimeout)
	userService := services.NewUserService(st.users, cfg.RequestTimeout)

	gate := middleware.NewGate(auth.NewJWTVerifier(cfg.JWTSecret, nil), domain.DefaultAccessPolicy)
	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:        controllers.NewAuthController(logger, authService, cfg.CookieSecure),
		Seminars:    controllers.NewSeminarController(logger, seminarService, rsvpService),
		Invitations: controllers.NewInvitationController(logger, rsvpService),
		Users:       controllers.NewUserController(logger, userService),
	}, gate)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpdelivery.Wrap(mux, logger, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			_ = notifier.Close(context.Background())
			_ = st.close(context.Background())
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("drain notifications: %w", err))
	}
	if err := st.close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
