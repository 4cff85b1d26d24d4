package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bbuddy-otp/internal/application/otp"
	"github.com/bbuddy-otp/internal/config"
	"github.com/bbuddy-otp/internal/infrastructure/dynamo"
	"github.com/bbuddy-otp/internal/infrastructure/memory"
	redisinfra "github.com/bbuddy-otp/internal/infrastructure/redis"
	"github.com/bbuddy-otp/internal/infrastructure/sendgrid"
	"github.com/bbuddy-otp/internal/infrastructure/smtp"
	transporthttp "github.com/bbuddy-otp/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatalf("otp store: %v", err)
	}
	defer closeStore()

	deps := &transporthttp.Deps{
		OTPStore: store,
		Mailer:   newMailer(cfg),
	}
	router := transporthttp.NewRouter(ctx, cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			"url", fmt.Sprintf("http://localhost:%s", cfg.AppPort),
			"env", cfg.AppEnv,
			"sender", cfg.SenderEmail,
			"mail_provider", cfg.MailProvider,
			"otp_store", cfg.OTPStore,
		)
		if cfg.MailProvider == "sendgrid" && cfg.SendGridAPIKey == "" {
			slog.Warn("SENDGRID_API_KEY is not set; every send-otp request will fail")
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.AppEnv == "production" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

// newStore returns the configured OTP store and a func that releases it.
func newStore(ctx context.Context, cfg *config.Config) (otp.Store, func(), error) {
	switch cfg.OTPStore {
	case "redis":
		client, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				slog.Warn("redis close", "err", err)
			}
		}
		return redisinfra.NewOTPStore(client, cfg.RedisKeyPrefix, cfg.OTPRetention), closeFn, nil
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		// Bootstrap creates the table if it doesn't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoOTPTable)
		return dynamo.NewOTPStore(client, cfg.DynamoOTPTable, cfg.OTPRetention), func() {}, nil
	default:
		return memory.NewStore(cfg.OTPRetention, cfg.OTPCleanupInterval), func() {}, nil
	}
}

func newMailer(cfg *config.Config) otp.Mailer {
	if cfg.MailProvider == "smtp" {
		return smtp.NewMailer(cfg)
	}
	return sendgrid.NewMailer(cfg)
}
