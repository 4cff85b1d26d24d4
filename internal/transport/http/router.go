package http

import (
	"context"
	"net/http"

	"github.com/bbuddy-otp/internal/application/otp"
	"github.com/bbuddy-otp/internal/config"
	"github.com/bbuddy-otp/internal/transport/http/handler"
	appmiddleware "github.com/bbuddy-otp/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. Background work started
// for the router (rate limiter cleanup) ends when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(appmiddleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:    deps.OTPStore,
		Mailer:   deps.Mailer,
		Clock:    deps.Clock,
		TTL:      cfg.OTPTTL,
		From:     cfg.SenderEmail,
		FromName: cfg.SenderName,
		LogCodes: cfg.OTPLogCodes,
	})

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc)

	// Off unless RATE_LIMIT_RPS is set.
	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitRPS > 0 {
		limit = appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst).Limit
	}

	r.Get("/", healthH.Index)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthH.Health)
		r.With(limit).Post("/send-otp", otpH.Send)
		r.With(limit).Post("/verify-otp", otpH.Verify)
	})

	return r
}
