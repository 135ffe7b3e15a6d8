package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/cambiod/internal/adapter/http/handler"
	"github.com/iho/cambiod/internal/adapter/http/middleware"
	"github.com/iho/cambiod/internal/domain"
	"github.com/iho/cambiod/internal/infrastructure/auth"
	"github.com/iho/cambiod/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	AccountHandler     *handler.AccountHandler
	ExchangeHandler    *handler.ExchangeHandler
	RateHandler        *handler.RateHandler
	TransactionHandler *handler.TransactionHandler
	HealthHandler      *handler.HealthHandler

	// JWTManager enables authentication when non-nil and AuthEnabled is set.
	JWTManager  *auth.JWTManager
	AuthEnabled bool

	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	authRequired := cfg.AuthEnabled && cfg.JWTManager != nil

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public surface
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)
		r.Get("/rates", cfg.RateHandler.GetBoard)
		r.Get("/rates/active", cfg.RateHandler.GetActive)

		// Authenticated surface
		r.Group(func(r chi.Router) {
			if authRequired {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			}

			r.Route("/exchange", func(r chi.Router) {
				r.Post("/buy", cfg.ExchangeHandler.Buy)
				r.Post("/sell", cfg.ExchangeHandler.Sell)
			})

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Get("/{id}/transactions", cfg.TransactionHandler.ListByAccount)
			})

			r.Post("/clients", cfg.AccountHandler.CreateClient)
			r.Get("/clients/{id}/accounts", cfg.AccountHandler.ListByClient)
			r.Get("/transactions/{receipt}", cfg.TransactionHandler.GetByReceipt)
		})

		// Admin surface
		r.Group(func(r chi.Router) {
			if authRequired {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
				r.Use(middleware.RequireRole(domain.RoleAdmin))
			}

			r.Post("/rates", cfg.RateHandler.Publish)
			r.Post("/accounts/{id}/deactivate", cfg.AccountHandler.Deactivate)
		})
	})

	return r
}
