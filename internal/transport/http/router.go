package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rchrostowski/elorevnightlightproject/internal/config"
	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/internal/middleware"
)

// NewRouter assembles the full HTTP surface: dashboard API, health check,
// and metrics, behind the standard middleware chain.
func NewRouter(cfg *config.Config, logger *slog.Logger, provider RunProvider) chi.Router {
	errorHandler := apperrors.NewErrorHandler(logger, false)
	handler := NewHandler(provider, logger, errorHandler)
	rateLimiter := middleware.NewRateLimiter(
		cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(rateLimiter.Handler)

	r.Mount("/api", handler.Routes())
	r.Get("/healthz", Healthz)
	r.Method("GET", "/metrics", Metrics())

	return r
}
