// Package skillswap предоставляет маршруты для основного приложения.
package skillswap

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/skillswap/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/health"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/ledger/balance"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/ledger/history"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/matching/learners"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/matching/mentors"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/session/book"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/session/cancel"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/session/complete"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/session/list"
	"github.com/magabrotheeeer/skillswap/internal/http/handlers/session/start"
	"github.com/magabrotheeeer/skillswap/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/skillswap/internal/services/auth"
	ledgerservice "github.com/magabrotheeeer/skillswap/internal/services/ledger"
	matchingservice "github.com/magabrotheeeer/skillswap/internal/services/matching"
	schedulerservice "github.com/magabrotheeeer/skillswap/internal/services/scheduler"
	"github.com/magabrotheeeer/skillswap/internal/storage"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, db *storage.Storage,
	authService *authservice.AuthService, ledgerService *ledgerservice.LedgerService,
	schedulerService *schedulerservice.SchedulerService, matchingService *matchingservice.MatchingService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Put("/profile", update.New(logger, authService).ServeHTTP)
			r.Get("/credits/balance", balance.New(logger, ledgerService).ServeHTTP)
			r.Get("/credits/history", history.New(logger, ledgerService).ServeHTTP)
			r.Post("/sessions", book.New(logger, schedulerService).ServeHTTP)
			r.Post("/sessions/{id}/start", start.New(logger, schedulerService).ServeHTTP)
			r.Post("/sessions/{id}/complete", complete.New(logger, schedulerService).ServeHTTP)
			r.Post("/sessions/{id}/cancel", cancel.New(logger, schedulerService).ServeHTTP)
			r.Get("/sessions/list", list.New(logger, schedulerService).ServeHTTP)
			r.Get("/matching/mentors", mentors.New(logger, matchingService).ServeHTTP)
			r.Get("/matching/learners", learners.New(logger, matchingService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
