// Package mentorgateway собирает HTTP-приложение шлюза наставника.
package mentorgateway

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/mentor-gateway/internal/http/handlers/billing"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/handlers/chat"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/handlers/contact"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/handlers/health"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/handlers/subscription/check"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mentor-gateway/internal/services/entitlement"
)

// Deps: зависимости обработчиков. Nil-поля publisher и verifier допустимы.
type Deps struct {
	Evaluator     *entitlement.Evaluator
	Completer     chat.Completer
	Billing       billing.Service
	EventVerifier webhook.Verifier
	Reconciler    webhook.Reconciler
	Contact       contact.Publisher
	TokenVerifier middlewarectx.TokenVerifier
	Limiter       *middlewarectx.ClientLimiter
	HealthChecks  map[string]health.Pinger
	SignInURL     string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Вебхук Stripe подписан и не несёт токена пользователя
		r.Post("/billing/webhook", webhook.New(logger, d.EventVerifier, d.Reconciler).ServeHTTP)
		r.Get("/health", health.New(logger, d.HealthChecks).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.IdentityMiddleware(d.TokenVerifier, logger))

			checkHandler := check.New(logger, d.Evaluator)
			r.Get("/subscription/check", checkHandler.ServeHTTP)
			r.Post("/subscription/recheck", checkHandler.ServeHTTP)

			r.Post("/billing/checkout", billing.NewCheckout(logger, d.Billing).ServeHTTP)
			portal := billing.NewPortal(logger, d.Billing, d.SignInURL)
			r.Get("/billing/portal", portal.ServeHTTP)
			r.Post("/billing/portal", portal.ServeHTTP)
			r.Get("/billing/session", billing.NewSession(logger, d.Billing).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(d.Limiter, logger))
				r.Post("/chat", chat.New(logger, d.Evaluator, d.Completer).ServeHTTP)
				r.Post("/contact", contact.New(logger, d.Contact).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
