package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pratik-mahalle/docbrief/internal/api/handlers"
	"github.com/pratik-mahalle/docbrief/internal/api/middleware"
	"github.com/pratik-mahalle/docbrief/internal/config"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/metrics"
	"github.com/pratik-mahalle/docbrief/internal/pkg/utils"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Webhook  *handlers.WebhookHandler
	Access   *handlers.AccessHandler
	Document *handlers.DocumentHandler
	Billing  *handlers.BillingHandler
}

// Deps are the request-scoped collaborators shared by middleware
type Deps struct {
	Verifier middleware.TokenVerifier
	Gate     middleware.AccessChecker
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders(cfg.Server.IsProduction()))
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
		r.Handle("/metrics", metrics.Handler())

		// Provider callbacks authenticate by signature
		r.Post("/api/webhooks/clerk", h.Webhook.Clerk)
		r.Post("/api/webhooks/stripe", h.Webhook.Stripe)
	})

	// Routes that decide for themselves what an anonymous caller sees
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuthMiddleware(deps.Verifier))

		r.Get("/dashboard", h.Access.Dashboard)
		r.Get("/api/v1/access", h.Access.Access)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(deps.Verifier))

		r.Route("/api/v1/billing", func(r chi.Router) {
			r.Post("/checkout", h.Billing.Checkout)
			r.Post("/portal", h.Billing.Portal)
			r.Get("/subscription", h.Billing.Subscription)
		})
	})

	// Paid features
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuthMiddleware(deps.Verifier))
		r.Use(middleware.RequireSubscription(deps.Gate))

		r.With(middleware.UserRateLimit(
			middleware.PerMinute(cfg.RateLimit.AnalyzePerMinute),
			cfg.RateLimit.AnalyzeBurst,
		)).Post("/api/v1/analyze", h.Document.Analyze)
		r.Post("/api/v1/extract", h.Document.Extract)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, errors.NotFound("Route"))
	})

	return r
}
