package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pratik-mahalle/docbrief/internal/api/handlers"
	"github.com/pratik-mahalle/docbrief/internal/api/router"
	"github.com/pratik-mahalle/docbrief/internal/auth"
	"github.com/pratik-mahalle/docbrief/internal/billing"
	"github.com/pratik-mahalle/docbrief/internal/cache"
	"github.com/pratik-mahalle/docbrief/internal/config"
	"github.com/pratik-mahalle/docbrief/internal/extract"
	"github.com/pratik-mahalle/docbrief/internal/identity"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/validator"
	"github.com/pratik-mahalle/docbrief/internal/repository/postgres"
	"github.com/pratik-mahalle/docbrief/internal/services"
	"github.com/pratik-mahalle/docbrief/internal/summarizer"
	"github.com/pratik-mahalle/docbrief/internal/worker"
	"github.com/pratik-mahalle/docbrief/migrations"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Level: "info", Format: "json"}).FatalWithErr(err, "Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
		Service:    "docbrief",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.FatalWithErr(err, "Server exited with error")
	}
	log.Info("Server exiting gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// Database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := postgres.RunMigrations(ctx, db, migrations.GetFS())
	if err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{
		"driver":  cfg.Database.Driver,
		"applied": applied,
	}).Info("Database ready")

	userRepo := postgres.NewUserRepository(db)
	subRepo := postgres.NewSubscriptionRepository(db)

	// External providers
	provider := billing.NewStripeProvider(cfg.Billing.StripeSecretKey)

	webhookVerifier, err := newIdentityVerifier(cfg.Auth.WebhookSecret, log)
	if err != nil {
		return err
	}

	sessionVerifier, err := auth.NewJWKSVerifier(ctx, cfg.Auth.JWKSURL, cfg.Auth.Issuer, log)
	if err != nil {
		return err
	}
	defer sessionVerifier.Close()

	var summaryCache services.SummaryCache
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WarnWithErr(err, "Redis unavailable, summaries will not be cached")
		} else {
			defer client.Close()
			summaryCache = cache.NewSummaryCache(client, cfg.Summarizer.CacheTTL)
		}
	}

	// Services
	identityService := services.NewIdentityService(userRepo, log)
	billingService := services.NewBillingService(subRepo, provider, log)
	checkoutService := services.NewCheckoutService(userRepo, subRepo, provider, cfg.Billing.PriceID, cfg.Server.DomainURL(), log)
	summaryService := services.NewSummaryService(summarizer.NewOpenAI(cfg.Summarizer), summaryCache, log)
	gate := services.NewAccessGate(subRepo, log)
	extractor := extract.New(extract.Options{
		Renderer:    extract.NewLedongthucRenderer(),
		Concurrency: cfg.Extraction.Concurrency,
		PageTimeout: cfg.Extraction.PageTimeout,
		Logger:      log,
	})

	if cfg.Server.DomainURL() == "" {
		log.Warn("No public URL configured, checkout and portal are disabled")
	}

	// Background jobs
	syncer := worker.NewSubscriptionSyncer(subRepo, provider, cfg.Worker.ResyncSchedule, log)
	if err := syncer.Start(ctx); err != nil {
		return err
	}
	defer syncer.Stop()

	// HTTP
	h := &router.Handlers{
		Health:   handlers.NewHealthHandler(db, version, log),
		Webhook:  handlers.NewWebhookHandler(identityService, billingService, webhookVerifier, cfg.Billing.WebhookSecret, log),
		Access:   handlers.NewAccessHandler(gate, !cfg.Server.IsProduction(), log),
		Document: handlers.NewDocumentHandler(summaryService, extractor, cfg.Extraction.MaxUploadSize, log, validator.New()),
		Billing:  handlers.NewBillingHandler(checkoutService, log),
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.New(cfg, log, h, router.Deps{Verifier: sessionVerifier, Gate: gate}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":    srv.Addr,
			"version": version,
		}).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newIdentityVerifier returns nil when no secret is configured; identity
// webhooks are then rejected at request time and the rest of the server runs.
func newIdentityVerifier(secret string, log *logger.Logger) (*identity.Verifier, error) {
	if secret == "" {
		log.Warn("CLERK_WEBHOOK_SECRET is not set, identity webhooks will be rejected")
		return nil, nil
	}
	return identity.NewVerifier(secret)
}
