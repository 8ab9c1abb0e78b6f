package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pratik-mahalle/docbrief/internal/api/handlers"
	"github.com/pratik-mahalle/docbrief/internal/auth"
	"github.com/pratik-mahalle/docbrief/internal/config"
	"github.com/pratik-mahalle/docbrief/internal/extract"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/validator"
	"github.com/pratik-mahalle/docbrief/internal/services"
	"github.com/pratik-mahalle/docbrief/internal/testutil"
)

type rejectAll struct{}

func (rejectAll) Verify(string) (*auth.Claims, error) { return nil, context.Canceled }

type okDB struct{}

func (okDB) PingContext(context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.Nop()
	users := testutil.NewMockUserRepository()
	subs := testutil.NewMockSubscriptionRepository(users)
	provider := testutil.NewMockBillingProvider()
	gate := services.NewAccessGate(subs, log)

	cfg := &config.Config{
		Server:    config.ServerConfig{FrontendURL: "http://localhost:3000"},
		RateLimit: config.RateLimitConfig{AnalyzePerMinute: 5, AnalyzeBurst: 5},
	}

	h := &Handlers{
		Health:  handlers.NewHealthHandler(okDB{}, "test", log),
		Webhook: handlers.NewWebhookHandler(services.NewIdentityService(users, log), services.NewBillingService(subs, provider, log), nil, "whsec_test", log),
		Access:  handlers.NewAccessHandler(gate, false, log),
		Document: handlers.NewDocumentHandler(
			services.NewSummaryService(&testutil.MockSummarizer{}, nil, log),
			extract.New(extract.Options{Renderer: extract.NewLedongthucRenderer(), Logger: log}),
			1<<20, log, validator.New(),
		),
		Billing: handlers.NewBillingHandler(services.NewCheckoutService(users, subs, provider, "price", "http://localhost:3000", log), log),
	}
	return New(cfg, log, h, Deps{Verifier: rejectAll{}, Gate: gate})
}

func TestRouter(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/dashboard", http.StatusFound},
		{http.MethodGet, "/api/v1/access", http.StatusOK},
		{http.MethodPost, "/api/v1/analyze", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/extract", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/billing/checkout", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/billing/subscription", http.StatusUnauthorized},
		{http.MethodPost, "/api/webhooks/clerk", http.StatusBadRequest},
		{http.MethodPost, "/api/webhooks/stripe", http.StatusBadRequest},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
