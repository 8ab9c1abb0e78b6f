package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/docbrief/internal/auth"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/utils"
	"github.com/pratik-mahalle/docbrief/internal/services"
)

// fakeVerifier accepts "good-<user>" tokens
type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (*auth.Claims, error) {
	var user string
	if _, err := fmt.Sscanf(token, "good-%s", &user); err != nil {
		return nil, jwt.ErrTokenMalformed
	}
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: user}}, nil
}

type fakeGate struct {
	verdict services.Verdict
	seen    string
}

func (g *fakeGate) Check(ctx context.Context, req services.AccessRequest) services.Verdict {
	g.seen = req.UserID
	return g.verdict
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	id, _ := GetUserID(r)
	_, _ = w.Write([]byte(id))
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(fakeVerifier{})(http.HandlerFunc(echoUser))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good-user_1") }, http.StatusOK, "user_1"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer good-user_1") }, http.StatusOK, "user_1"},
		{"session cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "good-user_2"}) }, http.StatusOK, "user_2"},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"invalid", func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }, http.StatusUnauthorized, ""},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic good-user_1") }, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	h := OptionalAuthMiddleware(fakeVerifier{})(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-user_1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "user_1", rr.Body.String())
}

func TestRequireSubscription(t *testing.T) {
	tests := []struct {
		name       string
		verdict    services.Verdict
		wantStatus int
		wantTo     string
	}{
		{"allowed", services.Verdict{Kind: services.VerdictAllowed, UserID: "user_1"}, http.StatusOK, ""},
		{"unauthenticated", services.Verdict{Kind: services.VerdictUnauthenticated, RedirectTo: "/sign-in?redirect_url=%2Fdashboard"}, http.StatusUnauthorized, "/sign-in?redirect_url=%2Fdashboard"},
		{"needs subscription", services.Verdict{Kind: services.VerdictNeedsSubscription, RedirectTo: "/pricing"}, http.StatusPaymentRequired, "/pricing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := &fakeGate{verdict: tt.verdict}
			h := RequireSubscription(gate)(http.HandlerFunc(echoUser))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
			req = req.WithContext(WithUserID(req.Context(), "user_1"))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "user_1", gate.seen)
			if tt.wantStatus != http.StatusOK {
				var body utils.ErrorResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, tt.wantTo, body.RedirectTo)
				assert.NotEmpty(t, body.Error)
			}
		})
	}
}

func TestUserRateLimit(t *testing.T) {
	h := UserRateLimit(PerMinute(1), 2)(http.HandlerFunc(echoUser))

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		if user != "" {
			req = req.WithContext(WithUserID(req.Context(), user))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, do("user_1"))
	assert.Equal(t, http.StatusOK, do("user_1"))
	assert.Equal(t, http.StatusTooManyRequests, do("user_1"))
	// separate buckets per user and for anonymous callers
	assert.Equal(t, http.StatusOK, do("user_2"))
	assert.Equal(t, http.StatusOK, do(""))
}

func TestPerMinute(t *testing.T) {
	assert.InDelta(t, 5.0/60.0, float64(PerMinute(5)), 1e-9)
	assert.True(t, PerMinute(0) > 1e300)
}

func TestRecovery(t *testing.T) {
	h := RequestID()(Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("secret detail")
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret detail")
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(true)(http.HandlerFunc(echoUser))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}
