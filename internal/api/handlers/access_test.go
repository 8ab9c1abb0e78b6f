package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/docbrief/internal/api/middleware"
	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
	"github.com/pratik-mahalle/docbrief/internal/domain/user"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/services"
	"github.com/pratik-mahalle/docbrief/internal/testutil"
)

func newAccessHandler(t *testing.T, status string) *AccessHandler {
	t.Helper()
	users := testutil.NewMockUserRepository()
	subs := testutil.NewMockSubscriptionRepository(users)
	customer := "cus_1"
	require.NoError(t, users.Create(context.Background(), &user.User{ID: "user_1", Email: "a@example.com", StripeCustomerID: &customer}))
	if status != "" {
		_, err := subs.UpsertForCustomer(context.Background(), customer, subscription.Snapshot{StripeSubscriptionID: "sub_1", Status: status})
		require.NoError(t, err)
	}
	return NewAccessHandler(services.NewAccessGate(subs, logger.Nop()), true, logger.Nop())
}

func TestAccessHandler_Dashboard(t *testing.T) {
	tests := []struct {
		name         string
		status       string
		userID       string
		wantStatus   int
		wantLocation string
	}{
		{"signed out", subscription.StatusActive, "", http.StatusFound, "/sign-in?redirect_url=%2Fdashboard"},
		{"no subscription", "", "user_1", http.StatusFound, "/pricing"},
		{"inactive", subscription.StatusCanceled, "user_1", http.StatusFound, "/pricing"},
		{"active", subscription.StatusActive, "user_1", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAccessHandler(t, tt.status)
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tt.userID != "" {
				req = req.WithContext(middleware.WithUserID(req.Context(), tt.userID))
			}
			rr := httptest.NewRecorder()

			h.Dashboard(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantLocation, rr.Header().Get("Location"))
		})
	}
}

func TestAccessHandler_DashboardJSON(t *testing.T) {
	h := newAccessHandler(t, "")
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), "user_1"))
	rr := httptest.NewRecorder()

	h.Dashboard(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var v services.Verdict
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	assert.Equal(t, services.VerdictNeedsSubscription, v.Kind)
	assert.Equal(t, "/pricing", v.RedirectTo)
}

func TestAccessHandler_Access(t *testing.T) {
	h := newAccessHandler(t, subscription.StatusActive)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/access?delay_ms=10", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "user_1"))
	rr := httptest.NewRecorder()

	start := time.Now()
	h.Access(rr, req)

	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.JSONEq(t, `{"verdict":"allowed","user_id":"user_1"}`, rr.Body.String())
}
