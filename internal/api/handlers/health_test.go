package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	up := NewHealthHandler(pingFunc(func(context.Context) error { return nil }), "1.2.3", logger.Nop())
	down := NewHealthHandler(pingFunc(func(context.Context) error { return fmt.Errorf("refused") }), "1.2.3", logger.Nop())

	rr := httptest.NewRecorder()
	up.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"version":"1.2.3"`)

	rr = httptest.NewRecorder()
	up.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	down.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"SERVICE_UNAVAILABLE"`)

	rr = httptest.NewRecorder()
	down.Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code, "liveness ignores the database")
}
