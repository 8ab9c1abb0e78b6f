package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "app error keeps status and message",
			err:        errors.Conflict("User already exists"),
			wantStatus: http.StatusConflict,
			wantCode:   errors.ErrCodeConflict,
			wantMsg:    "User already exists",
		},
		{
			name:       "wrapped app error is unwrapped",
			err:        fmt.Errorf("sync: %w", errors.NotFound("Subscription")),
			wantStatus: http.StatusNotFound,
			wantCode:   errors.ErrCodeNotFound,
			wantMsg:    "Subscription not found",
		},
		{
			name:       "plain error hides its text",
			err:        fmt.Errorf("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.ErrCodeInternal,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			require.NoError(t, WriteError(rr, tt.err))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}
