package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Subscription"), ErrCodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("taken"), ErrCodeConflict, http.StatusConflict},
		{"payment required", PaymentRequired("Subscription required"), ErrCodePaymentRequired, http.StatusPaymentRequired},
		{"signature", SignatureInvalid("stripe", fmt.Errorf("bad")), ErrCodeSignature, http.StatusBadRequest},
		{"provider", ProviderAPIError("Stripe", fmt.Errorf("timeout")), ErrCodeProviderAPI, http.StatusBadGateway},
		{"unavailable", ServiceUnavailable("Database connection failed"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.True(t, HasCode(tt.err, tt.wantCode))
		})
	}
}

func TestDatabaseError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := DatabaseError("Failed to update subscription", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "Failed to update subscription: connection reset", err.Error())
}

func TestValidationError_Details(t *testing.T) {
	err := ValidationError("text is required", []string{"text"})
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, []string{"text"}, err.Details)
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	wrapped := fmt.Errorf("handler: %w", NotFound("User"))
	assert.Equal(t, ErrCodeNotFound, From(wrapped).Code)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))

	plain := From(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.StatusCode)
}
