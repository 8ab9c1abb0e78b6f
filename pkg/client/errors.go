package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-success response from the API. Message is the server's
// error text, unchanged, so it can be shown to the user as-is.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"error"`
	RedirectTo string      `json:"redirect_to,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed with status %d", e.StatusCode)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil {
		apiErr = &APIError{}
	}
	apiErr.StatusCode = status
	return apiErr
}

// IsUnauthorized returns true if the error is a 401 unauthorized error
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsSubscriptionRequired returns true when the user has no active subscription
func (e *APIError) IsSubscriptionRequired() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// IsRateLimited returns true if the error is a 429 error
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsServerError returns true if the error is a 5xx server error
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}
