package utils

import (
	"encoding/json"
	"net/http"

	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
)

// ErrorResponse is the JSON body written for every failed request
type ErrorResponse struct {
	Error      string      `json:"error"`
	Code       string      `json:"code,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	RedirectTo string      `json:"redirect_to,omitempty"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes err as an ErrorResponse. Errors that are not an
// *errors.AppError are reported as internal errors without leaking their text.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := errors.From(err)
	return WriteJSON(w, appErr.StatusCode, ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// WriteRedirectError writes err with a redirect target for the caller
func WriteRedirectError(w http.ResponseWriter, err error, redirectTo string) error {
	appErr := errors.From(err)
	return WriteJSON(w, appErr.StatusCode, ErrorResponse{
		Error:      appErr.Message,
		Code:       appErr.Code,
		RedirectTo: redirectTo,
	})
}

// WriteErrorMessage writes a simple error message
func WriteErrorMessage(w http.ResponseWriter, status int, code, message string) error {
	return WriteJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// DecodeJSON decodes the request body into dst, rejecting unknown trailing data.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errors.BadRequest("Invalid request body")
	}
	return nil
}
