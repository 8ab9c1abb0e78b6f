package handlers

import (
	"net/http"
	"strings"

	"github.com/pratik-mahalle/docbrief/internal/api/middleware"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/utils"
)

// requireUser returns the authenticated user ID, writing a 401 when absent
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Authentication required"))
		return "", false
	}
	return userID, true
}

// wantsJSON reports whether the caller is an API client rather than a browser
// following a link
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
