package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pratik-mahalle/docbrief/internal/auth"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// UserIDKey is the context key for user ID
	UserIDKey ContextKey = "userID"
	// SessionIDKey is the context key for the identity provider session
	SessionIDKey ContextKey = "sessionID"
)

// TokenVerifier validates a session token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware returns a middleware that rejects requests without a valid
// session token
func AuthMiddleware(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
				return
			}

			claims, err := v.Verify(tokenStr)
			if err != nil {
				utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, withClaims(w, r, claims))
		})
	}
}

// OptionalAuthMiddleware is like AuthMiddleware but doesn't reject requests
// without tokens. Invalid tokens are treated as absent.
func OptionalAuthMiddleware(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr := tokenFromRequest(r); tokenStr != "" {
				if claims, err := v.Verify(tokenStr); err == nil {
					r = withClaims(w, r, claims)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokenFromRequest reads a bearer token, falling back to the session cookie
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func withClaims(w http.ResponseWriter, r *http.Request, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID())
	ctx = context.WithValue(ctx, SessionIDKey, claims.SessionID)

	AddLogField(w, "user_id", claims.UserID())

	return r.WithContext(ctx)
}

// GetUserID extracts the user ID from the request context
func GetUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// WithUserID returns ctx carrying userID, as the auth middleware would
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
