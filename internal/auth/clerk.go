package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
)

// SessionCookie is the cookie the identity provider's frontend SDK sets
const SessionCookie = "__session"

// Claims are the session token claims used by the API. The subject is the
// identity provider's user ID.
type Claims struct {
	SessionID       string `json:"sid,omitempty"`
	AuthorizedParty string `json:"azp,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the token subject
func (c *Claims) UserID() string {
	return c.Subject
}

// Verifier validates identity provider session tokens
type Verifier struct {
	keyfunc jwt.Keyfunc
	issuer  string
	close   func()
}

// NewVerifier creates a verifier from an existing key function. issuer is
// checked when non-empty.
func NewVerifier(kf jwt.Keyfunc, issuer string) *Verifier {
	return &Verifier{keyfunc: kf, issuer: issuer, close: func() {}}
}

// NewJWKSVerifier fetches the signing keys from jwksURL and refreshes them in
// the background until ctx is done or Close is called.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer string, log *logger.Logger) (*Verifier, error) {
	if jwksURL == "" {
		return nil, fmt.Errorf("JWKS URL is required")
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.WarnWithErr(err, "Failed to refresh JWKS")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}

	v := NewVerifier(jwks.Keyfunc, issuer)
	v.close = jwks.EndBackground
	return v, nil
}

// Verify parses and validates a session token
func (v *Verifier) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	t, err := jwt.ParseWithClaims(token, &Claims{}, v.keyfunc, opts...)
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return c, nil
}

// Close stops background key refresh
func (v *Verifier) Close() {
	v.close()
}
