package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://clerk.docbrief.test"

func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		"kid-1": keyfunc.NewGivenRSA(&key.PublicKey, keyfunc.GivenKeyOptions{Algorithm: "RS256"}),
	})
	return NewVerifier(jwks.Keyfunc, testIssuer), key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "kid-1"
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	return Claims{
		SessionID: "sess_1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_1",
			Issuer:    testIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
}

func TestVerifier_Verify(t *testing.T) {
	v, key := newTestVerifier(t)

	claims, err := v.Verify(sign(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID())
	assert.Equal(t, "sess_1", claims.SessionID)
}

func TestVerifier_Rejects(t *testing.T) {
	v, key := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://evil.test"

	noSubject := validClaims()
	noSubject.Subject = ""

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	hmac.Header["kid"] = "kid-1"
	hmacToken, err := hmac.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", sign(t, key, expired)},
		{"wrong issuer", sign(t, key, wrongIssuer)},
		{"no subject", sign(t, key, noSubject)},
		{"no expiry", sign(t, key, noExpiry)},
		{"foreign key", sign(t, other, validClaims())},
		{"hmac", hmacToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestNewJWKSVerifier_RequiresURL(t *testing.T) {
	_, err := NewJWKSVerifier(t.Context(), "", "", nil)
	assert.Error(t, err)
}
