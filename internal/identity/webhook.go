// Package identity verifies and parses identity-provider webhooks. Events
// are delivered through Svix: every request carries svix-id, svix-timestamp
// and svix-signature headers signed with the endpoint's whsec_ secret.
package identity

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
)

// Header names set by the webhook sender
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// Event types the application reacts to
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
)

const secretPrefix = "whsec_"

// Verifier checks webhook signatures against a shared secret. Deliveries
// signed more than five minutes from now are rejected.
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier decodes a whsec_-prefixed, base64 encoded secret
func NewVerifier(secret string) (*Verifier, error) {
	if strings.TrimPrefix(secret, secretPrefix) == "" {
		return nil, fmt.Errorf("webhook secret is empty")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify checks the signature headers of a delivery against its raw body
func (v *Verifier) Verify(header http.Header, payload []byte) error {
	if header.Get(HeaderID) == "" || header.Get(HeaderTimestamp) == "" || header.Get(HeaderSignature) == "" {
		return errors.SignatureInvalid("identity", fmt.Errorf("missing signature headers"))
	}
	if err := v.wh.Verify(payload, header); err != nil {
		return errors.SignatureInvalid("identity", err)
	}
	return nil
}

// Sign returns the svix-signature header value for a delivery. Used to
// build test and replay requests.
func (v *Verifier) Sign(msgID string, ts time.Time, payload []byte) (string, error) {
	return v.wh.Sign(msgID, ts, payload)
}

// Event is a parsed identity-provider webhook
type Event struct {
	Type string
	User UserData
}

// UserData is the subset of the user object the application stores
type UserData struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

type rawEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	} `json:"data"`
}

// ParseEvent decodes a verified payload. The first listed email address is
// used; names default to empty when null.
func ParseEvent(payload []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Event{}, errors.BadRequest("Malformed webhook payload")
	}

	ev := Event{Type: raw.Type}
	ev.User.ID = raw.Data.ID
	for _, e := range raw.Data.EmailAddresses {
		if e.EmailAddress != "" {
			ev.User.Email = e.EmailAddress
			break
		}
	}
	if raw.Data.FirstName != nil {
		ev.User.FirstName = *raw.Data.FirstName
	}
	if raw.Data.LastName != nil {
		ev.User.LastName = *raw.Data.LastName
	}
	return ev, nil
}
