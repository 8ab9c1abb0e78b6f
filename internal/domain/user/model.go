package user

import (
	"strings"
	"time"
)

// User is a local mirror of an identity-provider account
type User struct {
	// ID is the identity provider's opaque user id
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             *string   `json:"name,omitempty"`
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasCustomer reports whether a billing customer has been assigned
func (u *User) HasCustomer() bool {
	return u.StripeCustomerID != nil && *u.StripeCustomerID != ""
}

// DisplayName joins first and last name. It returns nil when both are blank.
func DisplayName(first, last string) *string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return nil
	}
	return &name
}
