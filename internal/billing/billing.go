// Package billing adapts the payment processor: subscription lookups,
// customers, hosted checkout and portal sessions, and webhook events.
package billing

import (
	"context"

	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
)

// Provider is the subset of the payment processor the application uses
type Provider interface {
	// GetSubscription re-fetches a subscription and maps it from its first item
	GetSubscription(ctx context.Context, id string) (subscription.Snapshot, error)

	// CreateCustomer creates a billing customer tagged with the local user ID
	CreateCustomer(ctx context.Context, userID, email string, name *string) (string, error)

	// CreateCheckoutSession starts a hosted subscription checkout and returns its URL
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)

	// CreatePortalSession opens the hosted billing portal and returns its URL
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// CheckoutParams describes a subscription checkout
type CheckoutParams struct {
	CustomerID string
	UserID     string
	PriceID    string
	SuccessURL string
	CancelURL  string
}
