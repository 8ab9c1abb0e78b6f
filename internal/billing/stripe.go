package billing

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
)

// StripeProvider implements Provider using the Stripe API
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a StripeProvider for the given secret key
func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, nil)}
}

// GetSubscription re-fetches a subscription by ID
func (p *StripeProvider) GetSubscription(ctx context.Context, id string) (subscription.Snapshot, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Get(id, params)
	if err != nil {
		return subscription.Snapshot{}, errors.ProviderAPIError("Stripe", fmt.Errorf("retrieve subscription %s: %w", id, err))
	}
	return SnapshotFromStripe(sub), nil
}

// CreateCustomer creates a Stripe customer for a local user
func (p *StripeProvider) CreateCustomer(ctx context.Context, userID, email string, name *string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != nil {
		params.Name = stripe.String(*name)
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", errors.ProviderAPIError("Stripe", fmt.Errorf("create customer: %w", err))
	}
	return c.ID, nil
}

// CreateCheckoutSession starts a subscription-mode checkout
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, cp CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(cp.CustomerID),
		ClientReferenceID: stripe.String(cp.UserID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(cp.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(cp.SuccessURL),
		CancelURL:  stripe.String(cp.CancelURL),
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", errors.ProviderAPIError("Stripe", fmt.Errorf("create checkout session: %w", err))
	}
	return s.URL, nil
}

// CreatePortalSession opens the billing portal for a customer
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", errors.ProviderAPIError("Stripe", fmt.Errorf("create portal session: %w", err))
	}
	return s.URL, nil
}

// SnapshotFromStripe maps a subscription from its first item. Period bounds
// stay zero when the item is missing or carries non-positive timestamps.
func SnapshotFromStripe(sub *stripe.Subscription) subscription.Snapshot {
	snap := subscription.Snapshot{
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
	}
	if sub.Customer != nil {
		snap.CustomerID = sub.Customer.ID
	}

	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0] == nil {
		return snap
	}
	item := sub.Items.Data[0]
	snap.CurrentPeriodStart = unixTime(item.CurrentPeriodStart)
	snap.CurrentPeriodEnd = unixTime(item.CurrentPeriodEnd)
	if item.Plan != nil {
		snap.Interval = string(item.Plan.Interval)
		snap.PlanID = item.Plan.ID
	}
	return snap
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
