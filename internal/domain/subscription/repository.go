package subscription

import (
	"context"
	"time"
)

// Repository defines the interface for subscription data access
type Repository interface {
	// UpsertForCustomer creates or replaces the subscription of the user
	// owning customerID. An unknown customer is a not-found error.
	UpsertForCustomer(ctx context.Context, customerID string, snap Snapshot) (*Subscription, error)

	// CreateForCustomer inserts a row for the user owning customerID only
	// when that user has none. An existing row is a conflict error and is
	// left unchanged.
	CreateForCustomer(ctx context.Context, customerID string, snap Snapshot) (*Subscription, error)

	// UpdateByStripeID overwrites status, period, interval and plan of an
	// existing row. A missing row is a not-found error.
	UpdateByStripeID(ctx context.Context, snap Snapshot) error

	// UpdatePeriod overwrites only the period bounds
	UpdatePeriod(ctx context.Context, stripeSubscriptionID string, start, end time.Time) error

	// DeleteByStripeID removes a row. A missing row is a not-found error.
	DeleteByStripeID(ctx context.Context, stripeSubscriptionID string) error

	// GetByUserID retrieves the subscription owned by a user
	GetByUserID(ctx context.Context, userID string) (*Subscription, error)

	// ListPeriodEndedBefore lists subscriptions whose period ended before t,
	// least recently written first so rows that never advance cannot hold
	// the head of the batch
	ListPeriodEndedBefore(ctx context.Context, t time.Time, limit int) ([]*Subscription, error)
}
