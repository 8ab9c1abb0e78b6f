package subscription

import "time"

// Status values mirror the billing provider's vocabulary verbatim
const (
	StatusActive            = "active"
	StatusTrialing          = "trialing"
	StatusPastDue           = "past_due"
	StatusCanceled          = "canceled"
	StatusUnpaid            = "unpaid"
	StatusIncomplete        = "incomplete"
	StatusIncompleteExpired = "incomplete_expired"
	StatusPaused            = "paused"
)

// Billing intervals
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Subscription is the local record of a user's paid plan
type Subscription struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	Status               string    `json:"status"`
	CurrentPeriodStart   time.Time `json:"current_period_start"`
	CurrentPeriodEnd     time.Time `json:"current_period_end"`
	Interval             string    `json:"interval"`
	PlanID               string    `json:"plan_id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// IsActive is the only predicate that grants feature access
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == StatusActive
}

// Snapshot is the provider's current view of a subscription, mapped from
// its first item. It is what every reconciliation writes.
type Snapshot struct {
	StripeSubscriptionID string
	CustomerID           string
	Status               string
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	Interval             string
	PlanID               string
}

// HasPeriod reports whether both period bounds are set
func (s Snapshot) HasPeriod() bool {
	return !s.CurrentPeriodStart.IsZero() && !s.CurrentPeriodEnd.IsZero()
}

// IsTerminal reports whether the provider will never move the subscription
// out of its current status
func (s Snapshot) IsTerminal() bool {
	return s.Status == StatusCanceled || s.Status == StatusIncompleteExpired
}
