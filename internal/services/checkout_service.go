package services

import (
	"context"
	"time"

	"github.com/pratik-mahalle/docbrief/internal/billing"
	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
	"github.com/pratik-mahalle/docbrief/internal/domain/user"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
)

// Paths on the public site used in billing redirects
const (
	CheckoutSuccessPath = "/dashboard?payment=success"
	CheckoutCancelPath  = "/payment/cancelled"
)

// CheckoutService starts hosted checkout and portal sessions
type CheckoutService struct {
	users     user.Repository
	subs      subscription.Repository
	provider  billing.Provider
	priceID   string
	domainURL string
	logger    *logger.Logger
}

// SubscriptionStatus is the current user's billing state
type SubscriptionStatus struct {
	Status           string     `json:"status"`
	IsSubscribed     bool       `json:"is_subscribed"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	Interval         string     `json:"interval,omitempty"`
	PlanID           string     `json:"plan_id,omitempty"`
}

// NewCheckoutService creates a new checkout service. domainURL is the public
// site base; when empty, creating sessions fails.
func NewCheckoutService(
	users user.Repository,
	subs subscription.Repository,
	provider billing.Provider,
	priceID, domainURL string,
	log *logger.Logger,
) *CheckoutService {
	return &CheckoutService{
		users:     users,
		subs:      subs,
		provider:  provider,
		priceID:   priceID,
		domainURL: domainURL,
		logger:    log,
	}
}

// StartCheckout returns the URL of a subscription checkout for userID,
// creating the billing customer on first use.
func (s *CheckoutService) StartCheckout(ctx context.Context, userID string) (string, error) {
	if s.domainURL == "" {
		return "", errors.Configuration("Public domain URL is not configured")
	}
	if s.priceID == "" {
		return "", errors.Configuration("Billing price is not configured")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	customerID, err := s.ensureCustomer(ctx, u)
	if err != nil {
		return "", err
	}

	url, err := s.provider.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID: customerID,
		UserID:     u.ID,
		PriceID:    s.priceID,
		SuccessURL: s.domainURL + CheckoutSuccessPath,
		CancelURL:  s.domainURL + CheckoutCancelPath,
	})
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"user_id": u.ID,
		}).ErrorWithErr(err, "Failed to create checkout session")
		return "", err
	}
	return url, nil
}

// OpenPortal returns the billing portal URL for a user with a customer
func (s *CheckoutService) OpenPortal(ctx context.Context, userID string) (string, error) {
	if s.domainURL == "" {
		return "", errors.Configuration("Public domain URL is not configured")
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !u.HasCustomer() {
		return "", errors.BadRequest("No billing account exists for this user")
	}

	return s.provider.CreatePortalSession(ctx, *u.StripeCustomerID, s.domainURL+PricingPath)
}

// Status returns the subscription state of userID. A missing row is
// reported as status "none".
func (s *CheckoutService) Status(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if errors.IsNotFound(err) {
		return &SubscriptionStatus{Status: "none"}, nil
	}
	if err != nil {
		return nil, err
	}

	status := &SubscriptionStatus{
		Status:       sub.Status,
		IsSubscribed: sub.IsActive(),
		Interval:     sub.Interval,
		PlanID:       sub.PlanID,
	}
	if !sub.CurrentPeriodEnd.IsZero() {
		end := sub.CurrentPeriodEnd
		status.CurrentPeriodEnd = &end
	}
	return status, nil
}

func (s *CheckoutService) ensureCustomer(ctx context.Context, u *user.User) (string, error) {
	if u.HasCustomer() {
		return *u.StripeCustomerID, nil
	}

	customerID, err := s.provider.CreateCustomer(ctx, u.ID, u.Email, u.Name)
	if err != nil {
		return "", err
	}
	if err := s.users.SetStripeCustomerID(ctx, u.ID, customerID); err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":     u.ID,
		"customer_id": customerID,
	}).Info("Billing customer created")
	return customerID, nil
}
