package services

import (
	"context"

	"github.com/pratik-mahalle/docbrief/internal/billing"
	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
)

// BillingService reconciles payment-processor events into local subscriptions
type BillingService struct {
	subs     subscription.Repository
	provider billing.Provider
	logger   *logger.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(subs subscription.Repository, provider billing.Provider, log *logger.Logger) *BillingService {
	return &BillingService{
		subs:     subs,
		provider: provider,
		logger:   log,
	}
}

// HandleEvent applies a parsed billing event. Each branch is independent;
// a returned error asks the provider to retry the delivery.
func (s *BillingService) HandleEvent(ctx context.Context, ev billing.Event) error {
	switch e := ev.(type) {
	case billing.CheckoutCompleted:
		return s.checkoutCompleted(ctx, e)
	case billing.SubscriptionUpdated:
		return s.subscriptionUpdated(ctx, e)
	case billing.SubscriptionDeleted:
		return s.subscriptionDeleted(ctx, e)
	case billing.InvoicePaid:
		s.invoicePaid(ctx, e)
		return nil
	default:
		s.logger.Debugf("Ignoring billing event %s", ev.EventType())
		return nil
	}
}

func (s *BillingService) checkoutCompleted(ctx context.Context, e billing.CheckoutCompleted) error {
	if !e.HasReferences() {
		s.logger.WithFields(map[string]interface{}{
			"session_id": e.SessionID,
		}).Warn("Checkout completed without customer or subscription, skipping")
		return nil
	}

	snap, err := s.provider.GetSubscription(ctx, e.SubscriptionID)
	if err != nil {
		return err
	}

	sub, err := s.subs.UpsertForCustomer(ctx, e.CustomerID, snap)
	if err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":         sub.UserID,
		"subscription_id": sub.StripeSubscriptionID,
		"status":          sub.Status,
	}).Info("Subscription saved after checkout")
	return nil
}

// subscriptionUpdated updates the row, creating it when the update arrives
// before the checkout event. Creation needs a known customer, a live status
// and a user without a subscription row; anything else is a stale event for
// a subscription the user no longer holds.
func (s *BillingService) subscriptionUpdated(ctx context.Context, e billing.SubscriptionUpdated) error {
	snap := e.Snapshot

	err := s.subs.UpdateByStripeID(ctx, snap)
	if err == nil || !errors.IsNotFound(err) {
		return err
	}
	if snap.CustomerID == "" {
		return err
	}

	log := s.logger.WithFields(map[string]interface{}{
		"subscription_id": snap.StripeSubscriptionID,
		"customer_id":     snap.CustomerID,
		"status":          snap.Status,
	})

	if snap.IsTerminal() {
		log.Info("Ignoring update for unknown subscription in terminal status")
		return nil
	}

	log.Warn("Subscription update for unknown row, creating it")
	_, err = s.subs.CreateForCustomer(ctx, snap.CustomerID, snap)
	if errors.IsConflict(err) {
		log.WithError(err).Warn("Customer already has another subscription, ignoring stale update")
		return nil
	}
	return err
}

func (s *BillingService) subscriptionDeleted(ctx context.Context, e billing.SubscriptionDeleted) error {
	if err := s.subs.DeleteByStripeID(ctx, e.SubscriptionID); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"subscription_id": e.SubscriptionID,
	}).Info("Subscription deleted")
	return nil
}

// invoicePaid refreshes the billing period. Every failure is logged and
// swallowed so a cosmetic field never blocks the event queue.
func (s *BillingService) invoicePaid(ctx context.Context, e billing.InvoicePaid) {
	log := s.logger.WithFields(map[string]interface{}{
		"invoice_id":      e.InvoiceID,
		"subscription_id": e.SubscriptionID,
	})

	if e.SubscriptionID == "" {
		log.Warn("Invoice has no subscription reference, skipping period update")
		return
	}

	snap, err := s.provider.GetSubscription(ctx, e.SubscriptionID)
	if err != nil {
		log.WarnWithErr(err, "Failed to re-fetch subscription for invoice")
		return
	}

	if !snap.HasPeriod() {
		log.Warn("Subscription has no usable billing period, skipping period update")
		return
	}

	if err := s.subs.UpdatePeriod(ctx, e.SubscriptionID, snap.CurrentPeriodStart, snap.CurrentPeriodEnd); err != nil {
		log.WarnWithErr(err, "Failed to update subscription period")
		return
	}

	log.Info("Subscription period updated")
}
