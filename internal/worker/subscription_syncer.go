package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/docbrief/internal/billing"
	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/metrics"
)

// DefaultBatchSize bounds the rows re-synced per run
const DefaultBatchSize = 100

// SubscriptionSyncer periodically re-fetches subscriptions whose billing
// period has ended, catching webhooks that were missed or arrived out of order.
type SubscriptionSyncer struct {
	subs      subscription.Repository
	provider  billing.Provider
	schedule  string
	batchSize int
	logger    *logger.Logger
	now       func() time.Time

	scheduler *cron.Cron
	mu        sync.Mutex
}

// NewSubscriptionSyncer creates a new syncer. schedule uses robfig/cron
// syntax, including descriptors such as "@every 1h".
func NewSubscriptionSyncer(
	subs subscription.Repository,
	provider billing.Provider,
	schedule string,
	log *logger.Logger,
) *SubscriptionSyncer {
	return &SubscriptionSyncer{
		subs:      subs,
		provider:  provider,
		schedule:  schedule,
		batchSize: DefaultBatchSize,
		logger:    log,
		now:       time.Now,
	}
}

// Start schedules the syncer. It is a no-op when the schedule is empty.
func (s *SubscriptionSyncer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return fmt.Errorf("subscription syncer is already running")
	}
	if s.schedule == "" {
		s.logger.Info("Subscription re-sync disabled")
		return nil
	}

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid resync schedule %q: %w", s.schedule, err)
	}
	scheduler.Start()
	s.scheduler = scheduler

	s.logger.WithFields(map[string]interface{}{
		"schedule": s.schedule,
	}).Info("Subscription syncer started")
	return nil
}

// Stop stops the scheduler and waits for a running sync to finish
func (s *SubscriptionSyncer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return
	}
	<-s.scheduler.Stop().Done()
	s.scheduler = nil
	s.logger.Info("Subscription syncer stopped")
}

// RunOnce re-syncs one batch and returns the number of rows updated.
// Per-row failures are logged and skipped.
func (s *SubscriptionSyncer) RunOnce(ctx context.Context) int {
	stale, err := s.subs.ListPeriodEndedBefore(ctx, s.now(), s.batchSize)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to list subscriptions for re-sync")
		metrics.RecordSubscriptionResync("error")
		return 0
	}

	updated := 0
	for _, sub := range stale {
		if ctx.Err() != nil {
			break
		}
		if err := s.syncOne(ctx, sub); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"user_id":         sub.UserID,
				"subscription_id": sub.StripeSubscriptionID,
			}).WarnWithErr(err, "Failed to re-sync subscription")
			metrics.RecordSubscriptionResync("error")
			continue
		}
		metrics.RecordSubscriptionResync("ok")
		updated++
	}

	if len(stale) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"candidates": len(stale),
			"updated":    updated,
		}).Info("Subscription re-sync completed")
	}
	return updated
}

func (s *SubscriptionSyncer) syncOne(ctx context.Context, sub *subscription.Subscription) error {
	snap, err := s.provider.GetSubscription(ctx, sub.StripeSubscriptionID)
	if err != nil {
		return err
	}
	if snap.StripeSubscriptionID == "" {
		snap.StripeSubscriptionID = sub.StripeSubscriptionID
	}
	if err := s.subs.UpdateByStripeID(ctx, snap); err != nil {
		if errors.IsNotFound(err) {
			// deleted by a webhook since the listing
			return nil
		}
		return err
	}
	return nil
}
