package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
)

const subscriptionColumns = `id, user_id, stripe_subscription_id, status, current_period_start,
	current_period_end, billing_interval, plan_id, created_at, updated_at`

const insertSubscription = `
	INSERT INTO subscriptions (id, user_id, stripe_subscription_id, status, current_period_start,
		current_period_end, billing_interval, plan_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// SubscriptionRepository implements subscription.Repository
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sql.DB) subscription.Repository {
	return &SubscriptionRepository{db: db}
}

// UpsertForCustomer creates or replaces the subscription of the user owning customerID
func (r *SubscriptionRepository) UpsertForCustomer(ctx context.Context, customerID string, snap subscription.Snapshot) (*subscription.Subscription, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.DatabaseError("Failed to start transaction", err)
	}
	defer tx.Rollback()

	userID, err := customerOwner(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}

	now := nowUnix()
	query := insertSubscription + `
		ON CONFLICT (user_id) DO UPDATE SET
			stripe_subscription_id = excluded.stripe_subscription_id,
			status = excluded.status,
			current_period_start = excluded.current_period_start,
			current_period_end = excluded.current_period_end,
			billing_interval = excluded.billing_interval,
			plan_id = excluded.plan_id,
			updated_at = excluded.updated_at
	`
	_, err = tx.ExecContext(ctx, query,
		uuid.New().String(), userID, snap.StripeSubscriptionID, snap.Status,
		unixOrZero(snap.CurrentPeriodStart), unixOrZero(snap.CurrentPeriodEnd),
		snap.Interval, snap.PlanID, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Conflict("Subscription belongs to another user")
		}
		return nil, errors.DatabaseError("Failed to upsert subscription", err)
	}

	sub, err := scanSubscription(tx.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.DatabaseError("Failed to commit subscription", err)
	}
	return sub, nil
}

// CreateForCustomer inserts a subscription for the user owning customerID
// only if that user has none yet. An existing row is left untouched and
// reported as a conflict.
func (r *SubscriptionRepository) CreateForCustomer(ctx context.Context, customerID string, snap subscription.Snapshot) (*subscription.Subscription, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.DatabaseError("Failed to start transaction", err)
	}
	defer tx.Rollback()

	userID, err := customerOwner(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}

	now := nowUnix()
	result, err := tx.ExecContext(ctx, insertSubscription+` ON CONFLICT (user_id) DO NOTHING`,
		uuid.New().String(), userID, snap.StripeSubscriptionID, snap.Status,
		unixOrZero(snap.CurrentPeriodStart), unixOrZero(snap.CurrentPeriodEnd),
		snap.Interval, snap.PlanID, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Conflict("Subscription belongs to another user")
		}
		return nil, errors.DatabaseError("Failed to create subscription", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, errors.DatabaseError("Failed to create subscription", err)
	} else if n == 0 {
		return nil, errors.Conflict("User already has a subscription")
	}

	sub, err := scanSubscription(tx.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.DatabaseError("Failed to commit subscription", err)
	}
	return sub, nil
}

func customerOwner(ctx context.Context, tx *sql.Tx, customerID string) (string, error) {
	var userID string
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE stripe_customer_id = $1`, customerID).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", errors.NotFound("User for billing customer")
	}
	if err != nil {
		return "", errors.DatabaseError("Failed to resolve billing customer", err)
	}
	return userID, nil
}

// UpdateByStripeID overwrites the provider-owned fields of an existing row
func (r *SubscriptionRepository) UpdateByStripeID(ctx context.Context, snap subscription.Snapshot) error {
	query := `
		UPDATE subscriptions
		SET status = $1, current_period_start = $2, current_period_end = $3,
			billing_interval = $4, plan_id = $5, updated_at = $6
		WHERE stripe_subscription_id = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		snap.Status, unixOrZero(snap.CurrentPeriodStart), unixOrZero(snap.CurrentPeriodEnd),
		snap.Interval, snap.PlanID, nowUnix(), snap.StripeSubscriptionID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update subscription", err)
	}
	return expectAffected(result, "Subscription")
}

// UpdatePeriod overwrites only the period bounds
func (r *SubscriptionRepository) UpdatePeriod(ctx context.Context, stripeSubscriptionID string, start, end time.Time) error {
	query := `
		UPDATE subscriptions
		SET current_period_start = $1, current_period_end = $2, updated_at = $3
		WHERE stripe_subscription_id = $4
	`

	result, err := r.db.ExecContext(ctx, query, start.Unix(), end.Unix(), nowUnix(), stripeSubscriptionID)
	if err != nil {
		return errors.DatabaseError("Failed to update subscription period", err)
	}
	return expectAffected(result, "Subscription")
}

// DeleteByStripeID removes a row by provider subscription ID
func (r *SubscriptionRepository) DeleteByStripeID(ctx context.Context, stripeSubscriptionID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE stripe_subscription_id = $1`, stripeSubscriptionID)
	if err != nil {
		return errors.DatabaseError("Failed to delete subscription", err)
	}
	return expectAffected(result, "Subscription")
}

// GetByUserID retrieves the subscription owned by a user
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	return scanSubscription(r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID))
}

// ListPeriodEndedBefore lists subscriptions whose period ended before t,
// least recently written first
func (r *SubscriptionRepository) ListPeriodEndedBefore(ctx context.Context, t time.Time, limit int) ([]*subscription.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE current_period_end > 0 AND current_period_end < $1
			AND status NOT IN ('canceled', 'incomplete_expired')
		ORDER BY updated_at ASC, current_period_end ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, t.Unix(), limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list subscriptions", err)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate subscriptions", err)
	}
	return subs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner) (*subscription.Subscription, error) {
	var s subscription.Subscription
	var start, end, createdAt, updatedAt int64

	err := row.Scan(
		&s.ID, &s.UserID, &s.StripeSubscriptionID, &s.Status, &start,
		&end, &s.Interval, &s.PlanID, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Subscription")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to scan subscription", err)
	}

	s.CurrentPeriodStart = timeOrZero(start)
	s.CurrentPeriodEnd = timeOrZero(end)
	s.CreatedAt = time.Unix(createdAt, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)
	return &s, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
