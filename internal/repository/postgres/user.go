package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pratik-mahalle/docbrief/internal/domain/user"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
)

const userColumns = `id, email, name, stripe_customer_id, created_at, updated_at`

// UserRepository implements user.Repository
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) user.Repository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := nowUnix()

	query := `
		INSERT INTO users (id, email, name, stripe_customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.StripeCustomerID, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("User already exists")
		}
		return errors.DatabaseError("Failed to create user", err)
	}

	u.CreatedAt = time.Unix(now, 0)
	u.UpdatedAt = u.CreatedAt
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByStripeCustomerID retrieves the user owning a billing customer
func (r *UserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, customerID))
}

// Update updates email and name
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	now := nowUnix()

	query := `
		UPDATE users
		SET email = $1, name = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, u.Email, u.Name, now, u.ID)
	if err != nil {
		return errors.DatabaseError("Failed to update user", err)
	}
	if err := expectAffected(result, "User"); err != nil {
		return err
	}

	u.UpdatedAt = time.Unix(now, 0)
	return nil
}

// SetStripeCustomerID assigns the billing customer to a user
func (r *UserRepository) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	query := `UPDATE users SET stripe_customer_id = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, customerID, nowUnix(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Billing customer already assigned to another user")
		}
		return errors.DatabaseError("Failed to set billing customer", err)
	}
	return expectAffected(result, "User")
}

func (r *UserRepository) scanOne(row *sql.Row) (*user.User, error) {
	var u user.User
	var name, customerID sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&u.ID, &u.Email, &name, &customerID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get user", err)
	}

	if name.Valid {
		u.Name = &name.String
	}
	if customerID.Valid {
		u.StripeCustomerID = &customerID.String
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)

	return &u, nil
}

func expectAffected(result sql.Result, resource string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound(resource)
	}
	return nil
}
