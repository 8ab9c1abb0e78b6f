package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create inserts a new user. A duplicate ID is a conflict error.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by identity-provider ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByStripeCustomerID retrieves the user owning a billing customer
	GetByStripeCustomerID(ctx context.Context, customerID string) (*User, error)

	// Update updates email and name
	Update(ctx context.Context, user *User) error

	// SetStripeCustomerID assigns the billing customer to a user
	SetStripeCustomerID(ctx context.Context, id, customerID string) error
}
