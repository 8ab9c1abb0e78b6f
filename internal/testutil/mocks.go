package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pratik-mahalle/docbrief/internal/billing"
	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
	"github.com/pratik-mahalle/docbrief/internal/domain/user"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*user.User
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*user.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, exists := m.Users[u.ID]; exists {
		return errors.Conflict("User already exists")
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.Users[u.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.NotFound("User")
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	existing, ok := m.Users[u.ID]
	if !ok {
		return errors.NotFound("User")
	}
	existing.Email = u.Email
	existing.Name = u.Name
	existing.UpdatedAt = time.Now()
	return nil
}

func (m *MockUserRepository) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	existing, ok := m.Users[id]
	if !ok {
		return errors.NotFound("User")
	}
	existing.StripeCustomerID = &customerID
	return nil
}

// MockSubscriptionRepository is an in-memory subscription.Repository. It
// resolves customers through Users, like the SQL implementation.
type MockSubscriptionRepository struct {
	mu     sync.Mutex
	Users  *MockUserRepository
	Subs   map[string]*subscription.Subscription // by user ID
	nextID int

	GetError    error
	WriteError  error
	DeleteError error
}

func NewMockSubscriptionRepository(users *MockUserRepository) *MockSubscriptionRepository {
	return &MockSubscriptionRepository{
		Users: users,
		Subs:  make(map[string]*subscription.Subscription),
	}
}

func (m *MockSubscriptionRepository) UpsertForCustomer(ctx context.Context, customerID string, snap subscription.Snapshot) (*subscription.Subscription, error) {
	if m.WriteError != nil {
		return nil, m.WriteError
	}
	u, err := m.Users.GetByStripeCustomerID(ctx, customerID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("User for billing customer")
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.Subs[u.ID]
	if !ok {
		m.nextID++
		sub = &subscription.Subscription{
			ID:        fmt.Sprintf("sub-row-%d", m.nextID),
			UserID:    u.ID,
			CreatedAt: time.Now(),
		}
		m.Subs[u.ID] = sub
	}
	apply(sub, snap)
	cp := *sub
	return &cp, nil
}

func (m *MockSubscriptionRepository) CreateForCustomer(ctx context.Context, customerID string, snap subscription.Snapshot) (*subscription.Subscription, error) {
	if m.WriteError != nil {
		return nil, m.WriteError
	}
	u, err := m.Users.GetByStripeCustomerID(ctx, customerID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NotFound("User for billing customer")
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Subs[u.ID]; ok {
		return nil, errors.Conflict("User already has a subscription")
	}
	m.nextID++
	sub := &subscription.Subscription{
		ID:        fmt.Sprintf("sub-row-%d", m.nextID),
		UserID:    u.ID,
		CreatedAt: time.Now(),
	}
	apply(sub, snap)
	m.Subs[u.ID] = sub
	cp := *sub
	return &cp, nil
}

func (m *MockSubscriptionRepository) UpdateByStripeID(ctx context.Context, snap subscription.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return m.WriteError
	}
	sub := m.byStripeID(snap.StripeSubscriptionID)
	if sub == nil {
		return errors.NotFound("Subscription")
	}
	apply(sub, snap)
	return nil
}

func (m *MockSubscriptionRepository) UpdatePeriod(ctx context.Context, stripeSubscriptionID string, start, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return m.WriteError
	}
	sub := m.byStripeID(stripeSubscriptionID)
	if sub == nil {
		return errors.NotFound("Subscription")
	}
	sub.CurrentPeriodStart = start
	sub.CurrentPeriodEnd = end
	return nil
}

func (m *MockSubscriptionRepository) DeleteByStripeID(ctx context.Context, stripeSubscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteError != nil {
		return m.DeleteError
	}
	sub := m.byStripeID(stripeSubscriptionID)
	if sub == nil {
		return errors.NotFound("Subscription")
	}
	delete(m.Subs, sub.UserID)
	return nil
}

func (m *MockSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	sub, ok := m.Subs[userID]
	if !ok {
		return nil, errors.NotFound("Subscription")
	}
	cp := *sub
	return &cp, nil
}

func (m *MockSubscriptionRepository) ListPeriodEndedBefore(ctx context.Context, t time.Time, limit int) ([]*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	var out []*subscription.Subscription
	for _, sub := range m.Subs {
		if !sub.CurrentPeriodEnd.IsZero() && sub.CurrentPeriodEnd.Before(t) {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// BySubscriptionID returns a copy of the row for a provider subscription ID
func (m *MockSubscriptionRepository) BySubscriptionID(id string) *subscription.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := m.byStripeID(id)
	if sub == nil {
		return nil
	}
	cp := *sub
	return &cp
}

func (m *MockSubscriptionRepository) byStripeID(id string) *subscription.Subscription {
	for _, sub := range m.Subs {
		if sub.StripeSubscriptionID == id {
			return sub
		}
	}
	return nil
}

func apply(sub *subscription.Subscription, snap subscription.Snapshot) {
	sub.StripeSubscriptionID = snap.StripeSubscriptionID
	sub.Status = snap.Status
	sub.CurrentPeriodStart = snap.CurrentPeriodStart
	sub.CurrentPeriodEnd = snap.CurrentPeriodEnd
	sub.Interval = snap.Interval
	sub.PlanID = snap.PlanID
	sub.UpdatedAt = time.Now()
}

// MockBillingProvider is a mock implementation of billing.Provider
type MockBillingProvider struct {
	mu            sync.Mutex
	Subscriptions map[string]subscription.Snapshot
	GetError      error
	CustomerError error
	SessionError  error

	Customers      []string // emails passed to CreateCustomer
	CheckoutCalls  []billing.CheckoutParams
	PortalCalls    []string
	GetCalls       int
	nextCustomerID int
}

func NewMockBillingProvider() *MockBillingProvider {
	return &MockBillingProvider{
		Subscriptions: make(map[string]subscription.Snapshot),
	}
}

func (m *MockBillingProvider) GetSubscription(ctx context.Context, id string) (subscription.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetError != nil {
		return subscription.Snapshot{}, m.GetError
	}
	snap, ok := m.Subscriptions[id]
	if !ok {
		return subscription.Snapshot{}, errors.ProviderAPIError("Stripe", fmt.Errorf("no such subscription: %s", id))
	}
	return snap, nil
}

func (m *MockBillingProvider) CreateCustomer(ctx context.Context, userID, email string, name *string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CustomerError != nil {
		return "", m.CustomerError
	}
	m.nextCustomerID++
	m.Customers = append(m.Customers, email)
	return fmt.Sprintf("cus_mock_%d", m.nextCustomerID), nil
}

func (m *MockBillingProvider) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SessionError != nil {
		return "", m.SessionError
	}
	m.CheckoutCalls = append(m.CheckoutCalls, params)
	return "https://checkout.stripe.test/" + params.CustomerID, nil
}

func (m *MockBillingProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SessionError != nil {
		return "", m.SessionError
	}
	m.PortalCalls = append(m.PortalCalls, customerID)
	return "https://billing.stripe.test/" + customerID, nil
}

// MockSummarizer returns a canned summary
type MockSummarizer struct {
	mu      sync.Mutex
	Summary string
	Err     error
	Inputs  []string
}

func (m *MockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inputs = append(m.Inputs, text)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Summary, nil
}
