package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/pratik-mahalle/docbrief/internal/identity"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/testutil"
)

func TestIdentityService_UserCreated(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	service := NewIdentityService(repo, logger.Nop())
	ctx := context.Background()

	ev := identity.Event{
		Type: identity.EventUserCreated,
		User: identity.UserData{ID: "user_1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"},
	}

	if err := service.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	u, err := repo.GetByID(ctx, "user_1")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "ada@example.com")
	}
	if u.Name == nil || *u.Name != "Ada Lovelace" {
		t.Errorf("name = %v, want %q", u.Name, "Ada Lovelace")
	}
	if u.HasCustomer() {
		t.Error("new user should not have a billing customer")
	}

	// replay is a conflict, not a second success
	err = service.HandleEvent(ctx, ev)
	if !errors.IsConflict(err) {
		t.Errorf("replayed user.created error = %v, want conflict", err)
	}
}

func TestIdentityService_UserCreatedValidation(t *testing.T) {
	tests := []struct {
		name string
		user identity.UserData
	}{
		{"missing id", identity.UserData{Email: "a@example.com"}},
		{"missing email", identity.UserData{ID: "user_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockUserRepository()
			service := NewIdentityService(repo, logger.Nop())

			err := service.HandleEvent(context.Background(), identity.Event{Type: identity.EventUserCreated, User: tt.user})
			if !errors.HasCode(err, errors.ErrCodeBadRequest) {
				t.Errorf("error = %v, want bad request", err)
			}
			if len(repo.Users) != 0 {
				t.Error("no user should be stored")
			}
		})
	}
}

func TestIdentityService_DatabaseFailure(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	repo.CreateError = errors.DatabaseError("Failed to create user", fmt.Errorf("disk full"))
	service := NewIdentityService(repo, logger.Nop())

	err := service.HandleEvent(context.Background(), identity.Event{
		Type: identity.EventUserCreated,
		User: identity.UserData{ID: "user_1", Email: "a@example.com"},
	})
	if errors.From(err).StatusCode != 500 {
		t.Errorf("status = %d, want 500", errors.From(err).StatusCode)
	}
}

func TestIdentityService_UserUpdated(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	service := NewIdentityService(repo, logger.Nop())
	ctx := context.Background()

	// unknown user is a no-op
	err := service.HandleEvent(ctx, identity.Event{
		Type: identity.EventUserUpdated,
		User: identity.UserData{ID: "user_missing", Email: "x@example.com"},
	})
	if err != nil {
		t.Fatalf("update of unknown user error = %v", err)
	}

	_ = service.HandleEvent(ctx, identity.Event{
		Type: identity.EventUserCreated,
		User: identity.UserData{ID: "user_1", Email: "old@example.com"},
	})
	err = service.HandleEvent(ctx, identity.Event{
		Type: identity.EventUserUpdated,
		User: identity.UserData{ID: "user_1", Email: "new@example.com", FirstName: "Grace"},
	})
	if err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	u, _ := repo.GetByID(ctx, "user_1")
	if u.Email != "new@example.com" {
		t.Errorf("email = %q, want new@example.com", u.Email)
	}
	if u.Name == nil || *u.Name != "Grace" {
		t.Errorf("name = %v, want Grace", u.Name)
	}
}

func TestIdentityService_IgnoresOtherEvents(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	service := NewIdentityService(repo, logger.Nop())

	if err := service.HandleEvent(context.Background(), identity.Event{Type: "session.created"}); err != nil {
		t.Errorf("HandleEvent() error = %v", err)
	}
}
