package services

import (
	"context"

	"github.com/pratik-mahalle/docbrief/internal/domain/user"
	"github.com/pratik-mahalle/docbrief/internal/identity"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
)

// IdentityService mirrors identity-provider users into the local database
type IdentityService struct {
	users  user.Repository
	logger *logger.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(users user.Repository, log *logger.Logger) *IdentityService {
	return &IdentityService{
		users:  users,
		logger: log,
	}
}

// HandleEvent applies a verified identity event. A replayed user.created
// for an existing ID is returned as a conflict.
func (s *IdentityService) HandleEvent(ctx context.Context, ev identity.Event) error {
	switch ev.Type {
	case identity.EventUserCreated:
		return s.createUser(ctx, ev.User)
	case identity.EventUserUpdated:
		return s.updateUser(ctx, ev.User)
	default:
		s.logger.Debugf("Ignoring identity event %s", ev.Type)
		return nil
	}
}

func (s *IdentityService) createUser(ctx context.Context, data identity.UserData) error {
	if data.ID == "" {
		return errors.BadRequest("Event has no user id")
	}
	if data.Email == "" {
		return errors.BadRequest("Event has no email address")
	}

	u := &user.User{
		ID:    data.ID,
		Email: data.Email,
		Name:  user.DisplayName(data.FirstName, data.LastName),
	}

	if err := s.users.Create(ctx, u); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"user_id": data.ID,
		}).ErrorWithErr(err, "Failed to create user")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
	}).Info("User created")
	return nil
}

func (s *IdentityService) updateUser(ctx context.Context, data identity.UserData) error {
	existing, err := s.users.GetByID(ctx, data.ID)
	if errors.IsNotFound(err) {
		s.logger.WithFields(map[string]interface{}{
			"user_id": data.ID,
		}).Warn("Update for unknown user, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	if data.Email != "" {
		existing.Email = data.Email
	}
	existing.Name = user.DisplayName(data.FirstName, data.LastName)

	if err := s.users.Update(ctx, existing); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"user_id": data.ID,
		}).ErrorWithErr(err, "Failed to update user")
		return err
	}
	return nil
}
