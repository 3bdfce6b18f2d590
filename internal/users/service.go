package users

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Service implements the UserManager interface. It adds diagnostic
// logging and a best-effort email uniqueness pre-check on top of the
// store; the pre-check gives a friendly conflict response but the unique
// index enforced by the store remains the actual safety mechanism.
type Service struct {
	store  UserStore
	logger *zap.Logger
}

// NewService creates a new user service
func NewService(store UserStore, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// GetAllUsers returns all users
func (s *Service) GetAllUsers(ctx context.Context) ([]*UserResponse, error) {
	s.logger.Info("Fetching all users")

	found, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(found), nil
}

// GetUserByID returns the user with the given id, or nil when the id is
// malformed or no user matches. The two cases are only distinguished in
// the logs.
func (s *Service) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	s.logger.Info("Fetching user by id", zap.String("user_id", id))

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMalformedID) {
			s.logger.Warn("Malformed user id", zap.String("user_id", id))
			return nil, nil
		}
		return nil, err
	}
	if user == nil {
		s.logger.Warn("User not found", zap.String("user_id", id))
		return nil, nil
	}
	return user.ToResponse(), nil
}

// GetUserByEmail returns the user with the exact email, or nil on a miss
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*UserResponse, error) {
	s.logger.Info("Fetching user by email", zap.String("email", email))

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.Warn("User not found by email", zap.String("email", email))
		return nil, nil
	}
	return user.ToResponse(), nil
}

// SearchUsersByName returns users whose name contains the given substring
func (s *Service) SearchUsersByName(ctx context.Context, name string) ([]*UserResponse, error) {
	s.logger.Info("Searching users by name", zap.String("name", name))

	found, err := s.store.FindByNameContaining(ctx, name)
	if err != nil {
		return nil, err
	}
	return toResponses(found), nil
}

// CreateUser creates a new user. Returns ErrEmailInUse when the email
// already belongs to a persisted user.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*UserResponse, error) {
	s.logger.Info("Creating new user", zap.String("email", req.Email))

	// Best-effort pre-check for a friendly conflict; a concurrent
	// creator can still lose to the unique index inside Insert.
	existing, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Email already in use", zap.String("email", req.Email))
		return nil, ErrEmailInUse
	}

	user, err := s.store.Insert(ctx, req.ToUser())
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created successfully", zap.String("user_id", user.ID.Hex()))
	return user.ToResponse(), nil
}

// UpdateUser updates any subset of a user's mutable fields. Returns nil
// when the id is malformed or unknown, and ErrEmailInUse when the new
// email belongs to a different user. Re-submitting the current email is
// not a conflict.
func (s *Service) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*UserResponse, error) {
	s.logger.Info("Updating user", zap.String("user_id", id))

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMalformedID) {
			s.logger.Warn("Malformed user id", zap.String("user_id", id))
			return nil, nil
		}
		return nil, err
	}
	if user == nil {
		s.logger.Warn("User not found for update", zap.String("user_id", id))
		return nil, nil
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.store.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if existing != nil {
			s.logger.Warn("Email already in use", zap.String("email", *req.Email))
			return nil, ErrEmailInUse
		}
	}

	req.Apply(user)

	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User updated successfully", zap.String("user_id", user.ID.Hex()))
	return user.ToResponse(), nil
}

// DeleteUser removes the user with the given id. It reports false for
// both a malformed id and a miss; only the logs tell them apart.
func (s *Service) DeleteUser(ctx context.Context, id string) (bool, error) {
	s.logger.Info("Deleting user", zap.String("user_id", id))

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMalformedID) {
			s.logger.Warn("Malformed user id", zap.String("user_id", id))
			return false, nil
		}
		return false, err
	}
	if !deleted {
		s.logger.Warn("User not found for deletion", zap.String("user_id", id))
		return false, nil
	}

	s.logger.Info("User deleted successfully", zap.String("user_id", id))
	return true, nil
}

func toResponses(found []*User) []*UserResponse {
	responses := make([]*UserResponse, 0, len(found))
	for _, user := range found {
		responses = append(responses, user.ToResponse())
	}
	return responses
}
