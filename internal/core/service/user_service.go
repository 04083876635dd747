package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

type UserService struct {
	users ports.UserRepository
}

var _ ports.UserService = (*UserService)(nil)

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "me: lookup user")
	}
	return user, nil
}

// UpdateProfile changes the caller's display name. Role and status are only
// editable by an administrator.
func (s *UserService) UpdateProfile(ctx context.Context, userID, fullName string) (*domain.User, error) {
	name := strings.TrimSpace(fullName)
	user, err := s.users.Update(ctx, userID, ports.UserUpdate{FullName: &name})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "update profile")
	}
	return user, nil
}
