package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

// AdminService implements user management for administrators.
type AdminService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

var _ ports.AdminService = (*AdminService)(nil)

func NewAdminService(users ports.UserRepository, hasher ports.PasswordHasher, audit ports.AuditRecorder, log zerolog.Logger) *AdminService {
	return &AdminService{users: users, hasher: hasher, audit: audit, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context, filter ports.UserFilter) (*ports.UserPage, error) {
	filter.Page, filter.Limit = clampPage(filter.Page, filter.Limit, DefaultUserLimit, MaxUserLimit)
	filter.Search = strings.TrimSpace(filter.Search)

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return &ports.UserPage{
		Users:      users,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *AdminService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}
	return user, nil
}

// UpdateUser applies role, status and name changes. An administrator may
// not change their own role.
func (s *AdminService) UpdateUser(ctx context.Context, actor domain.Principal, id string, update ports.UserUpdate) (*domain.User, error) {
	if id == actor.UserID && update.Role != nil {
		return nil, domain.ErrSelfRoleChange
	}
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		update.FullName = &name
	}

	var (
		user *domain.User
		err  error
	)
	if update.Empty() {
		user, err = s.users.FindByID(ctx, id)
	} else {
		user, err = s.users.Update(ctx, id, update)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "update user")
	}

	record(ctx, s.audit, domain.AuditEvent{
		Action:   domain.AuditAdminUpdate,
		ActorID:  actor.UserID,
		TargetID: user.ID,
		Outcome:  domain.OutcomeSuccess,
		Detail:   describeUpdate(update),
	})
	return user, nil
}

// DeleteUser deactivates the account. Identities are never removed.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	if id == actor.UserID {
		return nil, domain.ErrSelfDelete
	}

	inactive := domain.StatusInactive
	user, err := s.users.Update(ctx, id, ports.UserUpdate{Status: &inactive})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "delete user")
	}

	record(ctx, s.audit, domain.AuditEvent{
		Action:   domain.AuditAdminDelete,
		ActorID:  actor.UserID,
		TargetID: user.ID,
		Outcome:  domain.OutcomeSuccess,
	})
	s.log.Info().Str("actor_id", actor.UserID).Str("user_id", user.ID).Msg("user deactivated")
	return user, nil
}

// EnsureAdmin makes sure an ACTIVE administrator with the given email
// exists. An existing account is promoted and reactivated; its password is
// left untouched.
func (s *AdminService) EnsureAdmin(ctx context.Context, fullName, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New("ensure admin: email and password are required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == domain.RoleAdmin && existing.Active() {
			existing.PasswordHash = ""
			return existing, nil
		}
		role, status := domain.RoleAdmin, domain.StatusActive
		user, err := s.users.Update(ctx, existing.ID, ports.UserUpdate{Role: &role, Status: &status})
		if err != nil {
			return nil, errors.Wrap(err, "ensure admin: promote")
		}
		s.bootstrapped(ctx, user, "promoted")
		return user, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, errors.Wrap(err, "ensure admin: lookup")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "ensure admin: hash password")
	}
	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "ensure admin: create")
	}
	s.bootstrapped(ctx, user, "created")
	return user, nil
}

func (s *AdminService) bootstrapped(ctx context.Context, user *domain.User, how string) {
	record(ctx, s.audit, domain.AuditEvent{
		Action:   domain.AuditAdminBootstrap,
		TargetID: user.ID,
		Outcome:  domain.OutcomeSuccess,
		Detail:   how,
	})
	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Str("how", how).Msg("administrator bootstrapped")
}

func describeUpdate(u ports.UserUpdate) string {
	var fields []string
	if u.Role != nil {
		fields = append(fields, "role="+string(*u.Role))
	}
	if u.Status != nil {
		fields = append(fields, "status="+string(*u.Status))
	}
	if u.FullName != nil {
		fields = append(fields, "fullName")
	}
	return strings.Join(fields, ",")
}
