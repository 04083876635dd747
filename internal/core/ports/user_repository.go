package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// UserFilter selects a page of users. Nil pointers mean "any".
type UserFilter struct {
	Role   *domain.Role
	Status *domain.UserStatus
	Search string
	Page   int
	Limit  int
}

// UserUpdate carries the fields to change. Nil pointers are left untouched.
type UserUpdate struct {
	FullName *string
	Role     *domain.Role
	Status   *domain.UserStatus
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.FullName == nil && u.Role == nil && u.Status == nil
}

// UserRepository persists identities. Lookups return domain.ErrUserNotFound
// when nothing matches and Create returns domain.ErrEmailTaken on a
// duplicate email.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail is the only lookup that populates PasswordHash.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, int64, error)
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
}
