package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

type RefreshResult struct {
	AccessToken string
	Principal   domain.Principal
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

type UserService interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID, fullName string) (*domain.User, error)
}

// UserPage is one page of an admin user listing.
type UserPage struct {
	Users      []domain.User
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

type AdminService interface {
	ListUsers(ctx context.Context, filter UserFilter) (*UserPage, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Principal, id string, update UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Principal, id string) (*domain.User, error)
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
}

type TaskPage struct {
	Tasks       []domain.Task
	Page        int
	Limit       int
	Total       int64
	TotalPages  int
	HasNextPage bool
	HasPrevPage bool
}

type TaskService interface {
	Create(ctx context.Context, ownerID string, input CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) (*TaskPage, error)
	Update(ctx context.Context, ownerID, id string, update TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}
