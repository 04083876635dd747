package ports

import (
	"context"
	"time"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

type TaskFilter struct {
	OwnerID string
	Status  *domain.TaskStatus
	Page    int
	Limit   int
}

type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
}

// TaskRepository persists tasks. Every method is scoped to the owner and
// ignores soft-deleted documents; a miss is domain.ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, ownerID, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, int64, error)
	Update(ctx context.Context, ownerID, id string, update TaskUpdate) (*domain.Task, error)
	SoftDelete(ctx context.Context, ownerID, id string, at time.Time) error
}
