package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

// TaskService implements owner-scoped task management.
type TaskService struct {
	repo    ports.TaskRepository
	counter ports.OperationCounter
	now     func() time.Time
}

var _ ports.TaskService = (*TaskService)(nil)

func NewTaskService(repo ports.TaskRepository, counter ports.OperationCounter) *TaskService {
	return &TaskService{repo: repo, counter: counter, now: time.Now}
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in ports.CreateTaskInput) (*domain.Task, error) {
	status := in.Status
	if status == "" {
		status = domain.TaskTodo
	}
	now := s.now().UTC()

	task, err := s.repo.Create(ctx, &domain.Task{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create task")
	}
	s.count("create")
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, taskError(err, "get task")
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, filter ports.TaskFilter) (*ports.TaskPage, error) {
	filter.Page, filter.Limit = clampPage(filter.Page, filter.Limit, DefaultTaskLimit, MaxTaskLimit)

	tasks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list tasks")
	}

	pages := totalPages(total, filter.Limit)
	return &ports.TaskPage{
		Tasks:       tasks,
		Page:        filter.Page,
		Limit:       filter.Limit,
		Total:       total,
		TotalPages:  pages,
		HasNextPage: filter.Page < pages,
		HasPrevPage: filter.Page > 1,
	}, nil
}

// Update with no fields returns the task unchanged.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, update ports.TaskUpdate) (*domain.Task, error) {
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		update.Title = &title
	}
	if update.Title == nil && update.Description == nil && update.Status == nil {
		return s.Get(ctx, ownerID, id)
	}

	task, err := s.repo.Update(ctx, ownerID, id, update)
	if err != nil {
		return nil, taskError(err, "update task")
	}
	s.count("update")
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.SoftDelete(ctx, ownerID, id, s.now().UTC()); err != nil {
		return taskError(err, "delete task")
	}
	s.count("delete")
	return nil
}

func taskError(err error, op string) error {
	if errors.Is(err, domain.ErrTaskNotFound) {
		return domain.ErrTaskNotFound
	}
	return errors.Wrap(err, op)
}

func (s *TaskService) count(operation string) {
	if s.counter != nil {
		s.counter.TaskOperation(operation)
	}
}
