package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
	"github.com/sirpyerre/task-manager/internal/core/service"
)

// TaskHandler handles HTTP requests for the caller's tasks.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// --- Request / Response types ---

type createTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=120" example:"Write the release notes"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	Status      string  `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE" example:"TODO"`
}

func (r *createTaskRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=120"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	Status      *string `json:"status" validate:"omitnil,oneof=TODO IN_PROGRESS DONE"`
}

func (r *updateTaskRequest) normalize() {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		r.Title = &t
	}
}

type listTasksQuery struct {
	Page   int    `query:"page" validate:"min=1"`
	Limit  int    `query:"limit" validate:"min=1,max=50"`
	Status string `query:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

type pageMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type listTasksResponse struct {
	Data []taskResponse `json:"data"`
	Meta pageMeta       `json:"meta"`
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bindAndValidate(c, &req, (*createTaskRequest).normalize); err != nil {
		return err
	}

	in := ports.CreateTaskInput{Title: req.Title, Status: domain.TaskStatus(req.Status)}
	if req.Description != nil {
		in.Description = *req.Description
	}

	task, err := h.service.Create(c.Request().Context(), p.UserID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTask(task))
}

// List handles GET /api/tasks.
//
// @Summary      List my tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page (default 1)"
// @Param        limit   query     int     false  "Page size (default 10, max 50)"
// @Param        status  query     string  false  "Filter by status"  Enums(TODO, IN_PROGRESS, DONE)
// @Success      200     {object}  listTasksResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	q := listTasksQuery{Page: 1, Limit: service.DefaultTaskLimit}
	if err := bindQuery(echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		String("status", &q.Status)); err != nil {
		return err
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	filter := ports.TaskFilter{OwnerID: p.UserID, Page: q.Page, Limit: q.Limit}
	if q.Status != "" {
		st := domain.TaskStatus(q.Status)
		filter.Status = &st
	}

	page, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	data := make([]taskResponse, 0, len(page.Tasks))
	for i := range page.Tasks {
		data = append(data, toTask(&page.Tasks[i]))
	}
	return c.JSON(http.StatusOK, listTasksResponse{
		Data: data,
		Meta: pageMeta{
			Page:        page.Page,
			Limit:       page.Limit,
			Total:       page.Total,
			TotalPages:  page.TotalPages,
			HasNextPage: page.HasNextPage,
			HasPrevPage: page.HasPrevPage,
		},
	})
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	p, id, err := h.target(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), p.UserID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTask(task))
}

// Update handles PATCH /api/tasks/:id.
//
// @Summary      Update a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	p, id, err := h.target(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := bindAndValidate(c, &req, (*updateTaskRequest).normalize); err != nil {
		return err
	}

	update := ports.TaskUpdate{Title: req.Title, Description: req.Description}
	if req.Status != nil {
		st := domain.TaskStatus(*req.Status)
		update.Status = &st
	}

	task, err := h.service.Update(c.Request().Context(), p.UserID, id, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTask(task))
}

// Delete handles DELETE /api/tasks/:id. The task is soft-deleted.
//
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	p, id, err := h.target(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p.UserID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted successfully"})
}

func (h *TaskHandler) target(c echo.Context) (domain.Principal, string, error) {
	p, err := currentPrincipal(c)
	if err != nil {
		return domain.Principal{}, "", err
	}
	id := c.Param("id")
	if !isObjectID(id) {
		return domain.Principal{}, "", domain.ErrInvalidTaskID
	}
	return p, id, nil
}
