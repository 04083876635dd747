package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
	"github.com/sirpyerre/task-manager/internal/core/service"
)

// AdminHandler serves user management for administrators.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type listUsersQuery struct {
	Page   int    `query:"page" validate:"min=1"`
	Limit  int    `query:"limit" validate:"min=1,max=100"`
	Role   string `query:"role" validate:"omitempty,oneof=ADMIN USER"`
	Status string `query:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Search string `query:"search"`
}

type updateUserRequest struct {
	Role     *string `json:"role" validate:"omitnil,oneof=ADMIN USER" example:"ADMIN"`
	Status   *string `json:"status" validate:"omitnil,oneof=ACTIVE INACTIVE" example:"ACTIVE"`
	FullName *string `json:"fullName" validate:"omitnil,min=1,max=100"`
}

func (r *updateUserRequest) normalize() {
	if r.FullName != nil {
		n := strings.TrimSpace(*r.FullName)
		r.FullName = &n
	}
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type listUsersResponse struct {
	Data       []userSummaryResponse `json:"data"`
	Pagination pagination            `json:"pagination"`
}

type updateUserResponse struct {
	Message string             `json:"message" example:"User updated successfully"`
	User    userDetailResponse `json:"user"`
}

type deleteUserResponse struct {
	Message string          `json:"message" example:"User deleted successfully (set to INACTIVE)"`
	User    profileResponse `json:"user"`
}

// List handles GET /api/admin/users.
//
// @Summary      List users
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Param        role    query     string  false  "Filter by role"    Enums(ADMIN, USER)
// @Param        status  query     string  false  "Filter by status"  Enums(ACTIVE, INACTIVE)
// @Param        search  query     string  false  "Case-insensitive match on email or full name"
// @Success      200     {object}  listUsersResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) List(c echo.Context) error {
	q := listUsersQuery{Page: 1, Limit: service.DefaultUserLimit}
	if err := bindQuery(echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		String("role", &q.Role).
		String("status", &q.Status).
		String("search", &q.Search)); err != nil {
		return err
	}
	q.Search = strings.TrimSpace(q.Search)
	if err := c.Validate(&q); err != nil {
		return err
	}

	filter := ports.UserFilter{Page: q.Page, Limit: q.Limit, Search: q.Search}
	if q.Role != "" {
		r := domain.Role(q.Role)
		filter.Role = &r
	}
	if q.Status != "" {
		s := domain.UserStatus(q.Status)
		filter.Status = &s
	}

	page, err := h.service.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	data := make([]userSummaryResponse, 0, len(page.Users))
	for i := range page.Users {
		u := &page.Users[i]
		data = append(data, userSummaryResponse{profileResponse: toProfile(u), CreatedAt: u.CreatedAt})
	}
	return c.JSON(http.StatusOK, listUsersResponse{
		Data: data,
		Pagination: pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// Get handles GET /api/admin/users/:id.
//
// @Summary      Get a user
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id (24 hex characters)"
// @Success      200  {object}  userDetailResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [get]
func (h *AdminHandler) Get(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserDetail(user))
}

// Update handles PATCH /api/admin/users/:id.
//
// @Summary      Update a user
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id (24 hex characters)"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  updateUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/{id} [patch]
func (h *AdminHandler) Update(c echo.Context) error {
	actor, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindAndValidate(c, &req, (*updateUserRequest).normalize); err != nil {
		return err
	}

	update := ports.UserUpdate{FullName: req.FullName}
	if req.Role != nil {
		r := domain.Role(*req.Role)
		update.Role = &r
	}
	if req.Status != nil {
		s := domain.UserStatus(*req.Status)
		update.Status = &s
	}

	user, err := h.service.UpdateUser(c.Request().Context(), actor, id, update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateUserResponse{
		Message: "User updated successfully",
		User:    toUserDetail(user),
	})
}

// Delete handles DELETE /api/admin/users/:id. The account is deactivated,
// never removed.
//
// @Summary      Deactivate a user
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id (24 hex characters)"
// @Success      200  {object}  deleteUserResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	actor, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	user, err := h.service.DeleteUser(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteUserResponse{
		Message: "User deleted successfully (set to INACTIVE)",
		User:    toProfile(user),
	})
}

func userIDParam(c echo.Context) (string, error) {
	id := c.Param("id")
	if !isObjectID(id) {
		return "", domain.NewValidationError("id", "Invalid user ID format")
	}
	return id, nil
}
