package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/ports"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type updateProfileRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100" example:"Alice Cooper"`
}

type updateProfileResponse struct {
	Message string          `json:"message" example:"Profile updated successfully"`
	User    profileResponse `json:"user"`
}

// Me handles GET /api/users/me.
//
// @Summary      Get my profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.service.Me(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfile(user))
}

// UpdateMe handles PATCH /api/users/me.
//
// @Summary      Update my profile
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "New display name"
// @Success      200   {object}  updateProfileResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req, func(r *updateProfileRequest) { r.FullName = strings.TrimSpace(r.FullName) }); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), p.UserID, req.FullName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateProfileResponse{
		Message: "Profile updated successfully",
		User:    toProfile(user),
	})
}
