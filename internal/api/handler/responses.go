package handler

import (
	"time"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Message string `json:"message" example:"Validation error"`
	Errors  *struct {
		FormErrors  []string            `json:"formErrors"`
		FieldErrors map[string][]string `json:"fieldErrors"`
	} `json:"errors,omitempty"`
}

type profileResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role" example:"USER"`
	Status   string `json:"status" example:"ACTIVE"`
}

func toProfile(u *domain.User) profileResponse {
	return profileResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     string(u.Role),
		Status:   string(u.Status),
	}
}

type userSummaryResponse struct {
	profileResponse
	CreatedAt time.Time `json:"createdAt"`
}

type userDetailResponse struct {
	profileResponse
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserDetail(u *domain.User) userDetailResponse {
	return userDetailResponse{profileResponse: toProfile(u), CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

type taskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status" example:"TODO"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toTask(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
