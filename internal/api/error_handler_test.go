package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

func runErrorHandler(t *testing.T, method, target string, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v (%q)", err, rec.Body.String())
	}
	return rec, body
}

func TestErrorHandler_DomainKinds(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrEmailTaken, http.StatusConflict, "Email already registered"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{domain.ErrAccountInactive, http.StatusForbidden, "Account is not active"},
		{domain.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{fmt.Errorf("wrapped: %w", domain.ErrSelfDelete), http.StatusForbidden, "You cannot delete your own account"},
		{errors.Wrap(domain.ErrUserNotFound, "with stack"), http.StatusNotFound, "User not found"},
	}

	for _, tc := range cases {
		rec, body := runErrorHandler(t, http.MethodGet, "/api/x", tc.err)
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		if body["message"] != tc.msg {
			t.Fatalf("%v: unexpected message %v", tc.err, body["message"])
		}
		if _, has := body["errors"]; has {
			t.Fatalf("%v: non-validation errors must not carry details", tc.err)
		}
	}
}

func TestErrorHandler_Validation(t *testing.T) {
	ve := domain.NewValidationError("email", "Invalid email")
	rec, body := runErrorHandler(t, http.MethodPost, "/api/auth/register", ve)

	if rec.Code != http.StatusBadRequest || body["message"] != "Validation error" {
		t.Fatalf("unexpected response: %d %v", rec.Code, body)
	}
	details := body["errors"].(map[string]any)
	if forms, ok := details["formErrors"].([]any); !ok || len(forms) != 0 {
		t.Fatalf("expected empty formErrors array, got %v", details["formErrors"])
	}
	fields := details["fieldErrors"].(map[string]any)
	if msgs := fields["email"].([]any); len(msgs) != 1 || msgs[0] != "Invalid email" {
		t.Fatalf("unexpected field errors: %v", fields)
	}
}

func TestErrorHandler_RouteNotFound(t *testing.T) {
	rec, body := runErrorHandler(t, http.MethodGet, "/api/nope?x=1", echo.ErrNotFound)

	if rec.Code != http.StatusNotFound || body["message"] != "Route not found: GET /api/nope?x=1" {
		t.Fatalf("unexpected response: %d %v", rec.Code, body)
	}
}

func TestErrorHandler_UnknownErrorIsGeneric500(t *testing.T) {
	rec, body := runErrorHandler(t, http.MethodGet, "/api/tasks", errors.New("mongo: connection pool exhausted at 10.0.0.3"))

	if rec.Code != http.StatusInternalServerError || body["message"] != "Internal Server Error" {
		t.Fatalf("unexpected response: %d %v", rec.Code, body)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec, body := runErrorHandler(t, http.MethodPost, "/api/auth/login", echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests"))

	if rec.Code != http.StatusTooManyRequests || body["message"] != "Too many requests" {
		t.Fatalf("unexpected response: %d %v", rec.Code, body)
	}
}
