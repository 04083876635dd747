package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/api/middleware"
	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// newContext builds an echo context with the production validator. A nil
// principal leaves the request unauthenticated.
func newContext(method, target, body string, p *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		middleware.SetPrincipal(c, *p)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields[field]) == 0 {
		t.Fatalf("expected error on %q, got %+v", field, ve.Fields)
	}
}

var (
	userPrincipal  = &domain.Principal{UserID: "507f1f77bcf86cd799439011", Role: domain.RoleUser}
	adminPrincipal = &domain.Principal{UserID: "507f1f77bcf86cd799439022", Role: domain.RoleAdmin}
)
