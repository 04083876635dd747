package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

func runRBAC(t *testing.T, p *domain.Principal, roles ...domain.Role) (error, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		SetPrincipal(c, *p)
	}

	called := false
	h := RequireRole(roles...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	return h(c), called
}

func TestRequireRole_Allowed(t *testing.T) {
	err, called := runRBAC(t, &domain.Principal{UserID: "a1", Role: domain.RoleAdmin}, domain.RoleAdmin)
	if err != nil || !called {
		t.Fatalf("expected admin to pass, got %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	err, called := runRBAC(t, &domain.Principal{UserID: "u1", Role: domain.RoleUser}, domain.RoleAdmin)
	if called {
		t.Fatalf("next must not be called")
	}
	if err != domain.ErrInsufficientRole {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}
}

func TestRequireRole_WithoutPrincipal(t *testing.T) {
	err, called := runRBAC(t, nil, domain.RoleAdmin)
	if called || err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	err, called := runRBAC(t, &domain.Principal{UserID: "u1", Role: domain.RoleUser}, domain.RoleAdmin, domain.RoleUser)
	if err != nil || !called {
		t.Fatalf("expected user to pass, got %v", err)
	}
}
