package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

const targetID = "507f1f77bcf86cd799439033"

type stubAdminService struct {
	listFn   func(ctx context.Context, f ports.UserFilter) (*ports.UserPage, error)
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	updateFn func(ctx context.Context, actor domain.Principal, id string, upd ports.UserUpdate) (*domain.User, error)
	deleteFn func(ctx context.Context, actor domain.Principal, id string) (*domain.User, error)
}

func (s *stubAdminService) ListUsers(ctx context.Context, f ports.UserFilter) (*ports.UserPage, error) {
	return s.listFn(ctx, f)
}

func (s *stubAdminService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubAdminService) UpdateUser(ctx context.Context, actor domain.Principal, id string, upd ports.UserUpdate) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, upd)
}

func (s *stubAdminService) DeleteUser(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	return s.deleteFn(ctx, actor, id)
}

func TestAdminHandler_List_Filters(t *testing.T) {
	stub := &stubAdminService{
		listFn: func(_ context.Context, f ports.UserFilter) (*ports.UserPage, error) {
			if f.Page != 1 || f.Limit != 20 {
				t.Fatalf("expected defaults, got %+v", f)
			}
			if f.Role == nil || *f.Role != domain.RoleAdmin || f.Status == nil || *f.Status != domain.StatusActive {
				t.Fatalf("unexpected filter: %+v", f)
			}
			if f.Search != "ali" {
				t.Fatalf("search not trimmed: %q", f.Search)
			}
			return &ports.UserPage{
				Users:      []domain.User{{ID: targetID, Email: "alice@example.com", Role: domain.RoleAdmin, Status: domain.StatusActive}},
				Page:       1,
				Limit:      20,
				Total:      1,
				TotalPages: 1,
			}, nil
		},
	}
	h := NewAdminHandler(stub)

	c, rec := newContext(http.MethodGet, "/api/admin/users?role=ADMIN&status=ACTIVE&search=%20ali%20", "", adminPrincipal)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decode(t, rec)
	data := resp["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected one user, got %d", len(data))
	}
	first := data[0].(map[string]any)
	if first["email"] != "alice@example.com" || first["createdAt"] == nil {
		t.Fatalf("unexpected user summary: %+v", first)
	}
	pg := resp["pagination"].(map[string]any)
	if pg["total"] != float64(1) || pg["totalPages"] != float64(1) {
		t.Fatalf("unexpected pagination: %+v", pg)
	}
}

func TestAdminHandler_List_BadQuery(t *testing.T) {
	h := NewAdminHandler(&stubAdminService{})

	for _, q := range []string{"limit=101", "role=ROOT", "status=GONE"} {
		c, _ := newContext(http.MethodGet, "/api/admin/users?"+q, "", adminPrincipal)
		var ve *domain.ValidationError
		if err := h.List(c); !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", q, err)
		}
	}
}

func TestAdminHandler_Get_InvalidID(t *testing.T) {
	h := NewAdminHandler(&stubAdminService{})

	c, _ := newContext(http.MethodGet, "/api/admin/users/123", "", adminPrincipal)
	c.SetParamNames("id")
	c.SetParamValues("123")
	requireFieldError(t, h.Get(c), "id")
}

func TestAdminHandler_Get(t *testing.T) {
	stub := &stubAdminService{
		getFn: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: "bob@example.com"}, nil
		},
	}
	h := NewAdminHandler(stub)

	c, rec := newContext(http.MethodGet, "/api/admin/users/"+targetID, "", adminPrincipal)
	c.SetParamNames("id")
	c.SetParamValues(targetID)
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["id"] != targetID || resp["updatedAt"] == nil {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestAdminHandler_Update(t *testing.T) {
	stub := &stubAdminService{
		updateFn: func(_ context.Context, actor domain.Principal, id string, upd ports.UserUpdate) (*domain.User, error) {
			if actor.UserID != adminPrincipal.UserID {
				t.Fatalf("actor must be the caller, got %+v", actor)
			}
			if upd.Role == nil || *upd.Role != domain.RoleAdmin || upd.Status != nil || upd.FullName != nil {
				t.Fatalf("unexpected update: %+v", upd)
			}
			return &domain.User{ID: id, Role: *upd.Role}, nil
		},
	}
	h := NewAdminHandler(stub)

	c, rec := newContext(http.MethodPatch, "/api/admin/users/"+targetID, `{"role":"ADMIN"}`, adminPrincipal)
	c.SetParamNames("id")
	c.SetParamValues(targetID)
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["message"] != "User updated successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	if resp["user"].(map[string]any)["role"] != "ADMIN" {
		t.Fatalf("unexpected user: %+v", resp["user"])
	}
}

func TestAdminHandler_Update_BadRole(t *testing.T) {
	h := NewAdminHandler(&stubAdminService{})

	c, _ := newContext(http.MethodPatch, "/api/admin/users/"+targetID, `{"role":"ROOT"}`, adminPrincipal)
	c.SetParamNames("id")
	c.SetParamValues(targetID)
	requireFieldError(t, h.Update(c), "role")
}

func TestAdminHandler_Update_SelfRoleChange(t *testing.T) {
	stub := &stubAdminService{
		updateFn: func(context.Context, domain.Principal, string, ports.UserUpdate) (*domain.User, error) {
			return nil, domain.ErrSelfRoleChange
		},
	}
	h := NewAdminHandler(stub)

	c, _ := newContext(http.MethodPatch, "/api/admin/users/"+adminPrincipal.UserID, `{"role":"USER"}`, adminPrincipal)
	c.SetParamNames("id")
	c.SetParamValues(adminPrincipal.UserID)
	if err := h.Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAdminHandler_Delete(t *testing.T) {
	stub := &stubAdminService{
		deleteFn: func(_ context.Context, _ domain.Principal, id string) (*domain.User, error) {
			return &domain.User{ID: id, Status: domain.StatusInactive}, nil
		},
	}
	h := NewAdminHandler(stub)

	c, rec := newContext(http.MethodDelete, "/api/admin/users/"+targetID, "", adminPrincipal)
	c.SetParamNames("id")
	c.SetParamValues(targetID)
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["message"] != "User deleted successfully (set to INACTIVE)" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	if resp["user"].(map[string]any)["status"] != "INACTIVE" {
		t.Fatalf("unexpected user: %+v", resp["user"])
	}
}
