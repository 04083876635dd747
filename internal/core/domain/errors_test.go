package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{ErrEmailTaken, ErrConflict},
		{ErrInvalidCredentials, ErrUnauthorized},
		{ErrAccountInactive, ErrForbidden},
		{ErrRefreshSubjectGone, ErrUnauthorized},
		{ErrSelfRoleChange, ErrForbidden},
		{ErrTaskNotFound, ErrNotFound},
		{NewValidationError("email", "Invalid email"), ErrValidation},
	}
	for _, c := range cases {
		wrapped := fmt.Errorf("op: %w", c.err)
		if !errors.Is(wrapped, c.kind) {
			t.Fatalf("%v should unwrap to %v", c.err, c.kind)
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := NewValidationError("password", "too short")
	ve.Add("email", "invalid")
	ve.Add("email", "required")

	want := "validation error: email: invalid, required; password: too short"
	if ve.Error() != want {
		t.Fatalf("got %q, want %q", ve.Error(), want)
	}

	form := NewFormError("Invalid JSON body")
	if form.Error() != "validation error: Invalid JSON body" {
		t.Fatalf("unexpected form message %q", form.Error())
	}
}

func TestParseRoleAndStatus(t *testing.T) {
	if r, ok := ParseRole("admin"); !ok || r != RoleAdmin {
		t.Fatalf("ParseRole(admin) = %q, %v", r, ok)
	}
	if _, ok := ParseRole("root"); ok {
		t.Fatalf("unknown role must not parse")
	}
	if s, ok := ParseUserStatus(" inactive "); !ok || s != StatusInactive {
		t.Fatalf("ParseUserStatus = %q, %v", s, ok)
	}
	if s, ok := ParseTaskStatus("in_progress"); !ok || s != TaskInProgress {
		t.Fatalf("ParseTaskStatus = %q, %v", s, ok)
	}
	if _, ok := ParseTaskStatus("BLOCKED"); ok {
		t.Fatalf("unknown task status must not parse")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Mixed.Case@Example.COM "); got != "mixed.case@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
