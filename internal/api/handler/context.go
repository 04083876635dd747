package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirpyerre/task-manager/internal/api/middleware"
	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// currentPrincipal returns the caller attached by the auth middleware. A
// missing principal means the route was wired without the gate.
func currentPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

// bindJSON decodes only the request body; path and query never leak into
// the payload struct.
func bindJSON(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return domain.NewFormError("Invalid JSON body")
	}
	return nil
}

// bindQuery runs the fluent binder and reports conversion failures per field.
func bindQuery(b *echo.ValueBinder) error {
	errs := b.BindErrors()
	if len(errs) == 0 {
		return nil
	}
	out := &domain.ValidationError{}
	for _, err := range errs {
		var be *echo.BindingError
		if errors.As(err, &be) {
			out.Add(be.Field, "Expected number")
			continue
		}
		out.Form = append(out.Form, "Invalid query parameters")
	}
	return out
}

func isObjectID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// bindAndValidate decodes the body, applies normalize, then validates.
func bindAndValidate[T any](c echo.Context, dst *T, normalize func(*T)) error {
	if err := bindJSON(c, dst); err != nil {
		return err
	}
	if normalize != nil {
		normalize(dst)
	}
	return c.Validate(dst)
}
