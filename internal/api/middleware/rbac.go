package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// RequireRole admits only principals holding one of the given roles. It must
// run after RequireAuthenticated.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[p.Role]; !ok {
				return domain.ErrInsufficientRole
			}
			return next(c)
		}
	}
}
