package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RBAC enforces role-based access control using the role claim injected by Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if !hasRole(role, allowed) {
				return c.JSON(http.StatusForbidden, map[string]string{
					"message": "Insufficient permissions",
				})
			}
			return next(c)
		}
	}
}

func hasRole(role string, allowed map[string]struct{}) bool {
	_, ok := allowed[role]
	return ok
}
