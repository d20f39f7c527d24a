package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose token role is not one of roles. It must
// run after JWT.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyRole).(string)
			if role == "" {
				return c.JSON(http.StatusForbidden, errorBody("missing role"))
			}
			if !slices.Contains(roles, role) {
				return c.JSON(http.StatusForbidden, errorBody("insufficient permissions"))
			}
			return next(c)
		}
	}
}
