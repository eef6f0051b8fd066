package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core/user"
)

// roleMiddleware restricts a route to the given roles. Requires
// authMiddleware to have run.
func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx)
			if err != nil {
				return err
			}
			if err = user.RequireRole(p, roles...); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}
