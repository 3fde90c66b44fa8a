package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/reading-practice/internal/model"
)

// RequireRole returns a middleware that enforces a minimum role level on
// the authenticated caller. Roles are compared through their integer
// levels, never by string equality, so ADMIN automatically satisfies a
// REGULAR requirement. The rejection lists which roles would have
// sufficed; that hint is diagnostic and leaks nothing secret. It assumes
// BearerAuth already stored a verified access-token claim in the context;
// only access tokens ever reach this gate.
func RequireRole(min model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claim, ok := ClaimFrom(c)
			if !ok {
				// BearerAuth was not applied or did not run; treat as an
				// authentication failure, not an authorization one.
				return c.JSON(http.StatusForbidden, echo.Map{"error": msgInvalidToken})
			}
			if claim.Role.Level() < min.Level() {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":            "insufficient role",
					"sufficient_roles": model.RolesAtOrAbove(min),
				})
			}
			return next(c)
		}
	}
}
