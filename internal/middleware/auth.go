package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/reading-practice/internal/utils"
)

// Context key under which the verified claim is stored for handlers.
const claimContextKey = "claim"

// Responses are deliberately uniform: a missing or malformed scheme gets
// its own message, but every token-level failure (bad signature, expired,
// refresh token presented as access, reset token presented as bearer)
// collapses into one response so callers cannot probe which check failed.
const (
	msgInvalidScheme = "Invalid authentication scheme."
	msgInvalidToken  = "Invalid token or expired token."
)

// BearerAuth returns an Echo middleware that validates a Bearer access
// token and injects the verified claim into the request context. Only
// access tokens pass; the other three kinds never carry bearer
// capability. Handlers read the claim via ClaimFrom(c).
func BearerAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// The Authorization header must carry the Bearer scheme; anything
			// else is rejected before the token itself is inspected.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusForbidden, echo.Map{"error": msgInvalidScheme})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claim, err := utils.VerifyToken(secret, raw, utils.KindAccess)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": msgInvalidToken})
			}

			c.Set(claimContextKey, claim)
			return next(c)
		}
	}
}

// OptionalBearerAuth behaves like BearerAuth when an Authorization header
// is present but lets anonymous requests through without a claim. Used on
// public listings that accept an optional user_id parameter.
func OptionalBearerAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusForbidden, echo.Map{"error": msgInvalidScheme})
			}
			claim, err := utils.VerifyToken(secret, strings.TrimPrefix(auth, "Bearer "), utils.KindAccess)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": msgInvalidToken})
			}
			c.Set(claimContextKey, claim)
			return next(c)
		}
	}
}
