package middleware

// claims.go provides helpers shared across middleware and handlers for
// reading the verified claim that BearerAuth stored in the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/reading-practice/internal/utils"
)

// ClaimFrom returns the verified access-token claim for the request, if
// any. The second result is false for anonymous requests.
func ClaimFrom(c echo.Context) (utils.Claims, bool) {
	v := c.Get(claimContextKey)
	if v == nil {
		return utils.Claims{}, false
	}
	claim, ok := v.(utils.Claims)
	return claim, ok
}

// callerID returns a stable identifier for rate-limit keys: the account
// id when authenticated, "anon" otherwise.
func callerID(c echo.Context) string {
	if claim, ok := ClaimFrom(c); ok {
		return strconv.FormatUint(claim.AccountID, 10)
	}
	return "anon"
}
