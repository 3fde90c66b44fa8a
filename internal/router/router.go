package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/reading-practice/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/reading-practice/internal/middleware" // import middleware for bearer auth and role enforcement
	"github.com/iliyamo/reading-practice/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the credential exchange endpoints. All of them
// are unauthenticated by nature (they are how a session is obtained) and
// sit behind the rate limiter; /me is the one protected probe endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, acc *handler.AccountHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	// Login and refresh exchange credentials or tokens for a session.
	e.POST("/login", a.Login, limit)
	e.POST("/refresh", a.Refresh, limit)
	// Public self-service registration creates a REGULAR account.
	e.POST("/register", acc.Register, limit)
	// The password-reset pair: request a link, then confirm with the token.
	e.POST("/password/forgot", a.ForgotPassword, limit)
	e.POST("/password/reset", a.ResetPassword, limit)
	// Activation confirm is public: the caller authenticates with the
	// signed token from the invite email, not with a session.
	e.POST("/accounts/activate", acc.Activate, limit)

	// /me requires a valid access token and echoes the verified claim.
	e.GET("/me", a.Me, middleware.BearerAuth(jwtSecret))
}

// RegisterAccounts registers the account administration endpoints. The
// whole group requires a bearer token; listing needs admin, inviting and
// deleting need superadmin, and the single-account routes rely on the
// self-access rule inside the handler.
func RegisterAccounts(e *echo.Echo, acc *handler.AccountHandler, users *handler.UserHandler, jwtSecret string) {
	g := e.Group("/accounts", middleware.BearerAuth(jwtSecret))
	g.GET("", acc.List, middleware.RequireRole(model.RoleAdmin))
	g.POST("", acc.Invite, middleware.RequireRole(model.RoleSuperadmin))
	g.GET("/:id", acc.Get)
	g.PATCH("/:id", acc.Patch)
	g.DELETE("/:id", acc.Delete, middleware.RequireRole(model.RoleSuperadmin))
	// Per-account profile list: the owning account always may read its own.
	g.GET("/:id/users", users.ListByAccount)
}

// RegisterExercises registers the catalogue endpoints. Browsing is
// public (with optional bearer auth so a caller can join its own
// completion data) and cached; mutation requires admin; progress
// tracking requires any authenticated account.
func RegisterExercises(e *echo.Echo, ex *handler.ExerciseHandler, cat *handler.CategoryHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/exercises", ex.List, middleware.OptionalBearerAuth(jwtSecret), cache)
	e.GET("/exercises/:id", ex.Get, middleware.OptionalBearerAuth(jwtSecret), cache)
	e.GET("/categories", cat.List, cache)

	admin := e.Group("", middleware.BearerAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
	admin.POST("/exercises", ex.Create)
	admin.PATCH("/exercises/:id", ex.Patch)
	admin.DELETE("/exercises/:id", ex.Delete)
	admin.POST("/categories/:name", cat.Create)
	admin.PATCH("/categories/:name", cat.Patch)
	admin.DELETE("/categories/:name", cat.Delete)

	e.POST("/exercises/:id/track_completion", ex.TrackCompletion, middleware.BearerAuth(jwtSecret))
}

// RegisterUsers registers the reading-profile endpoints. Everything is
// authenticated; ownership is enforced in the handlers so regular
// accounts only ever touch their own profiles.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/users", middleware.BearerAuth(jwtSecret))
	g.POST("", u.Create)
	g.GET("", u.List)
	g.GET("/:id", u.Get)
	g.PATCH("/:id", u.Patch)
	g.DELETE("/:id", u.Delete)
}
