package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/reading-practice/internal/model"
	"github.com/iliyamo/reading-practice/internal/utils"
)

const testSecret = "middleware-test-secret"

// invoke runs the middleware chain against a bare GET request and
// reports the recorder plus whether the inner handler was reached.
func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, bool, utils.Claims) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var reached bool
	var claim utils.Claims
	h := mw(func(c echo.Context) error {
		reached = true
		claim, _ = ClaimFrom(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, reached, claim
}

func TestBearerAuthMissingOrWrongScheme(t *testing.T) {
	mw := BearerAuth(testSecret)
	for _, header := range []string{"", "Basic dXNlcg==", "bearer lowercase", "Token abc"} {
		rec, reached, _ := invoke(t, mw, header)
		assert.Equal(t, http.StatusForbidden, rec.Code, header)
		assert.Contains(t, rec.Body.String(), msgInvalidScheme, header)
		assert.False(t, reached, header)
	}
}

func TestBearerAuthRejectsBadTokens(t *testing.T) {
	expired, _, err := utils.NewAccessToken(testSecret, 1, model.RoleRegular, -2*time.Second)
	require.NoError(t, err)
	refresh, _, err := utils.NewRefreshToken(testSecret, 1, model.RoleRegular, time.Hour)
	require.NoError(t, err)
	reset, _, err := utils.NewPasswordResetToken(testSecret, "a@b.c", time.Hour)
	require.NoError(t, err)
	otherSecret, _, err := utils.NewAccessToken("other", 1, model.RoleRegular, time.Hour)
	require.NoError(t, err)

	mw := BearerAuth(testSecret)
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not.a.jwt"},
		{"expired access token", expired},
		{"refresh token as bearer", refresh},
		{"reset token as bearer", reset},
		{"signed with another secret", otherSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reached, _ := invoke(t, mw, "Bearer "+tt.raw)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), msgInvalidToken)
			assert.False(t, reached)
		})
	}
}

func TestBearerAuthPassesValidTokenAndStoresClaim(t *testing.T) {
	raw, _, err := utils.NewAccessToken(testSecret, 42, model.RoleAdmin, time.Hour)
	require.NoError(t, err)

	rec, reached, claim := invoke(t, BearerAuth(testSecret), "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Equal(t, uint64(42), claim.AccountID)
	assert.Equal(t, model.RoleAdmin, claim.Role)
}

func TestOptionalBearerAuthAllowsAnonymous(t *testing.T) {
	rec, reached, claim := invoke(t, OptionalBearerAuth(testSecret), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Zero(t, claim.AccountID)
}

func TestOptionalBearerAuthStillRejectsBadHeader(t *testing.T) {
	// Present-but-invalid credentials are an error, not anonymity.
	rec, reached, _ := invoke(t, OptionalBearerAuth(testSecret), "Bearer broken")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, reached)
}

func TestRequireRoleMatrix(t *testing.T) {
	tests := []struct {
		caller model.Role
		min    model.Role
		allow  bool
	}{
		{model.RoleRegular, model.RoleRegular, true},
		{model.RoleRegular, model.RoleAdmin, false},
		{model.RoleRegular, model.RoleSuperadmin, false},
		{model.RoleAdmin, model.RoleRegular, true},
		{model.RoleAdmin, model.RoleAdmin, true},
		{model.RoleAdmin, model.RoleSuperadmin, false},
		{model.RoleSuperadmin, model.RoleRegular, true},
		{model.RoleSuperadmin, model.RoleAdmin, true},
		{model.RoleSuperadmin, model.RoleSuperadmin, true},
	}
	for _, tt := range tests {
		raw, _, err := utils.NewAccessToken(testSecret, 1, tt.caller, time.Hour)
		require.NoError(t, err)

		chain := BearerAuth(testSecret)(RequireRole(tt.min)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}))
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		require.NoError(t, chain(e.NewContext(req, rec)))

		if tt.allow {
			assert.Equal(t, http.StatusOK, rec.Code, "%s >= %s", tt.caller, tt.min)
		} else {
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s < %s", tt.caller, tt.min)
			assert.Contains(t, rec.Body.String(), "sufficient_roles")
		}
	}
}

func TestRequireRoleWithoutClaimIsAuthFailure(t *testing.T) {
	h := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e := echo.New()
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRejectionHintListsOnlySufficientRoles(t *testing.T) {
	raw, _, err := utils.NewAccessToken(testSecret, 1, model.RoleRegular, time.Hour)
	require.NoError(t, err)

	chain := BearerAuth(testSecret)(RequireRole(model.RoleSuperadmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	require.NoError(t, chain(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "SUPERADMIN")
	assert.NotContains(t, rec.Body.String(), "REGULAR")
}
