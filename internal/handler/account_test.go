package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/reading-practice/internal/middleware"
	"github.com/iliyamo/reading-practice/internal/model"
	"github.com/iliyamo/reading-practice/internal/utils"
)

// ----- register -----

func TestRegisterCreatesRegularAccountWithSession(t *testing.T) {
	cfg := testConfig()
	store := newMemAccounts()
	h := NewAccountHandler(cfg, store, &memDispatcher{})

	rec := doJSON(t, h.Register, `{"email":"new@example.com","password":"pass123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Account      accountPart `json:"account"`
		AccessToken  string      `json:"access_token"`
		RefreshToken string      `json:"refresh_token"`
	}
	require.NoError(t, jsonDecode(rec, &resp))
	assert.Equal(t, model.RoleRegular, resp.Account.Role)
	assert.Equal(t, "new@example.com", resp.Account.Email)

	claim, err := utils.VerifyToken(cfg.JWTSecret, resp.AccessToken, utils.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, resp.Account.IDAccount, claim.AccountID)
	_, err = utils.VerifyToken(cfg.JWTSecret, resp.RefreshToken, utils.KindRefresh)
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	cfg := testConfig()
	store := newMemAccounts()
	seedAccount(t, store, "taken@example.com", "pass123", model.RoleRegular)
	h := NewAccountHandler(cfg, store, &memDispatcher{})

	rec := doJSON(t, h.Register, `{"email":"taken@example.com","password":"other"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ----- invite / activate -----

func TestInviteRejectsNonElevatedRole(t *testing.T) {
	cfg := testConfig()
	h := NewAccountHandler(cfg, newMemAccounts(), &memDispatcher{})

	for _, body := range []string{
		`{"email":"x@example.com","role":"REGULAR"}`,
		`{"email":"x@example.com","role":"ROOT"}`,
		`{"email":"x@example.com"}`,
	} {
		rec := doJSON(t, h.Invite, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestInviteAndActivateAdmin(t *testing.T) {
	cfg := testConfig()
	store := newMemAccounts()
	mail := &memDispatcher{}
	h := NewAccountHandler(cfg, store, mail)

	rec := doJSON(t, h.Invite, `{"email":"ops@example.com","role":"ADMIN"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"ops@example.com"}, mail.recipients)
	token := mail.lastToken(t)

	rec = doJSON(t, h.Activate, `{"token":"`+token+`","password":"chosen"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created accountPart
	require.NoError(t, jsonDecode(rec, &created))
	// The role comes from the signed invite, never from the request body.
	assert.Equal(t, model.RoleAdmin, created.Role)
	assert.Equal(t, "ops@example.com", created.Email)

	// The invited account can log in with the password it chose.
	auth := NewAuthHandler(cfg, store, mail)
	login := doJSON(t, auth.Login, `{"email":"ops@example.com","password":"chosen"}`)
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestActivateSameTokenTwiceConflicts(t *testing.T) {
	cfg := testConfig()
	store := newMemAccounts()
	mail := &memDispatcher{}
	h := NewAccountHandler(cfg, store, mail)

	rec := doJSON(t, h.Invite, `{"email":"ops@example.com","role":"SUPERADMIN"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := mail.lastToken(t)

	first := doJSON(t, h.Activate, `{"token":"`+token+`","password":"one"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	// The token is still cryptographically valid, but the email now exists.
	second := doJSON(t, h.Activate, `{"token":"`+token+`","password":"two"}`)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestActivateExpiredToken(t *testing.T) {
	cfg := testConfig()
	h := NewAccountHandler(cfg, newMemAccounts(), &memDispatcher{})

	stale, _, err := utils.NewActivationToken(cfg.JWTSecret, "ops@example.com", model.RoleAdmin, -2*time.Second)
	require.NoError(t, err)

	rec := doJSON(t, h.Activate, `{"token":"`+stale+`","password":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestActivateRejectsOtherTokenKinds(t *testing.T) {
	cfg := testConfig()
	h := NewAccountHandler(cfg, newMemAccounts(), &memDispatcher{})

	reset, _, err := utils.NewPasswordResetToken(cfg.JWTSecret, "ops@example.com", time.Hour)
	require.NoError(t, err)

	rec := doJSON(t, h.Activate, `{"token":"`+reset+`","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ----- self-access on GET /accounts/:id -----

// getAccount exercises the handler behind real bearer auth so the claim
// reaches the context the same way it does in production.
func getAccount(t *testing.T, h *AccountHandler, secret string, callerID uint64, callerRole model.Role, targetID uint64) *httptest.ResponseRecorder {
	t.Helper()
	raw, _, err := utils.NewAccessToken(secret, callerID, callerRole, time.Hour)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/accounts/"+strconv.FormatUint(targetID, 10), nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/accounts/:id")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(targetID, 10))

	chain := middleware.BearerAuth(secret)(h.Get)
	require.NoError(t, chain(c))
	return rec
}

func TestAccountSelfAccess(t *testing.T) {
	cfg := testConfig()
	store := newMemAccounts()
	aliceID := seedAccount(t, store, "alice@example.com", "pw", model.RoleRegular)
	bobID := seedAccount(t, store, "bob@example.com", "pw", model.RoleRegular)
	adminID := seedAccount(t, store, "admin@example.com", "pw", model.RoleAdmin)
	h := NewAccountHandler(cfg, store, &memDispatcher{})

	// A regular account reads its own record.
	own := getAccount(t, h, cfg.JWTSecret, aliceID, model.RoleRegular, aliceID)
	assert.Equal(t, http.StatusOK, own.Code)
	assert.True(t, strings.Contains(own.Body.String(), "alice@example.com"))

	// The same account is rejected on someone else's record, with the
	// role hint naming what would have sufficed.
	other := getAccount(t, h, cfg.JWTSecret, aliceID, model.RoleRegular, bobID)
	assert.Equal(t, http.StatusUnauthorized, other.Code)
	assert.Contains(t, other.Body.String(), "sufficient_roles")

	// An admin reads anyone's record.
	elevated := getAccount(t, h, cfg.JWTSecret, adminID, model.RoleAdmin, bobID)
	assert.Equal(t, http.StatusOK, elevated.Code)
}
