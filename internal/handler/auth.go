package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // sentinel for missing rows
	"errors"
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/reading-practice/internal/config"
	"github.com/iliyamo/reading-practice/internal/mailer"
	"github.com/iliyamo/reading-practice/internal/middleware"
	"github.com/iliyamo/reading-practice/internal/service"
	"github.com/iliyamo/reading-practice/internal/utils"
)

// AuthHandler bundles dependencies for the credential exchange flows:
// login, refresh, and the password-reset request/confirm pair.
type AuthHandler struct {
	Cfg      config.Config
	Accounts AccountStore
	Mail     service.MailDispatcher
}

func NewAuthHandler(cfg config.Config, accounts AccountStore, mail service.MailDispatcher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: accounts, Mail: mail}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}
type sessionResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login verifies the credentials and returns a fresh session pair. The
// failure response never distinguishes "no such email" from "wrong
// password".
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username/Password wrong"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(a.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username/Password wrong"})
	}

	access, refresh, err := utils.NewSessionTokens(h.Cfg.JWTSecret, a.ID, a.Role, h.Cfg.AccessTTL, h.Cfg.RefreshTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, sessionResp{AccessToken: access, RefreshToken: refresh})
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token itself is returned unchanged: there is no rotation, it
// stays valid until its own expiry. Access tokens presented here are
// rejected the same way as any invalid token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)

	claim, err := utils.VerifyToken(h.Cfg.JWTSecret, raw, utils.KindRefresh)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid token or expired token."})
	}

	access, _, err := utils.NewAccessToken(h.Cfg.JWTSecret, claim.AccountID, claim.Role, h.Cfg.AccessTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, sessionResp{AccessToken: access, RefreshToken: raw})
}

// forgotResponse is returned for every forgot-password request, whether
// or not the address exists, so the endpoint cannot be used to enumerate
// accounts.
const forgotResponse = "If the address is registered, a password reset email has been sent"

// ForgotPassword issues a reset token and dispatches the emailed link.
// Unknown addresses get the identical success response and no email.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Accounts.GetByEmail(ctx, email); err != nil {
		// Unknown address or transient store error: identical response,
		// nothing dispatched. The error is not surfaced to the caller.
		if !errors.Is(err, sql.ErrNoRows) {
			c.Logger().Errorf("forgot-password: account lookup failed: %v", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"details": forgotResponse})
	}

	token, _, err := utils.NewPasswordResetToken(h.Cfg.JWTSecret, email, h.Cfg.ResetTTL)
	if err != nil {
		c.Logger().Errorf("forgot-password: token issue failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"details": forgotResponse})
	}
	h.Mail.Dispatch(ctx, email, mailer.PasswordResetTemplate(h.Cfg.BaseURL, token))
	return c.JSON(http.StatusOK, echo.Map{"details": forgotResponse})
}

// ResetPassword confirms a reset token and stores the new password. The
// token already proves control of the mailbox, so this endpoint may
// distinguish an expired token and a since-deleted account; any other
// decode failure stays generic.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || req.Password == "" || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password and token required"})
	}

	claim, err := utils.VerifyToken(h.Cfg.JWTSecret, req.Token, utils.KindPasswordReset)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Token expired"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.UpdatePassword(ctx, claim.Email, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Email not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"details": "Successfully updated password"})
}

// Me is a simple protected endpoint returning the caller's identity.
func (h *AuthHandler) Me(c echo.Context) error {
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Invalid token or expired token."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"account_id": claim.AccountID,
		"role":       claim.Role,
	})
}
