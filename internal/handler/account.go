package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/reading-practice/internal/config"
	"github.com/iliyamo/reading-practice/internal/mailer"
	"github.com/iliyamo/reading-practice/internal/middleware"
	"github.com/iliyamo/reading-practice/internal/model"
	"github.com/iliyamo/reading-practice/internal/repository"
	"github.com/iliyamo/reading-practice/internal/service"
	"github.com/iliyamo/reading-practice/internal/utils"
)

// AccountHandler covers registration, account administration, and the
// invite/activation flow for elevated roles.
type AccountHandler struct {
	Cfg      config.Config
	Accounts AccountStore
	Mail     service.MailDispatcher
}

func NewAccountHandler(cfg config.Config, accounts AccountStore, mail service.MailDispatcher) *AccountHandler {
	return &AccountHandler{Cfg: cfg, Accounts: accounts, Mail: mail}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type inviteReq struct {
	Email string `json:"email"`
	Role  string `json:"role"` // ADMIN | SUPERADMIN
}
type activateReq struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}
type accountPatchReq struct {
	Email *string `json:"email"`
}
type accountPart struct {
	IDAccount uint64     `json:"id_account"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
}

func toAccountPart(a model.Account) accountPart {
	return accountPart{IDAccount: a.ID, Email: a.Email, Role: a.Role}
}

// canAccessAccount implements the self-access rule: an account may always
// act on its own resources at regular level; anything else needs at least
// admin.
func canAccessAccount(claim utils.Claims, ownerID uint64) bool {
	return claim.AccountID == ownerID || claim.Role.Level() >= model.RoleAdmin.Level()
}

// Register creates a regular account and returns it together with a
// session pair, so a fresh signup is logged in immediately.
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Accounts.Create(ctx, req.Email, req.Password, model.RoleRegular, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}

	access, refresh, err := utils.NewSessionTokens(h.Cfg.JWTSecret, id, model.RoleRegular, h.Cfg.AccessTTL, h.Cfg.RefreshTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"account":       accountPart{IDAccount: id, Email: req.Email, Role: model.RoleRegular},
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// List returns every account. Admin and above; gated in the router.
func (h *AccountHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	accounts, err := h.Accounts.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]accountPart, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountPart(a))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one account; self-access or admin.
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	claim, _ := middleware.ClaimFrom(c)
	if !canAccessAccount(claim, id) {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error":            "insufficient role",
			"sufficient_roles": model.RolesAtOrAbove(model.RoleAdmin),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAccountPart(a))
}

// Patch updates the account email; self-access or admin.
func (h *AccountHandler) Patch(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	claim, _ := middleware.ClaimFrom(c)
	if !canAccessAccount(claim, id) {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error":            "insufficient role",
			"sufficient_roles": model.RolesAtOrAbove(model.RoleAdmin),
		})
	}

	var req accountPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		if err := h.Accounts.UpdateEmail(ctx, id, *req.Email); err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAccountPart(a))
}

// Delete removes an account with cascading cleanup of its profiles and
// progress. Superadmin only; gated in the router.
func (h *AccountHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Invite issues an account-activation token for an elevated role and
// dispatches it by email. Superadmin only; gated in the router. The
// invited address sets its own password when confirming.
func (h *AccountHandler) Invite(c echo.Context) error {
	var req inviteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	role, err := model.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if err != nil || role.Level() < model.RoleAdmin.Level() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN or SUPERADMIN"})
	}

	token, _, err := utils.NewActivationToken(h.Cfg.JWTSecret, email, role, h.Cfg.ActivationTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	h.Mail.Dispatch(c.Request().Context(), email, mailer.ActivationTemplate(h.Cfg.BaseURL, token))
	return c.JSON(http.StatusOK, echo.Map{"details": "Activation email sent"})
}

// Activate confirms an activation token and creates the account with the
// role fixed at invite time. Re-confirming the same token conflicts,
// because the email is registered by then.
func (h *AccountHandler) Activate(c echo.Context) error {
	var req activateReq
	if err := c.Bind(&req); err != nil || req.Password == "" || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password and token required"})
	}

	claim, err := utils.VerifyToken(h.Cfg.JWTSecret, req.Token, utils.KindActivation)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Token expired"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Accounts.Create(ctx, claim.Email, req.Password, claim.RequestedRole, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}
	return c.JSON(http.StatusCreated, accountPart{IDAccount: id, Email: claim.Email, Role: claim.RequestedRole})
}
