package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/reading-practice/internal/middleware"
	"github.com/iliyamo/reading-practice/internal/model"
	"github.com/iliyamo/reading-practice/internal/repository"
)

// UserHandler manages reading profiles. Every route is authenticated;
// regular callers only see profiles under their own account, admins see
// everything.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler { return &UserHandler{Users: u} }

type userCreateReq struct {
	AccountID   uint64  `json:"id_account"` // optional; admins may create for other accounts
	Username    string  `json:"username"`
	Proficiency float64 `json:"proficiency"`
}
type userPatchReq struct {
	Username    *string  `json:"username"`
	Proficiency *float64 `json:"proficiency"`
}
type userPart struct {
	IDUser      uint64  `json:"id_user"`
	IDAccount   uint64  `json:"id_account"`
	Username    string  `json:"username"`
	Proficiency float64 `json:"proficiency"`
}

func toUserPart(u model.User) userPart {
	return userPart{IDUser: u.ID, IDAccount: u.AccountID, Username: u.Username, Proficiency: u.Proficiency}
}

// Create adds a profile. Regular callers always create under their own
// account; an explicit id_account for someone else needs admin.
func (h *UserHandler) Create(c echo.Context) error {
	var req userCreateReq
	if err := c.Bind(&req); err != nil || req.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	}
	claim, _ := middleware.ClaimFrom(c)

	accountID := claim.AccountID
	if req.AccountID != 0 && req.AccountID != claim.AccountID {
		if claim.Role.Level() < model.RoleAdmin.Level() {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error":            "insufficient role",
				"sufficient_roles": model.RolesAtOrAbove(model.RoleAdmin),
			})
		}
		accountID = req.AccountID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, accountID, req.Username, req.Proficiency)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, userPart{IDUser: id, IDAccount: accountID, Username: req.Username, Proficiency: req.Proficiency})
}

// List pages through profiles: all of them for admins, the caller's own
// otherwise.
func (h *UserHandler) List(c echo.Context) error {
	claim, _ := middleware.ClaimFrom(c)
	skip := atoiDefault(c.QueryParam("skip"), 0)
	limit := atoiDefault(c.QueryParam("limit"), 100)

	accountID := claim.AccountID
	if claim.Role.Level() >= model.RoleAdmin.Level() {
		accountID = 0 // all accounts
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, accountID, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, out)
}

// ListByAccount returns the profiles of one account. Self-access applies:
// the owning account reads its own list regardless of role.
func (h *UserHandler) ListByAccount(c echo.Context) error {
	accountID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	claim, _ := middleware.ClaimFrom(c)
	if !canAccessAccount(claim, accountID) {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error":            "insufficient role",
			"sufficient_roles": model.RolesAtOrAbove(model.RoleAdmin),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, accountID, 0, 1000)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, out)
}

// get loads the profile and enforces ownership, translating misses and
// foreign profiles into 404.
func (h *UserHandler) get(ctx context.Context, c echo.Context) (model.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return model.User{}, false
	}
	claim, _ := middleware.ClaimFrom(c)
	u, err := h.Users.GetByID(ctx, id)
	if err == nil && u.AccountID != claim.AccountID && claim.Role.Level() < model.RoleAdmin.Level() {
		err = sql.ErrNoRows
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.User{}, false
	}
	return u, true
}

// Get returns one profile; owner or admin.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, ok := h.get(ctx, c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Patch updates username and/or proficiency; owner or admin.
func (h *UserHandler) Patch(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, ok := h.get(ctx, c)
	if !ok {
		return nil
	}
	var req userPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Users.Update(ctx, u.ID, req.Username, req.Proficiency); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserPart(updated))
}

// Delete removes a profile and its progress; owner or admin.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, ok := h.get(ctx, c)
	if !ok {
		return nil
	}
	if err := h.Users.Delete(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
