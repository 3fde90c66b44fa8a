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

	"github.com/iliyamo/reading-practice/internal/middleware"
	"github.com/iliyamo/reading-practice/internal/model"
	"github.com/iliyamo/reading-practice/internal/repository"
	"github.com/iliyamo/reading-practice/internal/utils"
)

// ExerciseHandler serves the exercise catalogue and per-profile progress
// tracking.
type ExerciseHandler struct {
	Exercises   *repository.ExerciseRepo
	Users       *repository.UserRepo
	Completions *repository.CompletionRepo
}

func NewExerciseHandler(e *repository.ExerciseRepo, u *repository.UserRepo, cp *repository.CompletionRepo) *ExerciseHandler {
	return &ExerciseHandler{Exercises: e, Users: u, Completions: cp}
}

// ----- DTOs -----

type completionPart struct {
	Completion int `json:"completion"`
	TimeSpent  int `json:"time_spent"`
	Position   int `json:"position"`
}

type exerciseItem struct {
	ID         uint64          `json:"id"`
	Title      string          `json:"title"`
	Complexity *string         `json:"complexity"`
	Category   []string        `json:"category"`
	Completion *completionPart `json:"completion"`
}

type exerciseFull struct {
	exerciseItem
	Text string `json:"text"`
}

type exerciseCreateReq struct {
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Complexity string   `json:"complexity"`
	Category   []string `json:"category"`
}

type exercisePatchReq struct {
	Title      *string  `json:"title"`
	Text       *string  `json:"text"`
	Complexity *string  `json:"complexity"`
	Category   []string `json:"category"`
}

type trackCompletionReq struct {
	UserID     uint64 `json:"user_id"`
	Completion int    `json:"completion"`
	TimeSpent  int    `json:"time_spent"`
	Position   int    `json:"position"`
}

func toExerciseItem(e model.Exercise, comp *model.Completion) exerciseItem {
	item := exerciseItem{ID: e.ID, Title: e.Title, Category: e.Categories}
	if e.Complexity != "" {
		s := string(e.Complexity)
		item.Complexity = &s
	}
	if comp != nil {
		item.Completion = &completionPart{
			Completion: comp.Completion,
			TimeSpent:  comp.TimeSpent,
			Position:   comp.Position,
		}
	}
	return item
}

// resolveProfile loads the profile named by user_id and enforces the
// self-access rule: the profile must belong to the caller's account
// unless the caller is at least admin. A profile the caller may not see
// is reported as not found, not as forbidden, to avoid confirming its
// existence.
func (h *ExerciseHandler) resolveProfile(ctx context.Context, claim utils.Claims, userID uint64) (model.User, error) {
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if u.AccountID != claim.AccountID && claim.Role.Level() < model.RoleAdmin.Level() {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

// List returns one page of exercises. Anonymous callers browse the plain
// catalogue; authenticated callers may pass user_id to join their own
// profile's completion data onto each item.
func (h *ExerciseHandler) List(c echo.Context) error {
	p := repository.ExerciseListParams{
		Skip:      atoiDefault(c.QueryParam("skip"), 0),
		Limit:     atoiDefault(c.QueryParam("limit"), 100),
		OrderBy:   c.QueryParam("order_by"),
		TitleLike: c.QueryParam("title_like"),
		Category:  c.QueryParam("category"),
	}
	if p.OrderBy != "" && !repository.ExerciseOrderColumns[p.OrderBy] {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "order_by must be one of title, complexity, category"})
	}
	switch c.QueryParam("order") {
	case "", "asc":
	case "desc":
		p.Descending = true
	default:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "order must be asc or desc"})
	}
	if s := c.QueryParam("complexity"); s != "" {
		cx := model.Complexity(s)
		if !cx.Valid() {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "complexity must be one of easy, medium, hard"})
		}
		p.Complexity = cx
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var profile *model.User
	if s := c.QueryParam("user_id"); s != "" {
		userID, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		claim, ok := middleware.ClaimFrom(c)
		if !ok {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		u, err := h.resolveProfile(ctx, claim, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		profile = &u
	}

	list, total, err := h.Exercises.List(ctx, p)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var completions map[uint64]model.Completion
	if profile != nil {
		ids := make([]uint64, 0, len(list))
		for _, e := range list {
			ids = append(ids, e.ID)
		}
		completions, err = h.Completions.MapForUser(ctx, profile.ID, ids)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}

	items := make([]exerciseItem, 0, len(list))
	for _, e := range list {
		var comp *model.Completion
		if completions != nil {
			if cm, ok := completions[e.ID]; ok {
				comp = &cm
			}
		}
		items = append(items, toExerciseItem(e, comp))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": total})
}

// Get returns one exercise including its text, optionally joined with a
// profile's completion via user_id.
func (h *ExerciseHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var comp *model.Completion
	if s := c.QueryParam("user_id"); s != "" {
		userID, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		claim, ok := middleware.ClaimFrom(c)
		if !ok {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		u, err := h.resolveProfile(ctx, claim, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if cm, err := h.Completions.Get(ctx, u.ID, id); err == nil {
			comp = &cm
		} else if !errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}

	ex, err := h.Exercises.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exercise not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, exerciseFull{exerciseItem: toExerciseItem(ex, comp), Text: ex.Text})
}

// Create adds an exercise; admin and above, gated in the router.
func (h *ExerciseHandler) Create(c echo.Context) error {
	var req exerciseCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" || req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/text required"})
	}
	cx := model.Complexity(req.Complexity)
	if req.Complexity != "" && !cx.Valid() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "complexity must be one of easy, medium, hard"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Exercises.Create(ctx, req.Title, req.Text, cx, req.Category)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create exercise failed"})
	}
	ex, err := h.Exercises.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, exerciseFull{exerciseItem: toExerciseItem(ex, nil), Text: ex.Text})
}

// Patch partially updates an exercise; admin and above.
func (h *ExerciseHandler) Patch(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req exercisePatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var cx *model.Complexity
	if req.Complexity != nil {
		v := model.Complexity(*req.Complexity)
		if *req.Complexity != "" && !v.Valid() {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "complexity must be one of easy, medium, hard"})
		}
		cx = &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Exercises.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exercise not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Exercises.Update(ctx, id, req.Title, req.Text, cx, req.Category); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	ex, err := h.Exercises.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, exerciseFull{exerciseItem: toExerciseItem(ex, nil), Text: ex.Text})
}

// Delete removes an exercise and its progress rows; admin and above.
func (h *ExerciseHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Exercises.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exercise not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// TrackCompletion upserts a profile's progress on an exercise. The
// profile must belong to the caller's account (or the caller is admin).
func (h *ExerciseHandler) TrackCompletion(c echo.Context) error {
	exerciseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req trackCompletionReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}
	claim, ok := middleware.ClaimFrom(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.resolveProfile(ctx, claim, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Exercises.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exercise not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	err = h.Completions.Upsert(ctx, model.Completion{
		UserID:     u.ID,
		ExerciseID: exerciseID,
		Completion: req.Completion,
		TimeSpent:  req.TimeSpent,
		Position:   req.Position,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "track failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// atoiDefault parses s as an int, falling back when empty or invalid.
func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
