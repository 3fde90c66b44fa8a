package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/reading-practice/internal/repository"
)

// CategoryHandler manages the flat category namespace. Listing is
// public; mutation is admin-gated in the router.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(r *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: r}
}

type categoryPatchReq struct {
	Category string `json:"category"`
}

// List returns all category names as a flat array of strings.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	names, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, names)
}

// Create adds a category named by the path parameter.
func (h *CategoryHandler) Create(c echo.Context) error {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Categories.Create(ctx, name); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"category": name})
}

// Patch renames a category, keeping its exercise links.
func (h *CategoryHandler) Patch(c echo.Context) error {
	oldName := strings.TrimSpace(c.Param("name"))
	var req categoryPatchReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Category) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category required"})
	}
	newName := strings.TrimSpace(req.Category)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Categories.Rename(ctx, oldName, newName); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"category": newName})
}

// Delete removes a category and detaches it from every exercise.
func (h *CategoryHandler) Delete(c echo.Context) error {
	name := strings.TrimSpace(c.Param("name"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Categories.Delete(ctx, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
