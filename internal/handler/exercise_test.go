package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doGet runs a handler against a GET request with raw query parameters.
func doGet(t *testing.T, h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

// Parameter validation runs before any storage access, so these paths
// are exercised without a database behind the handler.

func TestExerciseListRejectsBadOrdering(t *testing.T) {
	h := &ExerciseHandler{}

	for _, query := range []string{
		"order_by=id",
		"order_by=text",
		"order=desc&order_by=bogus",
		"order=sideways",
		"complexity=impossible",
	} {
		t.Run(query, func(t *testing.T) {
			rec := doGet(t, h.List, "/exercises?"+query)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestExerciseListUserIDRequiresAuth(t *testing.T) {
	h := &ExerciseHandler{}

	rec := doGet(t, h.List, "/exercises?user_id=7")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
}

func TestExerciseListRejectsMalformedUserID(t *testing.T) {
	h := &ExerciseHandler{}

	rec := doGet(t, h.List, "/exercises?user_id=seven")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExerciseGetRejectsBadID(t *testing.T) {
	h := &ExerciseHandler{}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/exercises/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/exercises/:id")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExerciseCreateValidation(t *testing.T) {
	h := &ExerciseHandler{}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing title", `{"text":"some text"}`, http.StatusBadRequest},
		{"missing text", `{"title":"A title"}`, http.StatusBadRequest},
		{"blank title", `{"title":"   ","text":"t"}`, http.StatusBadRequest},
		{"unknown complexity", `{"title":"A","text":"t","complexity":"brutal"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h.Create, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
