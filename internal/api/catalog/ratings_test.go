package catalog

import (
	"encoding/json"
	"net/http"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
)

func newRatingRouter(t *testing.T, actor *models.Profile) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tools := repositories.NewToolRepository(db)
	h := NewRatingHandlers(repositories.NewRatingRepository(db), tools)
	router := gin.New()
	router.Use(asUser(actor))
	router.PUT("/tools/:id/rating", h.Rate)
	router.DELETE("/tools/:id/rating", h.Unrate)
	return router, mock
}

func TestRate(t *testing.T) {
	router, mock := newRatingRouter(t, memberProfile())
	expectGetTool(mock, "tool-1", models.ToolStatusApproved, "user-2")
	mock.ExpectExec("INSERT INTO tool_ratings").WillReturnResult(sqlmock.NewResult(1, 1))
	expectAggregate(mock, "tool-1", 4.0, 1, 0)

	w := doJSON(t, router, http.MethodPut, "/tools/tool-1/rating", gin.H{"rating": 4})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Stats models.ToolAggregate `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.RatingCount != 1 {
		t.Errorf("RatingCount = %d, want 1", resp.Stats.RatingCount)
	}
}

func TestRate_OutOfRange(t *testing.T) {
	router, _ := newRatingRouter(t, memberProfile())

	for _, rating := range []int{-1, 6, 100} {
		w := doJSON(t, router, http.MethodPut, "/tools/tool-1/rating", gin.H{"rating": rating})
		if w.Code != http.StatusBadRequest {
			t.Errorf("rating %d: expected 400, got %d", rating, w.Code)
		}
	}
}

func TestRate_HiddenTool(t *testing.T) {
	router, mock := newRatingRouter(t, memberProfile())
	expectGetTool(mock, "tool-1", models.ToolStatusPending, "user-2")

	w := doJSON(t, router, http.MethodPut, "/tools/tool-1/rating", gin.H{"rating": 4})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for invisible tool, got %d", w.Code)
	}
}

func TestUnrate_MissingRatingIsNoOp(t *testing.T) {
	router, mock := newRatingRouter(t, memberProfile())
	expectGetTool(mock, "tool-1", models.ToolStatusApproved, "user-2")
	mock.ExpectExec("DELETE FROM tool_ratings").
		WithArgs("tool-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectAggregate(mock, "tool-1", 0, 0, 0)

	w := doJSON(t, router, http.MethodDelete, "/tools/tool-1/rating", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
