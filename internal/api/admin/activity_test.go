package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/db/repositories"
)

var activityCols = []string{"id", "user_id", "action", "resource_type", "resource_id", "details", "user_agent", "created_at"}

func newActivityRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewActivityHandlers(repositories.NewAuditRepository(db))
	router := gin.New()
	router.GET("/admin/activity", h.ListActivity)
	return router, mock
}

func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestListActivity(t *testing.T) {
	router, mock := newActivityRouter(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activity_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT.*FROM activity_logs.*ORDER BY created_at DESC").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(activityCols).
			AddRow("log-1", "user-1", string(models.ActionCreateTool), string(models.ResourceTool), "tool-1", []byte(`{"name":"Copilot"}`), nil, time.Now()))

	w := get(t, router, "/admin/activity")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Entries []models.ActivityLog `json:"entries"`
		Total   int                  `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Entries) != 1 {
		t.Fatalf("total = %d, entries = %d", resp.Total, len(resp.Entries))
	}
	if resp.Entries[0].Action != models.ActionCreateTool {
		t.Errorf("action = %s", resp.Entries[0].Action)
	}
}

func TestListActivity_FiltersByAction(t *testing.T) {
	router, mock := newActivityRouter(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activity_logs`).
		WithArgs(string(models.ActionLogin)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT.*FROM activity_logs").
		WithArgs(string(models.ActionLogin), 50, 0).
		WillReturnRows(sqlmock.NewRows(activityCols))

	w := get(t, router, "/admin/activity?action=login")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListActivity_RejectsUnknownAction(t *testing.T) {
	router, _ := newActivityRouter(t)

	w := get(t, router, "/admin/activity?action=made_up")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestListActivity_RejectsBadDate(t *testing.T) {
	router, _ := newActivityRouter(t)

	w := get(t, router, "/admin/activity?start_date=yesterday")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestListActivity_DateRange(t *testing.T) {
	router, mock := newActivityRouter(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activity_logs`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT.*FROM activity_logs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 50, 0).
		WillReturnRows(sqlmock.NewRows(activityCols))

	w := get(t, router, "/admin/activity?start_date=2026-08-01T00:00:00Z&end_date=2026-08-28T00:00:00Z")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
