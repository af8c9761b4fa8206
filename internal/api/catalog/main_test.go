package catalog

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/toolvault/toolvault/internal/db/models"
	"github.com/toolvault/toolvault/internal/middleware"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("TV_JWT_SECRET", "test-jwt-secret-that-is-32-chars!!")
	os.Exit(m.Run())
}

var toolCols = []string{
	"id", "name", "description", "category_id", "website_url",
	"documentation_url", "video_url", "difficulty_level", "pricing_model",
	"tags", "status", "approved_by", "approved_at", "rejection_reason",
	"created_by", "created_at", "updated_at", "roles",
}

var categoryCols = []string{"id", "name", "description", "color", "created_at", "updated_at"}
var commentCols = []string{"id", "tool_id", "user_id", "content", "created_at", "updated_at", "author_name"}
var aggregateCols = []string{"avg", "ratings", "comments"}

func memberProfile() *models.Profile {
	return &models.Profile{ID: "user-1", Email: "alice@example.com", FullName: "Alice", Role: models.RoleBackend}
}

func ownerProfile() *models.Profile {
	return &models.Profile{ID: "owner-1", Email: "boss@example.com", FullName: "Boss", Role: models.RoleOwner}
}

// asUser injects an authenticated profile the way AuthMiddleware would.
func asUser(profile *models.Profile) gin.HandlerFunc {
	return func(c *gin.Context) {
		if profile != nil {
			c.Set(middleware.ContextUserKey, profile)
			c.Set(middleware.ContextUserIDKey, profile.ID)
		}
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// toolRow builds one scan row for a tool with the given status and creator.
func toolRow(id string, status models.ToolStatus, createdBy string) []driverValue {
	now := time.Now()
	return []driverValue{
		id, "Copilot", "Pair programmer", nil, nil,
		nil, nil, "beginner", "paid",
		"{}", string(status), nil, nil, nil,
		createdBy, now, now, "{backend}",
	}
}

type driverValue = driver.Value

func expectGetTool(mock sqlmock.Sqlmock, id string, status models.ToolStatus, createdBy string) {
	mock.ExpectQuery("SELECT.*FROM ai_tools t.*WHERE t.id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(toolCols).AddRow(toolRow(id, status, createdBy)...))
}

func expectAggregate(mock sqlmock.Sqlmock, id string, avg float64, ratings, comments int) {
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(aggregateCols).AddRow(avg, ratings, comments))
}
