package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/toolvault/toolvault/internal/db/models"
)

var toolCols = []string{
	"id", "name", "description", "category_id", "website_url",
	"documentation_url", "video_url", "difficulty_level", "pricing_model",
	"tags", "status", "approved_by", "approved_at", "rejection_reason",
	"created_by", "created_at", "updated_at", "roles",
}

func sampleToolRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows(toolCols).
		AddRow("tool-1", "Foo", "an ai tool", nil, nil,
			nil, nil, "beginner", "free",
			"{llm,codegen}", status, nil, nil, nil,
			"user-a", time.Now(), time.Now(), "{backend,qa}")
}

func newToolRepo(t *testing.T) (*ToolRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewToolRepository(db), mock
}

func TestGetToolByID_Found(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectQuery("SELECT.*FROM ai_tools.*WHERE t.id").
		WithArgs("tool-1").
		WillReturnRows(sampleToolRow("pending"))

	tool, err := repo.GetToolByID(context.Background(), "tool-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tool == nil {
		t.Fatal("expected tool, got nil")
	}
	if tool.Status != models.ToolStatusPending {
		t.Errorf("Status = %s, want pending", tool.Status)
	}
	if len(tool.Tags) != 2 || tool.Tags[0] != "llm" {
		t.Errorf("Tags = %v, want [llm codegen]", tool.Tags)
	}
	if len(tool.Roles) != 2 || tool.Roles[0] != models.RoleBackend {
		t.Errorf("Roles = %v, want [backend qa]", tool.Roles)
	}
}

func TestGetToolByID_NotFound(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectQuery("SELECT.*FROM ai_tools.*WHERE t.id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(toolCols))

	tool, err := repo.GetToolByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tool != nil {
		t.Errorf("expected nil tool, got %v", tool)
	}
}

func TestCreateTool_InsertsPendingWithRoleTags(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ai_tools").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO ai_tool_roles").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO ai_tool_roles").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tool := &models.Tool{
		Name:        "Foo",
		Description: "an ai tool",
		Difficulty:  models.DifficultyBeginner,
		Pricing:     models.PricingFree,
		CreatedBy:   "user-a",
		Roles:       []models.Role{models.RoleBackend, models.RoleQA},
		// Status deliberately preset wrong; CreateTool must force pending.
		Status: models.ToolStatusApproved,
	}

	if err := repo.CreateTool(context.Background(), tool); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tool.Status != models.ToolStatusPending {
		t.Errorf("Status = %s, want pending on create", tool.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateTool_RejectsInvalidRoleTag(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ai_tools").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	tool := &models.Tool{
		Name:       "Foo",
		Difficulty: models.DifficultyBeginner,
		Pricing:    models.PricingFree,
		CreatedBy:  "user-a",
		Roles:      []models.Role{"sysadmin"},
	}

	if err := repo.CreateTool(context.Background(), tool); err == nil {
		t.Error("expected error for invalid role tag")
	}
}

func TestUpdateTool_ReplacesRoleTags(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ai_tools").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM ai_tool_roles").
		WithArgs("tool-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO ai_tool_roles").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tool := &models.Tool{
		ID:         "tool-1",
		Name:       "Foo v2",
		Difficulty: models.DifficultyAdvanced,
		Pricing:    models.PricingPaid,
		Roles:      []models.Role{models.RolePM},
	}

	if err := repo.UpdateTool(context.Background(), tool); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSetToolStatus_Approve(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectExec("UPDATE ai_tools.*SET status").
		WithArgs("tool-1", string(models.ToolStatusApproved), "owner-1", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetToolStatus(context.Background(), "tool-1", models.ToolStatusApproved, "owner-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSetToolStatus_RejectWithReason(t *testing.T) {
	repo, mock := newToolRepo(t)
	reason := "duplicate of Bar"
	mock.ExpectExec("UPDATE ai_tools.*SET status").
		WithArgs("tool-1", string(models.ToolStatusRejected), "owner-1", sqlmock.AnyArg(), reason).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetToolStatus(context.Background(), "tool-1", models.ToolStatusRejected, "owner-1", &reason)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetToolStatus_PendingNotAllowed(t *testing.T) {
	repo, _ := newToolRepo(t)
	err := repo.SetToolStatus(context.Background(), "tool-1", models.ToolStatusPending, "owner-1", nil)
	if err == nil {
		t.Error("expected error: pending is the initial state only, never a moderation target")
	}
}

func TestListVisibleTools_FiltersInSQL(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM ai_tools").
		WithArgs("user-b", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT.*FROM ai_tools.*status = 'approved' OR t.created_by").
		WithArgs("user-b", false, 20, 0).
		WillReturnRows(sampleToolRow("approved"))

	tools, total, err := repo.ListVisibleTools(context.Background(), "user-b", false, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(tools) != 1 {
		t.Fatalf("got %d tools (total %d), want 1", len(tools), total)
	}
	if tools[0].Status != models.ToolStatusApproved {
		t.Errorf("Status = %s, want approved", tools[0].Status)
	}
}

func TestGetToolAggregate_NoRatings(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("tool-1").
		WillReturnRows(sqlmock.NewRows([]string{"avg", "ratings", "comments"}).AddRow(0, 0, 0))

	agg, err := repo.GetToolAggregate(context.Background(), "tool-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.AverageRating != 0 {
		t.Errorf("AverageRating = %v, want 0 (never null or NaN)", agg.AverageRating)
	}
	if agg.RatingCount != 0 || agg.CommentCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", agg.RatingCount, agg.CommentCount)
	}
}

func TestGetToolAggregate_WithRatings(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("tool-1").
		WillReturnRows(sqlmock.NewRows([]string{"avg", "ratings", "comments"}).AddRow(4.5, 2, 3))

	agg, err := repo.GetToolAggregate(context.Background(), "tool-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.AverageRating != 4.5 || agg.RatingCount != 2 || agg.CommentCount != 3 {
		t.Errorf("aggregate = %+v, want avg 4.5, 2 ratings, 3 comments", agg)
	}
}

func TestDeleteTool(t *testing.T) {
	repo, mock := newToolRepo(t)
	mock.ExpectExec("DELETE FROM ai_tools WHERE id").
		WithArgs("tool-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteTool(context.Background(), "tool-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
