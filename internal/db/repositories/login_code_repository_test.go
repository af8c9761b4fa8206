package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/toolvault/toolvault/internal/db/models"
)

var loginCodeCols = []string{"id", "email", "code", "created_at", "expires_at", "consumed_at"}

func newLoginCodeRepo(t *testing.T) (*LoginCodeRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLoginCodeRepository(db), mock
}

func TestCreateLoginCode_SupersedesPrior(t *testing.T) {
	repo, mock := newLoginCodeRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE login_codes SET consumed_at").
		WithArgs("alice@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO login_codes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	code := &models.LoginCode{
		Email:     "alice@example.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	if err := repo.CreateLoginCode(context.Background(), code); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetActiveLoginCode_Found(t *testing.T) {
	repo, mock := newLoginCodeRepo(t)
	mock.ExpectQuery("SELECT.*FROM login_codes.*consumed_at IS NULL").
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(loginCodeCols).
			AddRow("code-1", "alice@example.com", "123456", time.Now(), time.Now().Add(10*time.Minute), nil))

	code, err := repo.GetActiveLoginCode(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code == nil || code.Code != "123456" {
		t.Fatalf("expected code 123456, got %v", code)
	}
	if !code.IsUsable() {
		t.Error("fresh code should be usable")
	}
}

func TestGetActiveLoginCode_None(t *testing.T) {
	repo, mock := newLoginCodeRepo(t)
	mock.ExpectQuery("SELECT.*FROM login_codes").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(loginCodeCols))

	code, err := repo.GetActiveLoginCode(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != nil {
		t.Errorf("expected nil code, got %v", code)
	}
}

func TestConsumeLoginCode(t *testing.T) {
	repo, mock := newLoginCodeRepo(t)
	mock.ExpectExec("UPDATE login_codes SET consumed_at.*consumed_at IS NULL").
		WithArgs("code-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ConsumeLoginCode(context.Background(), "code-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteStaleCodes(t *testing.T) {
	repo, mock := newLoginCodeRepo(t)
	mock.ExpectExec("DELETE FROM login_codes").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteStaleCodes(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("deleted = %d, want 4", n)
	}
}
