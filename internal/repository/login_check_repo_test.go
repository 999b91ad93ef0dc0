package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLoginCheckUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoginCheckRepo(db)

	mock.ExpectExec("INSERT INTO `login_checks` .*ON DUPLICATE KEY UPDATE `login_check`=VALUES\\(`login_check`\\)").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SetLoginCheck(context.Background(), "alice@example.com", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsLoggedInWithoutRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoginCheckRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `login_checks` WHERE username = ?")).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ok, err := repo.IsLoggedIn(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuditLog(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `audit_logs`")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id := uint(3)
	require.NoError(t, repo.CreateAuditLog(context.Background(), &id, "member_login", "Member alice logged in"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
