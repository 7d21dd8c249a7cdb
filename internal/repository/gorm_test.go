package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrDuplicate)
	assert.ErrorIs(t, translate(errDB), errDB)
}

func TestNoticeRepoCount(t *testing.T) {
	gdb, mock := newGormMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "notices"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := NewNoticeRepo(gdb).Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestUserRepoGetByIDNotFound(t *testing.T) {
	gdb, mock := newGormMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewUserRepo(gdb).GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTodoRepoDeleteForUserNothingDeleted(t *testing.T) {
	gdb, mock := newGormMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "todos" WHERE id = $1 AND user_id = $2`)).
		WithArgs("t1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := NewTodoRepo(gdb).DeleteForUser(context.Background(), "t1", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOverviewKey(t *testing.T) {
	assert.Equal(t, "backoffice:logs:overview", overviewKey("backoffice"))
	assert.Equal(t, "logs:overview", overviewKey(""))
}
