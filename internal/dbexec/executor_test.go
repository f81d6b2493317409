package dbexec

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardExecutor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectExec("UPDATE t").WillReturnResult(sqlmock.NewResult(0, 2))

	exec := NewStandardExecutor(db)
	rows, err := exec.QueryContext(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, rows.Close())

	result, err := exec.ExecContext(context.Background(), "UPDATE t SET x = 1")
	require.NoError(t, err)
	affected, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStandardExecutor_QueryErrorReturnsNilRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectQuery("SELECT 1").WillReturnError(boom)

	rows, err := NewStandardExecutor(db).QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, rows)
}

func TestStandardExecutor_NilDB(t *testing.T) {
	exec := NewStandardExecutor(nil)
	_, err := exec.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	_, err = exec.ExecContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestTimedExecutor_Forwards(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 1))

	timed, err := NewTimedExecutor(NewStandardExecutor(db))
	require.NoError(t, err)

	_, err = timed.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = timed.ExecContext(context.Background(), "DELETE FROM t")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
