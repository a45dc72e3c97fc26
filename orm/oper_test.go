package orm

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) (*DBPool, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDBPoolWithDB(db), mock
}

func TestDoInTrans(t *testing.T) {
	pool, mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE t").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := pool.DoInTrans(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE t SET a = 1")
		return err
	})
	assert.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")
	err = pool.DoInTrans(context.Background(), func(tx *sql.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDoInTransRetry(t *testing.T) {
	pool, mock := newMockPool(t)
	deadlock := &mysql.MySQLError{Number: ErLockDeadlock, Message: "Deadlock found"}

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := pool.DoInTransRetry(context.Background(), 3, func(tx *sql.Tx) error {
		calls++
		if calls == 1 {
			return deadlock
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectRollback()
	calls = 0
	err = pool.DoInTransRetry(context.Background(), 1, func(tx *sql.Tx) error {
		calls++
		return deadlock
	})
	assert.True(t, IsConflict(err))
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(&mysql.MySQLError{Number: ErLockWaitTimeout}))
	assert.False(t, IsConflict(&mysql.MySQLError{Number: ErDupEntry}))
	assert.True(t, IsDupEntry(NewDBError(&mysql.MySQLError{Number: ErDupEntry}, "insert")))
	assert.False(t, IsConflict(errors.New("other")))
}

func TestDBConfig(t *testing.T) {
	conf := &DBConfig{User: "root", Pass: "123456", URL: "127.0.0.1:3306", Schema: "blog"}
	require.NoError(t, conf.Parse())
	assert.Equal(t, "utf8mb4", conf.Charset)
	assert.Equal(t, 3, conf.TxRetries)
	dsn := conf.DSN()
	assert.True(t, strings.HasPrefix(dsn, "root:123456@tcp(127.0.0.1:3306)/blog?"))
	assert.Contains(t, dsn, "charset=utf8mb4")

	assert.Error(t, (&DBConfig{Schema: "a"}).Parse())
	assert.Error(t, (&DBConfig{URL: "a"}).Parse())
	_, err := (&DBConfig{URL: "a", Schema: "b"}).NewDBPool()
	assert.Error(t, err)
}
