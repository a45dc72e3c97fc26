package counter

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/d0ngw/viewcount/orm"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	selectForUpdate = regexp.QuoteMeta("SELECT `total` FROM `view_count` WHERE `id` = ? FOR UPDATE")
	selectTotal     = regexp.QuoteMeta("SELECT `total` FROM `view_count` WHERE `id` = ?")
	insertRow       = regexp.QuoteMeta("INSERT INTO `view_count` (`id`,`total`,`ut`) VALUES (?,?,?)")
	updateRow       = regexp.QuoteMeta("UPDATE `view_count` SET `total` = ?,`ut` = ? WHERE `id` = ?")
	upsertRow       = regexp.QuoteMeta("ON DUPLICATE KEY UPDATE `total` = GREATEST(`total`,VALUES(`total`))")
)

func newMockDBStore(t *testing.T) (*DBStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := NewDBStore(orm.NewDBPoolWithDB(db), "", 2)
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1000) }
	return store, mock
}

func TestDBStoreIncr(t *testing.T) {
	store, mock := newMockDBStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs("hello-world").WillReturnRows(sqlmock.NewRows([]string{"total"}))
	mock.ExpectExec(insertRow).WithArgs("hello-world", 1, int64(1000)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	total, err := store.Incr(ctx, "hello-world")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs("hello-world").WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(1))
	mock.ExpectExec(updateRow).WithArgs(int64(2), int64(1000), "hello-world").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	total, err = store.Incr(ctx, "hello-world")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStoreIncrConflict(t *testing.T) {
	store, mock := newMockDBStore(t)
	ctx := context.Background()

	//并发的首次访问,插入时主键冲突
	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs("race").WillReturnRows(sqlmock.NewRows([]string{"total"}))
	mock.ExpectExec(insertRow).WillReturnError(&mysql.MySQLError{Number: orm.ErDupEntry})
	mock.ExpectRollback()
	//死锁
	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs("race").WillReturnError(&mysql.MySQLError{Number: orm.ErLockDeadlock})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WithArgs("race").WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(7))
	mock.ExpectExec(updateRow).WithArgs(int64(8), int64(1000), "race").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	total, err := store.Incr(ctx, "race")
	require.NoError(t, err)
	assert.EqualValues(t, 8, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStoreGetAndStore(t *testing.T) {
	store, mock := newMockDBStore(t)
	ctx := context.Background()

	mock.ExpectQuery(selectTotal).WithArgs("never-viewed").WillReturnRows(sqlmock.NewRows([]string{"total"}))
	total, ok, err := store.Get(ctx, "never-viewed")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 0, total)

	mock.ExpectQuery(selectTotal).WithArgs("x").WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(5))
	total, ok, err = store.Load(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 5, total)

	mock.ExpectExec(upsertRow).WithArgs("x", int64(9), int64(1000)).WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, store.Store(ctx, "x", 9))

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `view_count` (`id` VARBINARY(256) NOT NULL,")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.CreateTable(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}
