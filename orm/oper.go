package orm

import (
	"context"
	"database/sql"

	c "github.com/d0ngw/viewcount/common"
)

// TxFunc 在事务中处理的函数
type TxFunc func(tx *sql.Tx) error

// DoInTrans 在事务中执行fn,fn返回错误时回滚,否则提交
func (p *DBPool) DoInTrans(ctx context.Context, fn TxFunc) (err error) {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return NewDBError(err, "begin tx fail")
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			c.Errorf("rollback fail,err:%v", rerr)
		}
		return err
	}
	return tx.Commit()
}

// DoInTransRetry 在事务中执行fn,遇到死锁或锁等待超时时重新执行整个事务,最多重试retries次
func (p *DBPool) DoInTransRetry(ctx context.Context, retries int, fn TxFunc) (err error) {
	for i := 0; ; i++ {
		err = p.DoInTrans(ctx, fn)
		if err == nil || !IsConflict(err) || i >= retries {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.Warnf("tx conflict,retry %d,err:%v", i+1, err)
	}
}
