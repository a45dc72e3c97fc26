// Package orm 提供MySQL连接池及事务操作
package orm

import (
	"database/sql"
	"fmt"
)

// DBError 数据库操作错误
type DBError struct {
	Msg string
	Err error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("DBError msg:%s,err:%v", e.Msg, e.Err)
}

// Unwrap returns the cause
func (e *DBError) Unwrap() error {
	return e.Err
}

// NewDBError 构建数据库操作错误
func NewDBError(err error, msg string) *DBError {
	return &DBError{Msg: msg, Err: err}
}

// DBPool 数据库连接池
type DBPool struct {
	DB *sql.DB
}

// NewDBPoolWithDB wrap an opened db
func NewDBPoolWithDB(db *sql.DB) *DBPool {
	return &DBPool{DB: db}
}

// Close close the pool
func (p *DBPool) Close() error {
	return p.DB.Close()
}
