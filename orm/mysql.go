package orm

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQL错误码
const (
	ErLockWaitTimeout uint16 = 1205
	ErLockDeadlock    uint16 = 1213
	ErDupEntry        uint16 = 1062
)

// DSN build mysql dsn from config
func (p *DBConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.User = p.User
	mc.Passwd = p.Pass
	mc.Net = "tcp"
	mc.Addr = p.URL
	mc.DBName = p.Schema
	mc.ParseTime = true
	mc.Loc = time.Local
	if p.Charset != "" {
		mc.Params = map[string]string{"charset": p.Charset}
	}
	return mc.FormatDSN()
}

// NewDBPool 构建MySql数据库连接池
func (p *DBConfig) NewDBPool() (*DBPool, error) {
	if p == nil {
		return nil, NewDBError(nil, "not found config")
	}
	if len(p.User) == 0 || len(p.URL) == 0 || len(p.Schema) == 0 {
		return nil, NewDBError(nil, "invalid config")
	}

	db, err := sql.Open("mysql", p.DSN())
	if err != nil {
		return nil, NewDBError(err, "can't open connection")
	}
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetMaxOpenConns(p.MaxConn)
	if p.MaxTimeSecond > 0 {
		db.SetConnMaxLifetime(time.Duration(p.MaxTimeSecond) * time.Second)
	}
	return &DBPool{DB: db}, nil
}

// IsConflict 是否是可以重试的事务冲突错误
func IsConflict(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == ErLockDeadlock || merr.Number == ErLockWaitTimeout
	}
	return false
}

// IsDupEntry 是否是唯一键冲突
func IsDupEntry(err error) bool {
	var merr *mysql.MySQLError
	return errors.As(err, &merr) && merr.Number == ErDupEntry
}
