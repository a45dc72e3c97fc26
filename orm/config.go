package orm

import (
	"fmt"

	c "github.com/d0ngw/viewcount/common"
)

// DBConfig 数据库配置
type DBConfig struct {
	User          string `yaml:"user"`
	Pass          string `yaml:"pass"`
	URL           string `yaml:"url"` //host:port
	Schema        string `yaml:"schema"`
	MaxConn       int    `yaml:"maxConn"`
	MaxIdle       int    `yaml:"maxIdle"`
	MaxTimeSecond int    `yaml:"maxTimeSecond"` //连接的最长存活时间
	Charset       string `yaml:"charset"`
	TxRetries     int    `yaml:"txRetries"` //事务冲突(死锁,锁等待超时)时的重试次数
}

// Parse implements DBConfigurer
func (p *DBConfig) Parse() error {
	if p == nil {
		c.Warnf("no db conf")
		return nil
	}
	if p.URL == "" {
		return fmt.Errorf("need url")
	}
	if p.Schema == "" {
		return fmt.Errorf("need schema")
	}
	if p.Charset == "" {
		p.Charset = "utf8mb4"
	}
	if p.TxRetries <= 0 {
		p.TxRetries = 3
	}
	return nil
}

// DBConfig implements DBConfigurer
func (p *DBConfig) DBConfig() *DBConfig {
	return p
}

// DBConfigurer DB配置器
type DBConfigurer interface {
	c.Configurer
	DBConfig() *DBConfig
}
