package main

import (
	"github.com/d0ngw/viewcount/cache"
	"github.com/d0ngw/viewcount/client"
	c "github.com/d0ngw/viewcount/common"
	"github.com/d0ngw/viewcount/counter"
	vhttp "github.com/d0ngw/viewcount/http"
	"github.com/d0ngw/viewcount/orm"
)

var (
	_ cache.RedisConfigurer = (*Config)(nil)
	_ orm.DBConfigurer      = (*Config)(nil)
)

// Config viewcount的配置
type Config struct {
	c.AppConfig `yaml:",inline"`
	HTTP        *vhttp.Config    `yaml:"http"`
	Redis       *cache.RedisConf `yaml:"redis"`
	DB          *orm.DBConfig    `yaml:"db"`
	Counter     *counter.Config  `yaml:"counter"`
	Client      *client.Config   `yaml:"client"`
}

// Parse implements Configurer
func (p *Config) Parse() error {
	if p.HTTP == nil {
		p.HTTP = &vhttp.Config{}
	}
	if p.Counter == nil {
		p.Counter = &counter.Config{}
	}
	if p.Client == nil {
		p.Client = &client.Config{}
	}
	return c.Parse(p)
}

// RedisConfig implements cache.RedisConfigurer
func (p *Config) RedisConfig() *cache.RedisConf {
	return p.Redis
}

// DBConfig implements orm.DBConfigurer
func (p *Config) DBConfig() *orm.DBConfig {
	return p.DB
}

func (p *Config) txRetries() int {
	if p.DB == nil {
		return 0
	}
	return p.DB.TxRetries
}

func loadConfig(confDir string, files ...string) (*Config, error) {
	conf := &Config{}
	if err := c.LoadConfig(conf, "", confDir, files...); err != nil {
		return nil, err
	}
	if err := conf.Parse(); err != nil {
		return nil, err
	}
	return conf, nil
}
