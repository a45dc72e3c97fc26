package counter

import (
	"fmt"
	"time"

	"github.com/d0ngw/viewcount/cache"
	c "github.com/d0ngw/viewcount/common"
	"github.com/d0ngw/viewcount/orm"
)

// Store kinds
const (
	KindMemory  = "memory"
	KindRedis   = "redis"
	KindMySQL   = "mysql"
	KindPersist = "persist"
)

// Config 计数存储配置
type Config struct {
	Store        string `yaml:"store"`         //memory,redis,mysql,persist
	RedisGroup   string `yaml:"redis_group"`   //Redis组
	KeyPrefix    string `yaml:"key_prefix"`    //Redis key前缀
	Table        string `yaml:"table"`         //MySQL表名
	SyncSlots    int    `yaml:"sync_slots"`    //persist模式的同步集合个数
	SyncInterval int    `yaml:"sync_interval"` //persist模式的同步间隔,单位毫秒
	SyncBatch    int    `yaml:"sync_batch"`    //每次同步的最大个数
}

// Parse implements Configurer
func (p *Config) Parse() error {
	if p == nil {
		return nil
	}
	switch p.Store {
	case "":
		p.Store = KindMemory
	case KindMemory, KindRedis, KindMySQL, KindPersist:
	default:
		return fmt.Errorf("unknown counter store %s", p.Store)
	}
	if p.RedisGroup == "" {
		p.RedisGroup = "views"
	}
	if p.KeyPrefix == "" {
		p.KeyPrefix = "vc:"
	}
	if p.Table == "" {
		p.Table = DefaultTable
	}
	if p.SyncSlots <= 0 {
		p.SyncSlots = 16
	}
	if p.SyncInterval <= 0 {
		p.SyncInterval = 5000
	}
	return nil
}

// NeedRedis whether the store needs redis
func (p *Config) NeedRedis() bool {
	return p.Store == KindRedis || p.Store == KindPersist
}

// NeedDB whether the store needs mysql
func (p *Config) NeedDB() bool {
	return p.Store == KindMySQL || p.Store == KindPersist
}

// NewStore create the configured Store,the returned services must be managed by the caller.
// redisClient and dbPool may be nil when the store kind does not need them.
func NewStore(conf *Config, redisClient *cache.RedisClient, dbPool *orm.DBPool, txRetries int) (Store, []c.Service, error) {
	if conf == nil {
		return nil, nil, fmt.Errorf("no counter config")
	}
	if conf.NeedRedis() && redisClient == nil {
		return nil, nil, fmt.Errorf("store %s needs redis", conf.Store)
	}
	if conf.NeedDB() && dbPool == nil {
		return nil, nil, fmt.Errorf("store %s needs mysql", conf.Store)
	}

	cacheParam := cache.NewParamConf(conf.RedisGroup, conf.KeyPrefix, 0)
	switch conf.Store {
	case KindMemory:
		return NewMemoryStore(), nil, nil
	case KindRedis:
		s, err := NewRedisStore(redisClient, cacheParam)
		return s, nil, err
	case KindMySQL:
		s, err := NewDBStore(dbPool, conf.Table, txRetries)
		return s, nil, err
	case KindPersist:
		dbStore, err := NewDBStore(dbPool, conf.Table, txRetries)
		if err != nil {
			return nil, nil, err
		}
		s, err := NewPersistStore(redisClient, dbStore, cacheParam, conf.SyncSlots)
		if err != nil {
			return nil, nil, err
		}
		syncer := NewSyncer("counter-syncer", s, time.Duration(conf.SyncInterval)*time.Millisecond, conf.SyncBatch)
		return s, []c.Service{syncer}, nil
	}
	return nil, nil, fmt.Errorf("unknown counter store %s", conf.Store)
}
