package counter

import (
	"context"
	"errors"

	"github.com/d0ngw/viewcount/cache"
	"github.com/gomodule/redigo/redis"
)

// RedisStore keeps each total as a redis string,INCR is the atomic read-modify-write
type RedisStore struct {
	client     *cache.RedisClient
	cacheParam *cache.ParamConf
}

// NewRedisStore create RedisStore,keys are cacheParam.KeyPrefix()+"v:"+id
func NewRedisStore(client *cache.RedisClient, cacheParam *cache.ParamConf) (*RedisStore, error) {
	if client == nil || cacheParam == nil {
		return nil, errors.New("client and cacheParam must be set")
	}
	return &RedisStore{client: client, cacheParam: cacheParam.NewWithKeyPrefix("v:")}, nil
}

// Incr implements Store.Incr
func (p *RedisStore) Incr(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, ErrEmptyID
	}
	param := p.cacheParam.NewParamKey(id)
	return redis.Int64(p.client.Do(ctx, param, "INCR", param.Key()))
}

// Get implements Store.Get
func (p *RedisStore) Get(ctx context.Context, id string) (int64, bool, error) {
	return p.client.GetInt64(ctx, p.cacheParam.NewParamKey(id))
}
