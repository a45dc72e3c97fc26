package cache

import (
	"context"
	"errors"
	"fmt"

	c "github.com/d0ngw/viewcount/common"
	"github.com/gomodule/redigo/redis"
)

// ErrNoGroup the group of param is not configured
var ErrNoGroup = errors.New("no redis group")

// RedisClient 按照Param的group和key选择Redis实例执行命令
type RedisClient struct {
	groups map[string][]*RedisServer
}

// NewRedisClient create RedisClient from a parsed RedisConf
func NewRedisClient(conf *RedisConf) (*RedisClient, error) {
	if conf == nil {
		return nil, errors.New("no redis conf")
	}
	if err := conf.Parse(); err != nil {
		return nil, err
	}
	return &RedisClient{groups: conf.groups}, nil
}

func (p *RedisClient) server(param Param) (*RedisServer, error) {
	servers := p.groups[param.Group()]
	if len(servers) == 0 {
		return nil, fmt.Errorf("%w:%s", ErrNoGroup, param.Group())
	}
	if len(servers) == 1 {
		return servers[0], nil
	}
	return servers[c.Fnv32Hashcode(param.Key())%len(servers)], nil
}

// Conn acquire the redis conn for param,the caller must close it
func (p *RedisClient) Conn(ctx context.Context, param Param) (redis.Conn, error) {
	server, err := p.server(param)
	if err != nil {
		return nil, err
	}
	if server.pool == nil {
		return nil, fmt.Errorf("no pool for server %s", server.ID)
	}
	return server.pool.GetContext(ctx)
}

// Do execute the redis command on the server of param
func (p *RedisClient) Do(ctx context.Context, param Param, cmd string, args ...interface{}) (reply interface{}, err error) {
	conn, err := p.Conn(ctx, param)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return redis.DoContext(conn, ctx, cmd, args...)
}

// Eval evaluate the lua script on the server of param,the first keys of keysAndArgs are the script keys
func (p *RedisClient) Eval(ctx context.Context, param Param, script *redis.Script, keysAndArgs ...interface{}) (reply interface{}, err error) {
	conn, err := p.Conn(ctx, param)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return script.Do(conn, keysAndArgs...)
}

// EvalEach evaluate the lua script on every server of group,the replies are in server order
func (p *RedisClient) EvalEach(ctx context.Context, group string, script *redis.Script, keysAndArgs ...interface{}) ([]interface{}, error) {
	servers := p.groups[group]
	if len(servers) == 0 {
		return nil, fmt.Errorf("%w:%s", ErrNoGroup, group)
	}
	replies := make([]interface{}, 0, len(servers))
	for _, server := range servers {
		conn, err := server.pool.GetContext(ctx)
		if err != nil {
			return replies, err
		}
		reply, err := script.Do(conn, keysAndArgs...)
		conn.Close()
		if err != nil {
			return replies, fmt.Errorf("eval on %s fail,err:%w", server.ID, err)
		}
		replies = append(replies, reply)
	}
	return replies, nil
}

// GetInt64 get the int64 value of param,ok is false when the key does not exist
func (p *RedisClient) GetInt64(ctx context.Context, param Param) (v int64, ok bool, err error) {
	v, err = redis.Int64(p.Do(ctx, param, "GET", param.Key()))
	if errors.Is(err, redis.ErrNil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// Ping ping all the servers
func (p *RedisClient) Ping(ctx context.Context) error {
	for groupID, servers := range p.groups {
		for _, server := range servers {
			conn, err := server.pool.GetContext(ctx)
			if err != nil {
				return fmt.Errorf("ping %s@%s fail,err:%w", server.ID, groupID, err)
			}
			_, err = redis.DoContext(conn, ctx, "PING")
			conn.Close()
			if err != nil {
				return fmt.Errorf("ping %s@%s fail,err:%w", server.ID, groupID, err)
			}
		}
	}
	return nil
}

// Close close all the pools
func (p *RedisClient) Close() error {
	var firstErr error
	for _, servers := range p.groups {
		for _, server := range servers {
			if err := server.pool.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
