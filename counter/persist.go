package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/d0ngw/viewcount/cache"
	c "github.com/d0ngw/viewcount/common"
	"github.com/gomodule/redigo/redis"
)

// PersistStore use redis as the live counter and Persist as the durable copy.
// Every Incr records the counter key in a sync set,Syncer writes the dirty totals back to Persist.
type PersistStore struct {
	client     *cache.RedisClient
	persist    Persist
	cacheParam *cache.ParamConf
	slotsCount int
	now        func() time.Time
}

// NewPersistStore create PersistStore,slotsCount is the count of sync sets
func NewPersistStore(client *cache.RedisClient, persist Persist, cacheParam *cache.ParamConf, slotsCount int) (*PersistStore, error) {
	if c.HasNil(client, persist, cacheParam) {
		return nil, errors.New("client,persist and cacheParam must be set")
	}
	if slotsCount <= 0 {
		slotsCount = 1
	}
	return &PersistStore{
		client:     client,
		persist:    persist,
		cacheParam: cacheParam,
		slotsCount: slotsCount,
		now:        time.Now,
	}, nil
}

// Incr implements Store.Incr
func (p *PersistStore) Incr(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, ErrEmptyID
	}
	counterKey := p.counterKey(id)
	param := p.cacheParam.NewParamKey(counterKey)
	syncSetKey := p.syncSetKey(counterKey)

	exist, total, err := p.incrReply(p.client.Eval(ctx, param, incrScript, param.Key(), syncSetKey, p.nowMillis(), 0, 0))
	if err != nil {
		return 0, err
	}
	if exist == LUATRUE {
		return total, nil
	}

	//redis中没有,从Persist中加载后初始化再增加
	origin, _, err := p.persist.Load(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("load %s fail,err:%w", id, err)
	}
	exist, total, err = p.incrReply(p.client.Eval(ctx, param, incrScript, param.Key(), syncSetKey, p.nowMillis(), 1, origin))
	if err != nil {
		return 0, err
	}
	if exist != LUATRUE {
		return 0, fmt.Errorf("incr %s fail after init", id)
	}
	return total, nil
}

// Get implements Store.Get,falls back to Persist without filling redis
func (p *PersistStore) Get(ctx context.Context, id string) (int64, bool, error) {
	total, ok, err := p.client.GetInt64(ctx, p.cacheParam.NewParamKey(p.counterKey(id)))
	if err != nil {
		return 0, false, err
	}
	if ok {
		return total, true, nil
	}
	return p.persist.Load(ctx, id)
}

// counterKey is relative to cacheParam's prefix
func (p *PersistStore) counterKey(id string) string {
	return "v:" + id
}

func (p *PersistStore) idOfKey(key string) (string, bool) {
	return strings.CutPrefix(key, p.cacheParam.KeyPrefix()+"v:")
}

func (p *PersistStore) syncSetKey(counterKey string) string {
	return p.syncSetKeyOfSlot(c.Fnv32Hashcode(counterKey) % p.slotsCount)
}

func (p *PersistStore) syncSetKeyOfSlot(slot int) string {
	return p.cacheParam.KeyPrefix() + "z.sync:" + strconv.Itoa(slot)
}

func (p *PersistStore) nowMillis() int64 {
	return c.UnixMills(p.now())
}

func (p *PersistStore) incrReply(redisReply interface{}, redisErr error) (exist int64, total int64, err error) {
	reply, err := redis.Int64s(redisReply, redisErr)
	if err != nil {
		return LUAFALSE, 0, err
	}
	if len(reply) < 2 {
		return LUAFALSE, 0, fmt.Errorf("bad reply length:%d", len(reply))
	}
	return reply[0], reply[1], nil
}

// popDirty pop at most limit dirty totals of slot which were changed before maxMillis
func (p *PersistStore) popDirty(ctx context.Context, slot int, maxMillis int64, limit int) (map[string]int64, error) {
	replies, err := p.client.EvalEach(ctx, p.cacheParam.Group(), popSyncScript, p.syncSetKeyOfSlot(slot), maxMillis, limit)
	dirty := map[string]int64{}
	for _, reply := range replies {
		values, verr := redis.Strings(reply, nil)
		if verr != nil {
			return dirty, verr
		}
		for i := 0; i+1 < len(values); i += 2 {
			id, ok := p.idOfKey(values[i])
			if !ok {
				c.Warnf("unexpected counter key %s", values[i])
				continue
			}
			total, perr := strconv.ParseInt(values[i+1], 10, 64)
			if perr != nil {
				c.Errorf("parse total of %s fail,err:%v", values[i], perr)
				continue
			}
			dirty[id] = total
		}
	}
	return dirty, err
}

// markDirty put id back to its sync set
func (p *PersistStore) markDirty(ctx context.Context, id string) error {
	counterKey := p.counterKey(id)
	param := p.cacheParam.NewParamKey(counterKey)
	_, err := p.client.Do(ctx, param, "ZADD", p.syncSetKey(counterKey), p.nowMillis(), param.Key())
	return err
}
