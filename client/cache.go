package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/d0ngw/viewcount/cache"
	c "github.com/d0ngw/viewcount/common"
	"github.com/d0ngw/viewcount/views"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

// Cache 浏览总数的缓存,Get立即返回最后已知的值,同时在后台重新读取
type Cache struct {
	reader  Reader
	values  *ttlcache.Cache[string, views.Total]
	group   singleflight.Group
	timeout time.Duration

	mu      sync.Mutex
	subs    map[string]map[uint64]func(views.Total)
	nextSub uint64
	bg      sync.WaitGroup
}

// CacheOption configures Cache
type CacheOption func(*Cache)

// WithCapacity 最多缓存capacity个标识,超出时淘汰最久未使用的
func WithCapacity(capacity uint64) CacheOption {
	return func(p *Cache) {
		if capacity > 0 {
			p.values = ttlcache.New[string, views.Total](
				ttlcache.WithCapacity[string, views.Total](capacity),
			)
		}
	}
}

// WithRevalidateTimeout 后台读取的超时
func WithRevalidateTimeout(timeout time.Duration) CacheOption {
	return func(p *Cache) {
		p.timeout = timeout
	}
}

// NewCache create Cache
func NewCache(reader Reader, opts ...CacheOption) *Cache {
	p := &Cache{
		reader:  reader,
		values:  ttlcache.New[string, views.Total](),
		timeout: 5 * time.Second,
		subs:    map[string]map[uint64]func(views.Total){},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Peek returns the cached value without revalidation
func (p *Cache) Peek(id string) (views.Total, bool) {
	item := p.values.Get(id)
	if item == nil {
		return views.Total{}, false
	}
	return item.Value(), true
}

// Get 返回缓存中的值(如果有),并在后台重新读取,同一个id的并发读取只会发出一次请求
func (p *Cache) Get(ctx context.Context, id string) (views.Total, bool) {
	total, ok := p.Peek(id)

	p.bg.Add(1)
	go func() {
		defer p.bg.Done()
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		if _, err := p.Revalidate(bgCtx, id); err != nil {
			c.Warnf("revalidate %q fail,err:%v", id, err)
		}
	}()
	return total, ok
}

// Revalidate 读取最新的值并更新缓存,读取失败时保留缓存中的值
func (p *Cache) Revalidate(ctx context.Context, id string) (views.Total, error) {
	v, err, _ := p.group.Do(id, func() (interface{}, error) {
		total, err := p.reader.Read(ctx, id)
		if err != nil {
			return nil, err
		}
		p.set(id, total)
		return total, nil
	})
	if err != nil {
		return views.Total{}, err
	}
	return v.(views.Total), nil
}

// Set 设置缓存的值,值变化时通知订阅者
func (p *Cache) Set(id string, total views.Total) {
	p.set(id, total)
}

func (p *Cache) set(id string, total views.Total) {
	p.mu.Lock()
	if old, ok := p.Peek(id); ok && old == total {
		p.mu.Unlock()
		return
	}
	p.values.Set(id, total, ttlcache.NoTTL)
	fns := make([]func(views.Total), 0, len(p.subs[id]))
	for _, fn := range p.subs[id] {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(total)
	}
}

// Subscribe 订阅id的值变化,返回取消订阅的函数
func (p *Cache) Subscribe(id string, fn func(views.Total)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextSub++
	subID := p.nextSub
	if p.subs[id] == nil {
		p.subs[id] = map[uint64]func(views.Total){}
	}
	p.subs[id][subID] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs[id], subID)
			if len(p.subs[id]) == 0 {
				delete(p.subs, id)
			}
		})
	}
}

func (p *Cache) subscribed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	return ids
}

// Focus 重新读取所有被订阅的id,在所有读取完成后返回
func (p *Cache) Focus(ctx context.Context) {
	var wg sync.WaitGroup
	for _, id := range p.subscribed() {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := p.Revalidate(ctx, id); err != nil {
				c.Warnf("revalidate %q on focus fail,err:%v", id, err)
			}
		}(id)
	}
	wg.Wait()
}

// WatchFocus 每收到一次focus事件调用一次Focus,直到ctx结束或events被关闭
func (p *Cache) WatchFocus(ctx context.Context, events <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			p.Focus(ctx)
		}
	}
}

// Wait 等待后台的读取完成
func (p *Cache) Wait() {
	p.bg.Wait()
}

type snapshotEntry struct {
	Total int64 `codec:"t"`
	Valid bool  `codec:"v"`
}

// Save 以msgpack格式保存缓存的值
func (p *Cache) Save(w io.Writer) error {
	snapshot := map[string]snapshotEntry{}
	for id, item := range p.values.Items() {
		total := item.Value()
		snapshot[id] = snapshotEntry{Total: total.Value, Valid: total.Valid}
	}
	return cache.MsgPackEncode(w, snapshot)
}

// Load 加载Save保存的值
func (p *Cache) Load(r io.Reader) error {
	snapshot := map[string]snapshotEntry{}
	if err := cache.MsgPackDecode(r, &snapshot); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	for id, entry := range snapshot {
		p.set(id, views.Total{Value: entry.Total, Valid: entry.Valid})
	}
	return nil
}
