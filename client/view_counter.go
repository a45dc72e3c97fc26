package client

import (
	"context"
	"sync"
	"time"

	c "github.com/d0ngw/viewcount/common"
	"github.com/d0ngw/viewcount/views"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder 还没有得到浏览数时显示
const Placeholder = "–––"

// ViewCounter 展示一篇文章的浏览数,每次Mount增加一次浏览
type ViewCounter struct {
	id          string
	incr        Incrementer
	cache       *Cache
	printer     *message.Printer
	incrTimeout time.Duration

	mu          sync.Mutex
	mounted     bool
	observed    bool
	current     views.Total
	unsubscribe func()
	updates     chan string
	pending     sync.WaitGroup
}

// NewViewCounter create ViewCounter,tag is the locale of the number format
func NewViewCounter(id string, incr Incrementer, cache *Cache, tag language.Tag) *ViewCounter {
	return &ViewCounter{
		id:          id,
		incr:        incr,
		cache:       cache,
		printer:     message.NewPrinter(tag),
		incrTimeout: 5 * time.Second,
		updates:     make(chan string, 16),
	}
}

// ParseLocale parse the locale,falls back to English
func ParseLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		c.Warnf("invalid locale %q,use en", locale)
		return language.English
	}
	return tag
}

// Mount 发出一次浏览的增加请求(不等待结果),订阅缓存并显示缓存中的值.
// 已经Mount的重复调用不做任何处理
func (p *ViewCounter) Mount(ctx context.Context) {
	p.mu.Lock()
	if p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = true
	p.unsubscribe = p.cache.Subscribe(p.id, func(views.Total) { p.refresh() })
	p.mu.Unlock()

	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		incrCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.incrTimeout)
		defer cancel()
		if _, err := p.incr.Increment(incrCtx, p.id); err != nil {
			c.Warnf("increment views of %q fail,err:%v", p.id, err)
		}
	}()

	//后台的重新验证可能已经写入了更新的值,总是显示缓存中当前的值
	if _, ok := p.cache.Get(ctx, p.id); ok {
		p.refresh()
	}
}

// Unmount 取消订阅,已经发出的增加请求会继续完成
func (p *ViewCounter) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted {
		return
	}
	p.unsubscribe()
	p.unsubscribe = nil
	p.mounted = false
}

// refresh 在锁内读取缓存的当前值,后执行的refresh总是看到最新的值
func (p *ViewCounter) refresh() {
	p.mu.Lock()
	total, ok := p.cache.Peek(p.id)
	if !ok {
		p.mu.Unlock()
		return
	}
	if p.observed && p.current == total {
		p.mu.Unlock()
		return
	}
	p.observed = true
	p.current = total
	text := p.render()
	p.mu.Unlock()

	select {
	case p.updates <- text:
	default:
		c.Debugf("drop update %s of %q", text, p.id)
	}
}

// Render 返回当前显示的内容,没有得到浏览数时返回Placeholder
func (p *ViewCounter) Render() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render()
}

func (p *ViewCounter) render() string {
	if !p.observed || !p.current.Valid {
		return Placeholder
	}
	return p.printer.Sprintf("%d", p.current.Value)
}

// Updates 每次显示内容变化时收到新的内容
func (p *ViewCounter) Updates() <-chan string {
	return p.updates
}

// Wait 等待已经发出的增加请求完成
func (p *ViewCounter) Wait() {
	p.pending.Wait()
}
