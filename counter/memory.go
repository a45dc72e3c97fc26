package counter

import (
	"context"
	"sync"
)

// MemoryStore keeps the totals in process,it implements both Store and Persist
type MemoryStore struct {
	mu     sync.Mutex
	totals map[string]int64
}

// NewMemoryStore create MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{totals: map[string]int64{}}
}

// Incr implements Store.Incr
func (p *MemoryStore) Incr(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, ErrEmptyID
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totals[id]++
	return p.totals[id], nil
}

// Get implements Store.Get
func (p *MemoryStore) Get(ctx context.Context, id string) (int64, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	total, ok := p.totals[id]
	return total, ok, nil
}

// Load implements Persist.Load
func (p *MemoryStore) Load(ctx context.Context, id string) (int64, bool, error) {
	return p.Get(ctx, id)
}

// Store implements Persist.Store
func (p *MemoryStore) Store(ctx context.Context, id string, total int64) error {
	if id == "" {
		return ErrEmptyID
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if total > p.totals[id] {
		p.totals[id] = total
	}
	return nil
}

// Len the count of ids
func (p *MemoryStore) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.totals)
}
