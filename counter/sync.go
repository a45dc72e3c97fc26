package counter

import (
	"context"
	"errors"
	"sync"
	"time"

	c "github.com/d0ngw/viewcount/common"
)

// Syncer periodically writes the dirty totals of PersistStore to its Persist
type Syncer struct {
	c.BaseService
	store    *PersistStore
	interval time.Duration
	batch    int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncer create Syncer
func NewSyncer(name string, store *PersistStore, interval time.Duration, batch int) *Syncer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Syncer{
		BaseService: c.BaseService{SName: name},
		store:       store,
		interval:    interval,
		batch:       batch,
	}
}

// Init implements Service.Init
func (p *Syncer) Init() error {
	if p.store == nil {
		return errors.New("no persist store")
	}
	return nil
}

// Start implements Service.Start
func (p *Syncer) Start() bool {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := p.Sync(ctx); err != nil && ctx.Err() == nil {
					c.Errorf("sync counters fail,err:%v", err)
				}
			}
		}
	}()
	return true
}

// Stop implements Service.Stop,flushes the remaining dirty totals before return
func (p *Syncer) Stop() bool {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	n, err := p.Sync(ctx)
	if err != nil {
		c.Errorf("final sync fail,err:%v", err)
		return false
	}
	c.Infof("final sync %d counters", n)
	return true
}

// Sync writes all dirty totals to Persist,returns the count of stored totals.
// A total failed to store is marked dirty again.
func (p *Syncer) Sync(ctx context.Context) (int, error) {
	var stored int
	maxMillis := p.store.nowMillis()
	for slot := 0; slot < p.store.slotsCount; slot++ {
		for {
			dirty, err := p.store.popDirty(ctx, slot, maxMillis, p.batch)
			n, storeErr := p.storeAll(ctx, dirty)
			stored += n
			if err != nil {
				return stored, err
			}
			if storeErr != nil {
				return stored, storeErr
			}
			if len(dirty) < p.batch {
				break
			}
		}
	}
	return stored, nil
}

func (p *Syncer) storeAll(ctx context.Context, dirty map[string]int64) (int, error) {
	var stored int
	var firstErr error
	for id, total := range dirty {
		if err := p.store.persist.Store(ctx, id, total); err != nil {
			c.Errorf("store counter %s fail,err:%v", id, err)
			if firstErr == nil {
				firstErr = err
			}
			if merr := p.store.markDirty(ctx, id); merr != nil {
				c.Errorf("mark %s dirty fail,err:%v", id, merr)
			}
			continue
		}
		stored++
	}
	return stored, firstErr
}
