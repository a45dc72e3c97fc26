package counter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/d0ngw/viewcount/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failPersist struct {
	*MemoryStore
	fail bool
}

func (p *failPersist) Store(ctx context.Context, id string, total int64) error {
	if p.fail {
		return errors.New("db down")
	}
	return p.MemoryStore.Store(ctx, id, total)
}

func newPersistStore(t *testing.T, persist Persist, mrs ...*miniredis.Miniredis) *PersistStore {
	store, err := NewPersistStore(newRedisClient(t, mrs...), persist, cache.NewParamConf("views", "vc:", 0), 4)
	require.NoError(t, err)
	return store
}

func TestPersistStore(t *testing.T) {
	persist := NewMemoryStore()
	store := newPersistStore(t, persist, miniredis.RunT(t))
	testStore(t, store)

	syncer := NewSyncer("sync", store, time.Hour, 2)
	require.NoError(t, syncer.Init())
	n, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, ok, err := persist.Load(context.Background(), "race")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 50, total)

	n, err = syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPersistStoreLoadFromPersist(t *testing.T) {
	ctx := context.Background()
	persist := NewMemoryStore()
	require.NoError(t, persist.Store(ctx, "old-post", 41))
	mr := miniredis.RunT(t)
	store := newPersistStore(t, persist, mr)

	total, ok, err := store.Get(ctx, "old-post")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 41, total)
	assert.False(t, mr.Exists("vc:v:old-post"))

	total, err = store.Incr(ctx, "old-post")
	require.NoError(t, err)
	assert.EqualValues(t, 42, total)
}

func TestPersistStoreShards(t *testing.T) {
	ctx := context.Background()
	persist := NewMemoryStore()
	store := newPersistStore(t, persist, miniredis.RunT(t), miniredis.RunT(t))

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		_, err := store.Incr(ctx, id)
		require.NoError(t, err)
	}
	n, err := NewSyncer("sync", store, time.Hour, 100).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(ids), n)
	assert.Equal(t, len(ids), persist.Len())
}

func TestSyncerStoreFail(t *testing.T) {
	ctx := context.Background()
	persist := &failPersist{MemoryStore: NewMemoryStore(), fail: true}
	store := newPersistStore(t, persist, miniredis.RunT(t))

	_, err := store.Incr(ctx, "x")
	require.NoError(t, err)

	syncer := NewSyncer("sync", store, time.Hour, 10)
	_, err = syncer.Sync(ctx)
	assert.Error(t, err)

	persist.fail = false
	store.now = func() time.Time { return time.Now().Add(time.Second) }
	n, err := syncer.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	total, ok, _ := persist.Load(ctx, "x")
	assert.True(t, ok)
	assert.EqualValues(t, 1, total)
}

func TestSyncerService(t *testing.T) {
	ctx := context.Background()
	persist := NewMemoryStore()
	store := newPersistStore(t, persist, miniredis.RunT(t))
	syncer := NewSyncer("sync", store, 10*time.Millisecond, 10)
	require.NoError(t, syncer.Init())
	require.True(t, syncer.Start())

	_, err := store.Incr(ctx, "live")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		total, ok, _ := persist.Load(ctx, "live")
		return ok && total == 1
	}, time.Second, 10*time.Millisecond)

	_, err = store.Incr(ctx, "live")
	require.NoError(t, err)
	assert.True(t, syncer.Stop())
	total, _, _ := persist.Load(ctx, "live")
	assert.EqualValues(t, 2, total)
}
