package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "pl:7:g3:ledger:owner-1", Key(7, 3, KindLedger, "owner-1"))
}

func TestMemoryCache_TTL(t *testing.T) {
	now := time.Unix(1000, 0)
	c := newMemoryCache(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 30*time.Second))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(30 * time.Second)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_InvalidateRetiresGeneration(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	gen, err := c.Generation(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, gen)

	old := Key(7, gen, KindLedger, "r")
	other := Key(8, 0, KindLedger, "r")
	require.NoError(t, c.Set(ctx, old, []byte("stale"), time.Minute))
	require.NoError(t, c.Set(ctx, other, []byte("keep"), time.Minute))

	require.NoError(t, c.Invalidate(ctx, 7))

	gen, err = c.Generation(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	_, ok, _ := c.Get(ctx, old)
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, other)
	assert.True(t, ok, "other groups are untouched")
}

func TestMemoryCache_ConcurrentInvalidate(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Invalidate(ctx, 1)
		}()
	}
	wg.Wait()

	gen, err := c.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), gen)
}

type summary struct {
	Total int64 `json:"total"`
}

func TestFetch_ReadThrough(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (summary, error) {
		calls++
		return summary{Total: int64(calls * 10)}, nil
	}

	got, err := Fetch(ctx, c, 1, KindLedger, "r", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Total)

	got, err = Fetch(ctx, c, 1, KindLedger, "r", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Total)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Invalidate(ctx, 1))

	got, err = Fetch(ctx, c, 1, KindLedger, "r", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Total)
	assert.Equal(t, 2, calls)
}

func TestFetch_RequesterScoped(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, err := Fetch(ctx, c, 1, KindIdentities, "alice", time.Minute, func(context.Context) (summary, error) {
		return summary{Total: 1}, nil
	})
	require.NoError(t, err)

	got, err := Fetch(ctx, c, 1, KindIdentities, "bob", time.Minute, func(context.Context) (summary, error) {
		return summary{Total: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Total)
}

func TestFetch_LoadErrorIsNotCached(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := Fetch(ctx, c, 1, KindLedger, "r", time.Minute, func(context.Context) (summary, error) {
		return summary{}, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := Fetch(ctx, c, 1, KindLedger, "r", time.Minute, func(context.Context) (summary, error) {
		return summary{Total: 5}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Total)
}

type brokenCache struct{ Cache }

func (brokenCache) Generation(context.Context, int64) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestFetch_DegradesWhenCacheIsDown(t *testing.T) {
	got, err := Fetch(context.Background(), brokenCache{}, 1, KindLedger, "r", time.Minute, func(context.Context) (summary, error) {
		return summary{Total: 9}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Total)
}
