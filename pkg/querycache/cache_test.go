package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/illmade-knight/go-storesync/pkg/faultclass"
	"github.com/illmade-knight/go-storesync/pkg/querycache"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSource simulates the backend behind a single cache key.
type mockSource struct {
	mu        sync.Mutex
	callCount atomic.Int32
	value     any
	err       error
	delay     time.Duration
}

func (m *mockSource) fetch(_ context.Context) (any, error) {
	m.callCount.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.err
}

func (m *mockSource) set(value any, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	m.err = err
}

func TestCache_Deduplication(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("products")
	source := &mockSource{value: "catalog", delay: 50 * time.Millisecond}

	// N concurrent subscriptions to an empty key must share one fetch.
	const n = 5
	var wg sync.WaitGroup
	results := make([]querycache.Result, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			sub := c.Subscribe(ctx, key, source.fetch, querycache.Options{StaleTime: time.Minute})
			defer sub.Close()
			r, err := sub.Wait(ctx)
			require.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.callCount.Load(), "fetcher must be invoked exactly once")
	for _, r := range results {
		require.True(t, r.HasData)
		assert.Equal(t, "catalog", r.Data)
	}
}

func TestCache_FreshEntryServedWithoutFetch(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("categories")
	source := &mockSource{value: []string{"books"}}
	opts := querycache.Options{StaleTime: time.Minute}

	first := c.Subscribe(ctx, key, source.fetch, opts)
	_, err := first.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(1), source.callCount.Load())

	second := c.Subscribe(ctx, key, source.fetch, opts)
	r, err := second.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"books"}, r.Data)
	assert.Equal(t, int32(1), source.callCount.Load(), "fresh entries must not refetch on mount")

	first.Close()
	second.Close()
}

func TestCache_AlwaysStaleRefetchesOnMount(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("adminOrders")
	source := &mockSource{value: 1}
	opts := querycache.Options{StaleTime: 0} // always stale, admin-style

	first := c.Subscribe(ctx, key, source.fetch, opts)
	_, err := first.Wait(ctx)
	require.NoError(t, err)
	first.Close()

	second := c.Subscribe(ctx, key, source.fetch, opts)
	_, err = second.Wait(ctx)
	require.NoError(t, err)
	second.Close()

	assert.Equal(t, int32(2), source.callCount.Load())
}

func TestCache_StaleWhileError(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("cart")
	source := &mockSource{value: "two items"}
	opts := querycache.Options{StaleTime: time.Minute}

	sub := c.Subscribe(ctx, key, source.fetch, opts)
	r, err := sub.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "two items", r.Data)

	// The next refetch fails; cached data must survive alongside the error.
	source.set(nil, errors.New("IC0508: canister is stopped"))
	c.InvalidatePrefix(key)
	r, err = sub.Wait(ctx)
	require.NoError(t, err)

	assert.True(t, r.HasData, "stale-while-error must keep previously cached data")
	assert.Equal(t, "two items", r.Data)
	require.NotNil(t, r.Err)
	assert.Equal(t, faultclass.KindUnavailable, r.Err.Kind)

	sub.Close()
}

func TestCache_FirstFetchFailure(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("siteSettings")
	source := &mockSource{err: errors.New("connection refused")}

	sub := c.Subscribe(ctx, key, source.fetch, querycache.Options{StaleTime: time.Minute})
	defer sub.Close()
	r, err := sub.Wait(ctx)
	require.NoError(t, err)

	assert.False(t, r.HasData)
	require.NotNil(t, r.Err)
	assert.Equal(t, faultclass.KindUnavailable, r.Err.Kind)
}

func TestCache_InvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	opts := querycache.Options{StaleTime: time.Minute}

	filtered := querycache.NewKey("products", "search=mugs")
	unfiltered := querycache.NewKey("products")
	unrelated := querycache.NewKey("categories")

	filteredSource := &mockSource{value: "filtered"}
	unfilteredSource := &mockSource{value: "all"}
	unrelatedSource := &mockSource{value: "cats"}

	subFiltered := c.Subscribe(ctx, filtered, filteredSource.fetch, opts)
	subUnfiltered := c.Subscribe(ctx, unfiltered, unfilteredSource.fetch, opts)
	subUnrelated := c.Subscribe(ctx, unrelated, unrelatedSource.fetch, opts)
	for _, s := range []*querycache.Subscription{subFiltered, subUnfiltered, subUnrelated} {
		_, err := s.Wait(ctx)
		require.NoError(t, err)
	}

	// Invalidating the short prefix must refetch both product keys but leave
	// the unrelated key untouched.
	c.InvalidatePrefix(querycache.NewKey("products"))
	_, err := subFiltered.Wait(ctx)
	require.NoError(t, err)
	_, err = subUnfiltered.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), filteredSource.callCount.Load())
	assert.Equal(t, int32(2), unfilteredSource.callCount.Load())
	assert.Equal(t, int32(1), unrelatedSource.callCount.Load())

	subFiltered.Close()
	subUnfiltered.Close()
	subUnrelated.Close()
}

func TestCache_InvalidationWithoutSubscribersIsLazy(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("orders")
	source := &mockSource{value: "orders"}
	opts := querycache.Options{StaleTime: time.Minute, GCTime: time.Minute}

	sub := c.Subscribe(ctx, key, source.fetch, opts)
	_, err := sub.Wait(ctx)
	require.NoError(t, err)
	sub.Close()

	c.InvalidatePrefix(key)
	assert.Equal(t, int32(1), source.callCount.Load(), "idle entries must not refetch eagerly")

	// The next subscription picks up the staleness and refetches.
	sub = c.Subscribe(ctx, key, source.fetch, opts)
	_, err = sub.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.callCount.Load())
	sub.Close()
}

func TestCache_GarbageCollection(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("wishlist")
	source := &mockSource{value: "w"}
	opts := querycache.Options{StaleTime: time.Minute, GCTime: 30 * time.Millisecond}

	sub := c.Subscribe(ctx, key, source.fetch, opts)
	_, err := sub.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, c.Size())

	sub.Close()
	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 10*time.Millisecond,
		"idle entry should be evicted after the GC horizon")

	// A later subscription recreates the entry from scratch.
	sub = c.Subscribe(ctx, key, source.fetch, opts)
	_, err = sub.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.callCount.Load())
	sub.Close()
}

func TestCache_GCCancelledByResubscribe(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("coupons")
	source := &mockSource{value: "c"}
	opts := querycache.Options{StaleTime: time.Minute, GCTime: 50 * time.Millisecond}

	sub := c.Subscribe(ctx, key, source.fetch, opts)
	_, err := sub.Wait(ctx)
	require.NoError(t, err)
	sub.Close()

	// Re-subscribing before the horizon keeps the entry alive.
	sub = c.Subscribe(ctx, key, source.fetch, opts)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, int32(1), source.callCount.Load())
	sub.Close()
}

func TestCache_RefetchOnFocus(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("publicProducts")
	source := &mockSource{value: "p"}
	opts := querycache.Options{StaleTime: 10 * time.Millisecond, RefetchOnFocus: true}

	sub := c.Subscribe(ctx, key, source.fetch, opts)
	_, err := sub.Wait(ctx)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond) // let the entry go stale
	c.NotifyFocus()
	_, err = sub.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.callCount.Load())

	// Focus on a fresh entry is a no-op.
	c.NotifyFocus()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, int32(2), source.callCount.Load())

	sub.Close()
}

func TestCache_IntervalPolling(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("order", "42")
	source := &mockSource{value: "pending"}
	opts := querycache.Options{StaleTime: time.Minute, RefetchInterval: 20 * time.Millisecond}

	sub := c.Subscribe(ctx, key, source.fetch, opts)
	_, err := sub.Wait(ctx)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return source.callCount.Load() >= 3 }, time.Second, 5*time.Millisecond,
		"polling should keep refetching while subscribed")

	sub.Close()
	settled := source.callCount.Load()
	time.Sleep(60 * time.Millisecond)
	assert.LessOrEqual(t, source.callCount.Load(), settled+1, "polling must stop after close")
}

func TestCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	source := &mockSource{value: "private"}
	opts := querycache.Options{StaleTime: time.Minute}

	sub := c.Subscribe(ctx, querycache.NewKey("cart"), source.fetch, opts)
	_, err := sub.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, c.Size())

	c.Clear()

	assert.Equal(t, 0, c.Size())
	r := sub.Snapshot()
	assert.False(t, r.HasData, "cleared entries must not expose prior identity data")
	sub.Close()
}

func TestCache_UpdatesChannel(t *testing.T) {
	ctx := context.Background()
	c := querycache.New(zerolog.Nop())
	key := querycache.NewKey("siteSettings")
	source := &mockSource{value: "logo"}

	sub := c.Subscribe(ctx, key, source.fetch, querycache.Options{StaleTime: time.Minute})
	defer sub.Close()

	deadline := time.After(time.Second)
	for {
		select {
		case r := <-sub.Updates():
			if r.HasData && !r.IsFetching {
				assert.Equal(t, "logo", r.Data)
				return
			}
		case <-deadline:
			t.Fatal("never observed a settled update")
		}
	}
}
