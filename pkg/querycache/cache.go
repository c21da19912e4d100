// Package querycache memoizes the results of read operations against the
// storefront backend. Entries are keyed by composite Keys, shared by all
// subscribers of a key, refreshed when stale, and marked stale in bulk by
// prefix when a mutation invalidates them. The cache is the single shared
// mutable resource of a client session: created once at application start
// and cleared on logout so cached data never leaks across identities.
package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/illmade-knight/go-storesync/pkg/faultclass"
	"github.com/illmade-knight/go-storesync/pkg/retrypolicy"
	"github.com/rs/zerolog"
)

// FetchFunc loads the value for one key from the backend.
type FetchFunc func(ctx context.Context) (any, error)

// Result is a read-only view of a cache entry.
type Result struct {
	// Data is the last successfully fetched value. Valid only when HasData
	// is true. A failed refetch does not clear it (stale-while-error).
	Data    any
	HasData bool

	// Err is the classified failure of the most recent fetch, nil after a
	// success.
	Err *faultclass.Classified

	// FetchedAt is when Data was last refreshed.
	FetchedAt time.Time

	// IsFetching reports an in-flight fetch. IsLoading additionally means no
	// data has ever been fetched, so the UI has nothing to render yet.
	IsFetching bool
	IsLoading  bool
}

// Cache is an in-memory query cache. All methods are safe for concurrent use.
type Cache struct {
	logger zerolog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	key   Key
	opts  Options
	fetch FetchFunc

	data      any
	hasData   bool
	err       *faultclass.Classified
	fetchedAt time.Time

	// invalidated marks the entry stale regardless of age, set by prefix
	// invalidation and cleared by the next successful fetch.
	invalidated bool

	fetching bool
	done     chan struct{}

	subs    map[*Subscription]struct{}
	gcTimer *time.Timer
	removed bool
}

// New creates an empty cache.
func New(logger zerolog.Logger) *Cache {
	return &Cache{
		logger:  logger.With().Str("component", "QueryCache").Logger(),
		entries: make(map[string]*entry),
	}
}

// Subscribe registers interest in a key. If no entry exists one is created
// and fetched; if the entry is fresh its cached data is served without a
// network call; if it is stale the cached data remains visible while a
// background refetch runs. Concurrent subscribers to one key share a single
// in-flight fetch. The caller must Close the subscription when done.
func (c *Cache) Subscribe(_ context.Context, key Key, fetch FetchFunc, opts Options) *Subscription {
	c.mu.Lock()

	e, ok := c.entries[key.id()]
	if !ok {
		e = &entry{key: key, subs: make(map[*Subscription]struct{})}
		c.entries[key.id()] = e
		c.logger.Debug().Str("key", key.String()).Msg("Cache entry created.")
	}
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	e.fetch = fetch
	e.opts = opts

	sub := &Subscription{cache: c, entry: e, updates: make(chan Result, 1)}
	if opts.RefetchInterval > 0 {
		sub.stopPoll = make(chan struct{})
	}
	e.subs[sub] = struct{}{}

	if c.needsFetchLocked(e) {
		c.startFetchLocked(e)
	}
	c.mu.Unlock()

	if sub.stopPoll != nil {
		go sub.poll(opts.RefetchInterval)
	}
	return sub
}

// InvalidatePrefix marks every entry matching any of the prefixes stale.
// Entries with active subscribers refetch immediately in the background;
// idle entries refetch lazily on their next subscription.
func (c *Cache) InvalidatePrefix(prefixes ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		for _, p := range prefixes {
			if !e.key.HasPrefix(p) {
				continue
			}
			e.invalidated = true
			c.logger.Debug().Str("key", e.key.String()).Msg("Cache entry invalidated.")
			if len(e.subs) > 0 {
				c.startFetchLocked(e)
			}
			break
		}
	}
}

// NotifyFocus triggers a background refetch of every stale, focus-enabled
// entry that has subscribers. Call it when the client window regains focus.
func (c *Cache) NotifyFocus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.opts.RefetchOnFocus && len(e.subs) > 0 && c.isStaleLocked(e) {
			c.startFetchLocked(e)
		}
	}
}

// Peek returns the current state of a key without subscribing or triggering
// a fetch.
func (c *Cache) Peek(key Key) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.id()]
	if !ok {
		return Result{}, false
	}
	return c.resultLocked(e), true
}

// Size reports the number of live entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear evicts every entry and wipes its data. Used at logout: cached state
// for one identity must never be observable by the next. Existing
// subscriptions become orphans and should be closed by their owners.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		e.removed = true
		e.data = nil
		e.hasData = false
		e.err = nil
		e.invalidated = true
		if e.gcTimer != nil {
			e.gcTimer.Stop()
			e.gcTimer = nil
		}
		c.notifyLocked(e)
		delete(c.entries, id)
	}
	c.logger.Info().Msg("Query cache cleared.")
}

func (c *Cache) needsFetchLocked(e *entry) bool {
	if e.fetching {
		return false
	}
	if !e.hasData {
		return true
	}
	if e.err != nil {
		// A failed entry retries on the next subscription even if its stale
		// data is still being served.
		return true
	}
	return c.isStaleLocked(e)
}

func (c *Cache) isStaleLocked(e *entry) bool {
	if e.invalidated || !e.hasData {
		return true
	}
	if e.opts.StaleTime == NeverStale {
		return false
	}
	return time.Since(e.fetchedAt) >= e.opts.StaleTime
}

// startFetchLocked begins a background fetch unless one is already in
// flight; this is the de-duplication point for the whole cache.
func (c *Cache) startFetchLocked(e *entry) {
	if e.fetching || e.removed || e.fetch == nil {
		return
	}
	e.fetching = true
	e.done = make(chan struct{})
	c.notifyLocked(e)
	go c.runFetch(e, e.fetch, e.opts, e.done)
}

// runFetch executes one fetch cycle. It runs on a background context: an
// in-flight fetch outlives any individual subscriber and settles into the
// entry regardless, since entries outlive their consumers.
func (c *Cache) runFetch(e *entry, fetch FetchFunc, opts Options, done chan struct{}) {
	value, err := retrypolicy.Do(context.Background(), opts.Retry, c.logger, fetch)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		e.err = faultclass.Classify(err)
		c.logger.Warn().
			Str("key", e.key.String()).
			Str("kind", e.err.Kind.String()).
			Err(err).
			Msg("Fetch failed; serving stale data if present.")
	} else {
		e.data = value
		e.hasData = true
		e.err = nil
		e.fetchedAt = time.Now()
		e.invalidated = false
		c.logger.Debug().Str("key", e.key.String()).Msg("Cache entry refreshed.")
	}
	e.fetching = false
	if e.done == done {
		e.done = nil
	}
	close(done)
	c.notifyLocked(e)
}

func (c *Cache) resultLocked(e *entry) Result {
	return Result{
		Data:       e.data,
		HasData:    e.hasData,
		Err:        e.err,
		FetchedAt:  e.fetchedAt,
		IsFetching: e.fetching,
		IsLoading:  e.fetching && !e.hasData,
	}
}

func (c *Cache) notifyLocked(e *entry) {
	r := c.resultLocked(e)
	for sub := range e.subs {
		sub.push(r)
	}
}

// scheduleGCLocked arms the idle-eviction timer once an entry has zero
// subscribers.
func (c *Cache) scheduleGCLocked(e *entry) {
	if e.removed {
		return
	}
	id := e.key.id()
	e.gcTimer = time.AfterFunc(e.opts.gcTime(), func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		current, ok := c.entries[id]
		if !ok || current != e || len(current.subs) > 0 {
			return
		}
		current.removed = true
		delete(c.entries, id)
		c.logger.Debug().Str("key", e.key.String()).Msg("Idle cache entry evicted.")
	})
}
