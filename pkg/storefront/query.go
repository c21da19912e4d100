package storefront

import (
	"context"
	"time"

	"github.com/illmade-knight/go-storesync/pkg/faultclass"
	"github.com/illmade-knight/go-storesync/pkg/querycache"
)

// QueryResult is the typed view of a cache entry.
type QueryResult[T any] struct {
	Data       T
	HasData    bool
	Err        *faultclass.Classified
	FetchedAt  time.Time
	IsLoading  bool
	IsFetching bool
}

// Query is a reusable, typed definition of one cached read: its key, its
// fetcher, and its per-key cache options. Definitions are cheap; the cache
// entry is shared by every subscription to the same key.
type Query[T any] struct {
	session *Session
	key     querycache.Key
	opts    querycache.Options
	fetch   func(ctx context.Context) (T, error)
}

func newQuery[T any](s *Session, key querycache.Key, opts querycache.Options, fetch func(ctx context.Context) (T, error)) *Query[T] {
	return &Query[T]{session: s, key: key, opts: opts, fetch: fetch}
}

// Key returns the query's cache key.
func (q *Query[T]) Key() querycache.Key {
	return q.key
}

// Subscribe attaches to the underlying cache entry, fetching or refreshing
// it as its staleness dictates.
func (q *Query[T]) Subscribe(ctx context.Context) *QuerySub[T] {
	untyped := func(ctx context.Context) (any, error) {
		return q.fetch(ctx)
	}
	return &QuerySub[T]{sub: q.session.cache.Subscribe(ctx, q.key, untyped, q.opts)}
}

// Fetch is a one-shot convenience: subscribe, wait for a settled result, and
// detach.
func (q *Query[T]) Fetch(ctx context.Context) (QueryResult[T], error) {
	sub := q.Subscribe(ctx)
	defer sub.Close()
	return sub.Wait(ctx)
}

// QuerySub is a typed subscription to a cache entry.
type QuerySub[T any] struct {
	sub *querycache.Subscription
}

// Snapshot returns the entry's current state.
func (s *QuerySub[T]) Snapshot() QueryResult[T] {
	return typedResult[T](s.sub.Snapshot())
}

// Wait blocks until no fetch is in flight and returns the settled state.
func (s *QuerySub[T]) Wait(ctx context.Context) (QueryResult[T], error) {
	r, err := s.sub.Wait(ctx)
	if err != nil {
		return QueryResult[T]{}, err
	}
	return typedResult[T](r), nil
}

// Updates returns the conflated stream of entry states.
func (s *QuerySub[T]) Updates() <-chan querycache.Result {
	return s.sub.Updates()
}

// Close detaches the subscription.
func (s *QuerySub[T]) Close() {
	s.sub.Close()
}

func typedResult[T any](r querycache.Result) QueryResult[T] {
	out := QueryResult[T]{
		HasData:    r.HasData,
		Err:        r.Err,
		FetchedAt:  r.FetchedAt,
		IsLoading:  r.IsLoading,
		IsFetching: r.IsFetching,
	}
	if r.HasData {
		if data, ok := r.Data.(T); ok {
			out.Data = data
		} else {
			// A key collision across differently-typed queries; treat as
			// absent rather than panic in UI code.
			out.HasData = false
		}
	}
	return out
}
