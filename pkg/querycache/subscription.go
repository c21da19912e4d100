package querycache

import (
	"context"
	"time"
)

// Subscription is one consumer's attachment to a cache entry. Snapshots are
// read-only views; closing the subscription starts the entry's GC horizon
// once no other subscribers remain.
type Subscription struct {
	cache    *Cache
	entry    *entry
	updates  chan Result
	stopPoll chan struct{}
	closed   bool
}

// Snapshot returns the entry's current state.
func (s *Subscription) Snapshot() Result {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	return s.cache.resultLocked(s.entry)
}

// Updates returns a channel carrying the latest entry state after each
// change. The channel is conflated: intermediate states may be skipped, the
// most recent one is always retained.
func (s *Subscription) Updates() <-chan Result {
	return s.updates
}

// Wait blocks until no fetch is in flight for the entry and returns the
// settled state. If nothing is in flight it returns immediately.
func (s *Subscription) Wait(ctx context.Context) (Result, error) {
	for {
		s.cache.mu.Lock()
		if !s.entry.fetching {
			r := s.cache.resultLocked(s.entry)
			s.cache.mu.Unlock()
			return r, nil
		}
		done := s.entry.done
		s.cache.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
}

// Close detaches the subscription. The last subscriber to leave arms the
// entry's idle-eviction timer. Close is idempotent.
func (s *Subscription) Close() {
	s.cache.mu.Lock()
	if s.closed {
		s.cache.mu.Unlock()
		return
	}
	s.closed = true
	delete(s.entry.subs, s)
	if len(s.entry.subs) == 0 {
		s.cache.scheduleGCLocked(s.entry)
	}
	stop := s.stopPoll
	s.cache.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// push delivers a result to the updates channel, keeping only the latest.
// Called with the cache lock held.
func (s *Subscription) push(r Result) {
	select {
	case <-s.updates:
	default:
	}
	s.updates <- r
}

// poll refetches the entry at a fixed interval while the subscription is
// open. Polling refetches unconditionally, matching interval-driven queries
// such as order tracking.
func (s *Subscription) poll(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopPoll:
			return
		case <-ticker.C:
			s.cache.mu.Lock()
			if !s.entry.removed {
				s.cache.startFetchLocked(s.entry)
			}
			s.cache.mu.Unlock()
		}
	}
}
