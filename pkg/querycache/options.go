package querycache

import (
	"time"

	"github.com/illmade-knight/go-storesync/pkg/retrypolicy"
)

// NeverStale disables age-based staleness for an entry; it only refetches on
// explicit invalidation.
const NeverStale = time.Duration(-1)

// defaultGCTime evicts an idle entry five minutes after its last subscriber
// leaves, unless the entry overrides it.
const defaultGCTime = 5 * time.Minute

// Options configure one cache entry. The latest subscriber's options win for
// a shared key; in practice every call site for a given key uses the same
// options, declared once per query definition.
type Options struct {
	// StaleTime is how long a fetched result is considered fresh. Zero means
	// always stale: every new subscription triggers a background refetch.
	// NeverStale disables aging entirely.
	StaleTime time.Duration

	// GCTime is how long an entry with zero subscribers survives before
	// eviction. Zero selects the default horizon.
	GCTime time.Duration

	// RefetchInterval polls the key while at least one subscriber is
	// attached. Zero disables polling.
	RefetchInterval time.Duration

	// RefetchOnFocus refetches a stale entry when the cache is told the
	// window regained focus.
	RefetchOnFocus bool

	// Retry bounds each fetch. Queries typically allow a small retry budget;
	// the per-attempt timeout applies regardless.
	Retry retrypolicy.Policy
}

func (o Options) gcTime() time.Duration {
	if o.GCTime <= 0 {
		return defaultGCTime
	}
	return o.GCTime
}
