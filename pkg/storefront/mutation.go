package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/illmade-knight/go-storesync/pkg/faultclass"
	"github.com/illmade-knight/go-storesync/pkg/querycache"
	"github.com/illmade-knight/go-storesync/pkg/retrypolicy"
	"github.com/illmade-knight/go-storesync/pkg/storeclient"
)

// ErrNothingToRetry is returned by Runner.Retry when no failed input is
// retained.
var ErrNothingToRetry = errors.New("no failed mutation input retained to retry")

// Runner executes one kind of mutation against the backend. Mutations are
// never retried automatically; a failure retains its input in a single
// retry slot so the UI can offer an explicit "Retry" bound to exactly what
// the user last attempted. The slot is cleared by the next distinct call,
// so a retry can never resubmit stale input.
//
// On success the runner marks the mutation's declared cache-key prefixes
// stale, which triggers background refetches for any subscribed readers.
type Runner[I, O any] struct {
	session  *Session
	name     MutationName
	provider *storeclient.Provider

	// validate rejects bad input locally, before any network call.
	validate func(I) *faultclass.Classified
	// signInMessage, when set, requires a bound identity and is the local
	// error shown without one.
	signInMessage string
	// scope derives input-dependent keys to invalidate on top of the static
	// table row.
	scope func(I) []querycache.Key

	op func(ctx context.Context, client storeclient.Client, input I) (O, error)

	mu         sync.Mutex
	lastFailed *I
}

// newRunner wires a mutation to its invalidation table row. It panics when
// the row is missing: a mutation without a declared invalidation set is a
// programming error that would otherwise surface as silently stale UI.
func newRunner[I, O any](
	s *Session,
	name MutationName,
	provider *storeclient.Provider,
	op func(ctx context.Context, client storeclient.Client, input I) (O, error),
) *Runner[I, O] {
	if _, ok := invalidationTable[name]; !ok {
		panic(fmt.Sprintf("storefront: mutation %q has no invalidation table row", name))
	}
	return &Runner[I, O]{session: s, name: name, provider: provider, op: op}
}

// Do executes the mutation with fresh input. Any previously retained failed
// input is discarded first.
func (r *Runner[I, O]) Do(ctx context.Context, input I) (O, error) {
	r.mu.Lock()
	r.lastFailed = nil
	r.mu.Unlock()
	return r.run(ctx, input)
}

// Retry replays the last failed input. The slot empties immediately: a
// failing retry re-fills it, but there is never more than one pending
// replay.
func (r *Runner[I, O]) Retry(ctx context.Context) (O, error) {
	r.mu.Lock()
	if r.lastFailed == nil {
		r.mu.Unlock()
		var zero O
		return zero, ErrNothingToRetry
	}
	input := *r.lastFailed
	r.lastFailed = nil
	r.mu.Unlock()
	return r.run(ctx, input)
}

// CanRetry reports whether a failed input is retained.
func (r *Runner[I, O]) CanRetry() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFailed != nil
}

func (r *Runner[I, O]) run(ctx context.Context, input I) (O, error) {
	var zero O

	// Local checks surface immediately and never reach the classifier or
	// the network.
	if r.signInMessage != "" && r.session.identity() == nil {
		return zero, faultclass.New(faultclass.KindUnauthorized, r.signInMessage, nil)
	}
	if r.validate != nil {
		if cerr := r.validate(input); cerr != nil {
			return zero, cerr
		}
	}

	logger := r.session.logger.With().
		Str("mutation", string(r.name)).
		Str("mutation_id", uuid.NewString()).
		Logger()

	out, err := retrypolicy.Do(ctx, retrypolicy.NoRetry(r.session.cfg.CallTimeout), logger,
		func(ctx context.Context) (O, error) {
			client, err := r.provider.Get(ctx)
			if err != nil {
				return zero, err
			}
			return r.op(ctx, client, input)
		})
	if err != nil {
		classified := faultclass.Classify(err)
		r.mu.Lock()
		r.lastFailed = &input
		r.mu.Unlock()
		logger.Warn().Str("kind", classified.Kind.String()).Err(err).Msg("Mutation failed; input retained for manual retry.")
		return zero, classified
	}

	keys := r.invalidationKeys(input)
	r.session.cache.InvalidatePrefix(keys...)
	logger.Info().Int("invalidated_prefixes", len(keys)).Msg("Mutation succeeded.")
	return out, nil
}

func (r *Runner[I, O]) invalidationKeys(input I) []querycache.Key {
	static := invalidationTable[r.name]
	keys := make([]querycache.Key, 0, len(static)+1)
	keys = append(keys, static...)
	if r.scope != nil {
		keys = append(keys, r.scope(input)...)
	}
	return keys
}
