package storeclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Identity is the opaque credential handle owned by the authentication
// provider. The data layer only observes its presence or absence; it never
// inspects or refreshes credentials itself.
type Identity interface {
	// Principal is the textual identifier of the signed-in user.
	Principal() string
}

// Factory constructs a backend client. A nil identity requests the
// anonymous variant; a non-nil identity binds the client to that principal.
// Construction may itself perform network work and fail.
type Factory func(ctx context.Context, identity Identity) (Client, error)

// State is the construction state of a provider's client. "Not yet
// constructed" is deliberately distinct from "construction failed".
type State int

const (
	// StateUnset means construction has not been attempted.
	StateUnset State = iota
	// StatePending means construction is in flight.
	StatePending
	// StateReady means a client is available.
	StateReady
	// StateFailed means the last construction attempt failed; Reset clears it.
	StateFailed
)

// String returns a stable name for log fields.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unset"
	}
}

// ErrNotReady is returned by Peek when no client is available yet. Its text
// is the sentinel the error classifier rewrites to an unavailable message.
var ErrNotReady = errors.New("backend service is not available")

// Provider lazily constructs and memoizes one backend client, de-duplicating
// concurrent construction. Changing the bound identity discards the current
// client so the next access constructs a client for the new principal.
type Provider struct {
	factory Factory
	logger  zerolog.Logger

	mu       sync.Mutex
	identity Identity
	state    State
	client   Client
	buildErr error
	// building is closed by the constructing goroutine when its attempt
	// settles; a new channel per attempt lets identity swaps discard stale
	// constructions.
	building chan struct{}
}

// NewProvider creates a provider around a client factory.
func NewProvider(factory Factory, logger zerolog.Logger) (*Provider, error) {
	if factory == nil {
		return nil, fmt.Errorf("factory cannot be nil")
	}
	return &Provider{
		factory: factory,
		logger:  logger.With().Str("component", "ClientProvider").Logger(),
	}, nil
}

// SetIdentity binds the provider to a signed-in principal. Any constructed
// or in-flight client is discarded; the next Get constructs a bound client.
func (p *Provider) SetIdentity(identity Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = identity
	p.discardLocked()
	p.logger.Info().Str("state", p.state.String()).Msg("Identity bound, client discarded for reconstruction.")
}

// ClearIdentity reverts the provider to the anonymous variant.
func (p *Provider) ClearIdentity() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = nil
	p.discardLocked()
	p.logger.Info().Msg("Identity cleared, provider is anonymous.")
}

// Identity returns the currently bound identity, nil when anonymous.
func (p *Provider) Identity() Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identity
}

// Reset clears a failed construction so the next Get retries it.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateFailed {
		p.discardLocked()
	}
}

// Peek reports the current client without triggering construction. When no
// client is ready it returns ErrNotReady (state pending/unset) or the
// construction error (state failed).
func (p *Provider) Peek() (Client, State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateReady:
		return p.client, p.state, nil
	case StateFailed:
		return nil, p.state, p.buildErr
	default:
		return nil, p.state, ErrNotReady
	}
}

// Get returns the constructed client, building it on first use. Concurrent
// callers share one construction attempt. A failed attempt stays failed
// until Reset or an identity change.
func (p *Provider) Get(ctx context.Context) (Client, error) {
	for {
		p.mu.Lock()
		switch p.state {
		case StateReady:
			client := p.client
			p.mu.Unlock()
			return client, nil

		case StateFailed:
			err := p.buildErr
			p.mu.Unlock()
			return nil, fmt.Errorf("backend client construction failed: %w", err)

		case StatePending:
			settled := p.building
			p.mu.Unlock()
			select {
			case <-settled:
			case <-ctx.Done():
				return nil, ctx.Err()
			}

		default: // StateUnset
			p.state = StatePending
			attempt := make(chan struct{})
			p.building = attempt
			identity := p.identity
			p.mu.Unlock()
			p.construct(ctx, identity, attempt)
		}
	}
}

func (p *Provider) construct(ctx context.Context, identity Identity, attempt chan struct{}) {
	client, err := p.factory(ctx, identity)

	p.mu.Lock()
	defer p.mu.Unlock()
	defer close(attempt)

	if p.building != attempt {
		// The identity changed while we were constructing; this client is
		// for a stale principal and must not be kept.
		p.logger.Debug().Msg("Discarding client constructed for a superseded identity.")
		return
	}
	p.building = nil
	if err != nil {
		p.state = StateFailed
		p.buildErr = err
		p.logger.Error().Err(err).Msg("Backend client construction failed.")
		return
	}
	p.state = StateReady
	p.client = client
	p.logger.Info().Bool("anonymous", identity == nil).Msg("Backend client constructed.")
}

// discardLocked drops any constructed client and abandons an in-flight
// construction attempt.
func (p *Provider) discardLocked() {
	p.state = StateUnset
	p.client = nil
	p.buildErr = nil
	p.building = nil
}
