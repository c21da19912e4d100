// Package storefront binds the query cache, the backend client providers,
// the retry policy, and the error classifier into one session-scoped data
// layer for the storefront UI. A Session is constructed once at application
// start and torn down at logout; its cache must never carry data from one
// identity into the next.
package storefront

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/illmade-knight/go-storesync/pkg/querycache"
	"github.com/illmade-knight/go-storesync/pkg/storeclient"
	"github.com/rs/zerolog"
)

// Session owns the shared mutable state of one client session: the query
// cache and the two backend client providers. The public provider stays
// anonymous for the lifetime of the session so catalog reads work without a
// sign-in; the user provider follows the signed-in identity.
type Session struct {
	id     string
	cfg    Config
	logger zerolog.Logger

	cache  *querycache.Cache
	public *storeclient.Provider
	user   *storeclient.Provider
}

// NewSession creates the session data layer around a backend client factory.
func NewSession(cfg Config, factory storeclient.Factory, logger zerolog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, fmt.Errorf("factory cannot be nil")
	}

	id := uuid.NewString()
	logger = logger.With().Str("component", "StorefrontSession").Str("session_id", id).Logger()

	public, err := storeclient.NewProvider(factory, logger)
	if err != nil {
		return nil, err
	}
	user, err := storeclient.NewProvider(factory, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("admin_auth_mode", string(cfg.AdminAuthMode)).Msg("Storefront session created.")
	return &Session{
		id:     id,
		cfg:    cfg,
		logger: logger,
		cache:  querycache.New(logger),
		public: public,
		user:   user,
	}, nil
}

// ID is the unique identifier of this session, present in its log context.
func (s *Session) ID() string {
	return s.id
}

// Cache exposes the session's query cache for invalidation and inspection.
func (s *Session) Cache() *querycache.Cache {
	return s.cache
}

// SignIn binds the user provider to a signed-in identity. Identity-scoped
// queries (cart, wishlist, orders) become live and the user client is
// reconstructed bound to the principal.
func (s *Session) SignIn(identity storeclient.Identity) error {
	if identity == nil {
		return fmt.Errorf("identity cannot be nil")
	}
	s.user.SetIdentity(identity)
	s.logger.Info().Msg("Session signed in.")
	return nil
}

// Logout drops the bound identity and clears the whole cache: data cached
// for one identity must never be observable by the next signed-in user or
// by the anonymous session that follows.
func (s *Session) Logout() {
	s.user.ClearIdentity()
	s.cache.Clear()
	s.logger.Info().Msg("Session signed out, cache cleared.")
}

// NotifyFocus forwards a window-focus event to the cache so stale
// focus-enabled entries refresh.
func (s *Session) NotifyFocus() {
	s.cache.NotifyFocus()
}

// identity is the currently signed-in principal, nil when anonymous.
func (s *Session) identity() storeclient.Identity {
	return s.user.Identity()
}

// adminProvider selects the client variant serving admin operations per the
// configured auth mode.
func (s *Session) adminProvider() *storeclient.Provider {
	if s.cfg.AdminAuthMode == AdminIdentity {
		return s.user
	}
	return s.public
}
