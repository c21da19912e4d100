package storefront

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/illmade-knight/go-storesync/pkg/retrypolicy"
)

// AdminAuthMode selects which client variant serves admin operations. The
// backend has shipped with both behaviors over time, so it is a deployment
// choice rather than a hardcoded assumption.
type AdminAuthMode string

const (
	// AdminAnonymous serves admin operations through the anonymous client;
	// the backend enforces authorization on its side.
	AdminAnonymous AdminAuthMode = "anonymous"
	// AdminIdentity serves admin operations through the identity-bound
	// client, requiring a signed-in principal.
	AdminIdentity AdminAuthMode = "identity"
)

// Config tunes the data-synchronization layer. All values have working
// defaults; load overrides from the environment with LoadConfig.
type Config struct {
	// StaleTime is the default freshness window for cached reads.
	StaleTime time.Duration `env:"STORESYNC_STALE_TIME" envDefault:"30s"`
	// GCTime is how long idle cache entries survive without subscribers.
	GCTime time.Duration `env:"STORESYNC_GC_TIME" envDefault:"5m"`

	// QueryRetries is the automatic retry budget for read queries. Mutations
	// never retry automatically.
	QueryRetries int `env:"STORESYNC_QUERY_RETRIES" envDefault:"2"`
	// RetryDelay is the fixed pause between query retry attempts.
	RetryDelay time.Duration `env:"STORESYNC_RETRY_DELAY" envDefault:"1s"`
	// CallTimeout is the per-attempt fail-fast deadline for every backend
	// call, reads and writes alike.
	CallTimeout time.Duration `env:"STORESYNC_CALL_TIMEOUT" envDefault:"8s"`

	// OrdersPollInterval keeps the customer order list current while an
	// admin may be advancing statuses elsewhere.
	OrdersPollInterval time.Duration `env:"STORESYNC_ORDERS_POLL_INTERVAL" envDefault:"15s"`
	// OrderPollInterval polls a single watched order.
	OrderPollInterval time.Duration `env:"STORESYNC_ORDER_POLL_INTERVAL" envDefault:"10s"`
	// HealthPollInterval and HealthStaleTime drive the admin health probe.
	HealthPollInterval time.Duration `env:"STORESYNC_HEALTH_POLL_INTERVAL" envDefault:"30s"`
	HealthStaleTime    time.Duration `env:"STORESYNC_HEALTH_STALE_TIME" envDefault:"10s"`

	// AdminAuthMode is "anonymous" or "identity".
	AdminAuthMode AdminAuthMode `env:"STORESYNC_ADMIN_AUTH_MODE" envDefault:"anonymous"`
}

// DefaultConfig returns the built-in defaults without consulting the
// environment.
func DefaultConfig() Config {
	return Config{
		StaleTime:          30 * time.Second,
		GCTime:             5 * time.Minute,
		QueryRetries:       2,
		RetryDelay:         time.Second,
		CallTimeout:        8 * time.Second,
		OrdersPollInterval: 15 * time.Second,
		OrderPollInterval:  10 * time.Second,
		HealthPollInterval: 30 * time.Second,
		HealthStaleTime:    10 * time.Second,
		AdminAuthMode:      AdminAnonymous,
	}
}

// LoadConfig reads the configuration from the environment, falling back to
// the defaults above.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing storesync config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unusable settings.
func (c Config) Validate() error {
	if c.QueryRetries < 0 {
		return fmt.Errorf("query retries cannot be negative: %d", c.QueryRetries)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("call timeout must be positive: %s", c.CallTimeout)
	}
	if c.AdminAuthMode != AdminAnonymous && c.AdminAuthMode != AdminIdentity {
		return fmt.Errorf("unknown admin auth mode %q", c.AdminAuthMode)
	}
	return nil
}

// queryRetry is the standard read policy: the configured retry budget on top
// of the first attempt, each attempt inside its own timeout window.
func (c Config) queryRetry() retrypolicy.Policy {
	return c.retry(c.QueryRetries)
}

// retry builds a policy with an explicit retry count for queries that
// deviate from the default budget.
func (c Config) retry(retries int) retrypolicy.Policy {
	if retries < 0 {
		retries = 0
	}
	return retrypolicy.Policy{
		Attempts: retries + 1,
		Delay:    c.RetryDelay,
		Timeout:  c.CallTimeout,
	}
}
