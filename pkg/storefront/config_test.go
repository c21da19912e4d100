package storefront_test

import (
	"testing"
	"time"

	"github.com/illmade-knight/go-storesync/pkg/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults apply without environment overrides", func(t *testing.T) {
		cfg, err := storefront.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, storefront.DefaultConfig(), cfg)
	})

	t.Run("Environment overrides are parsed", func(t *testing.T) {
		t.Setenv("STORESYNC_STALE_TIME", "90s")
		t.Setenv("STORESYNC_QUERY_RETRIES", "0")
		t.Setenv("STORESYNC_ADMIN_AUTH_MODE", "identity")

		cfg, err := storefront.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, cfg.StaleTime)
		assert.Equal(t, 0, cfg.QueryRetries)
		assert.Equal(t, storefront.AdminIdentity, cfg.AdminAuthMode)
	})

	t.Run("Unknown admin auth mode is rejected", func(t *testing.T) {
		t.Setenv("STORESYNC_ADMIN_AUTH_MODE", "superuser")

		_, err := storefront.LoadConfig()
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	cfg := storefront.DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.QueryRetries = -1
	assert.Error(t, cfg.Validate())

	cfg = storefront.DefaultConfig()
	cfg.CallTimeout = 0
	assert.Error(t, cfg.Validate())
}
