package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "https://liftfield-db.example.com", c.DatabaseEndpoint)
	assert.Equal(t, "https://identitytoolkit.example.com", c.AuthEndpoint)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "liftfield.db", c.LocalStorePath)
	assert.Equal(t, "asset-cache", c.AssetCacheDir)
	assert.Equal(t, "v2.0.0", c.AssetVersion)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "liftfield.db", cfg.LocalStorePath)
}

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("LIFTFIELD_DATABASE_ENDPOINT", "https://db.test")
	t.Setenv("LIFTFIELD_API_KEY", "key-123")
	t.Setenv("LIFTFIELD_ONLINE_CHECK_INTERVAL", "10s")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "https://db.test", c.DatabaseEndpoint)
	assert.Equal(t, "key-123", c.APIKey)
	assert.Equal(t, 10*time.Second, c.OnlineCheckInterval)
	// untouched by the env layer
	assert.Equal(t, "https://identitytoolkit.example.com", c.AuthEndpoint)
}
