package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_OverlaysAndKeepsAbsentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"database_endpoint": "https://db.test",
		"online_check_interval": "7s",
		"asset_version": "v3.1.0"
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-c", path}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "https://db.test", c.DatabaseEndpoint)
	assert.Equal(t, 7*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "v3.1.0", c.AssetVersion)
	// absent fields keep their defaults
	assert.Equal(t, "https://identitytoolkit.example.com", c.AuthEndpoint)
	assert.Equal(t, "liftfield.db", c.LocalStorePath)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd"}

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, "https://liftfield-db.example.com", c.DatabaseEndpoint)
}

func TestParseJson_MalformedPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-c", path}

	var c Config
	assert.Panics(t, func() { parseJson(&c) })
}
