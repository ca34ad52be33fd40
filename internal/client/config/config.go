package config

import "time"

// Config holds runtime settings for the liftfield CLI.
//
// Endpoints: DatabaseEndpoint is the base URL of the remote document
// database; AuthEndpoint and APIKey address the identity provider. An empty
// DatabaseEndpoint switches the client to the fully-local document mode.
type Config struct {
	DatabaseEndpoint    string
	AuthEndpoint        string
	APIKey              string
	AppOrigin           string
	OnlineCheckInterval time.Duration
	LocalStorePath      string
	AssetCacheDir       string
	AssetVersion        string
	LogLevel            int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseEndpoint = "https://liftfield-db.example.com"
	c.AuthEndpoint = "https://identitytoolkit.example.com"
	c.AppOrigin = "https://liftfield.example.com"
	c.OnlineCheckInterval = 3 * time.Second
	c.LocalStorePath = "liftfield.db"
	c.AssetCacheDir = "asset-cache"
	c.AssetVersion = "v2.0.0"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, a JSON file (if present) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
