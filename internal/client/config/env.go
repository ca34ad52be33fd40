package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig is a DTO for the environment layer. Unset variables leave the
// corresponding Config fields untouched.
type envConfig struct {
	DatabaseEndpoint    *string        `env:"DATABASE_ENDPOINT"`
	AuthEndpoint        *string        `env:"AUTH_ENDPOINT"`
	APIKey              *string        `env:"API_KEY"`
	AppOrigin           *string        `env:"APP_ORIGIN"`
	OnlineCheckInterval *time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	LocalStorePath      *string        `env:"LOCAL_STORE_PATH"`
	AssetCacheDir       *string        `env:"ASSET_CACHE_DIR"`
	AssetVersion        *string        `env:"ASSET_VERSION"`
	LogLevel            *int           `env:"LOG_LEVEL"`
}

// parseEnv overlays Config with LIFTFIELD_-prefixed environment variables.
// Panics on malformed values (caller should recover if desired).
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: "LIFTFIELD_"}); err != nil {
		panic(err)
	}

	if ec.DatabaseEndpoint != nil {
		cfg.DatabaseEndpoint = *ec.DatabaseEndpoint
	}
	if ec.AuthEndpoint != nil {
		cfg.AuthEndpoint = *ec.AuthEndpoint
	}
	if ec.APIKey != nil {
		cfg.APIKey = *ec.APIKey
	}
	if ec.AppOrigin != nil {
		cfg.AppOrigin = *ec.AppOrigin
	}
	if ec.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = *ec.OnlineCheckInterval
	}
	if ec.LocalStorePath != nil {
		cfg.LocalStorePath = *ec.LocalStorePath
	}
	if ec.AssetCacheDir != nil {
		cfg.AssetCacheDir = *ec.AssetCacheDir
	}
	if ec.AssetVersion != nil {
		cfg.AssetVersion = *ec.AssetVersion
	}
	if ec.LogLevel != nil {
		cfg.LogLevel = *ec.LogLevel
	}
}
