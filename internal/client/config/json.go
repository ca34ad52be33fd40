package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/flagx"
	"github.com/dmitrijs2005/liftfield/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabaseEndpoint    *string         `json:"database_endpoint"`
	AuthEndpoint        *string         `json:"auth_endpoint"`
	APIKey              *string         `json:"api_key"`
	AppOrigin           *string         `json:"app_origin"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	LocalStorePath      *string         `json:"local_store_path"`
	AssetCacheDir       *string         `json:"asset_cache_dir"`
	AssetVersion        *string         `json:"asset_version"`
	LogLevel            *int            `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Panics on read or unmarshal errors (caller should recover if desired).
// Absent fields leave the corresponding Config values untouched.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseEndpoint != nil {
		cfg.DatabaseEndpoint = *jc.DatabaseEndpoint
	}
	if jc.AuthEndpoint != nil {
		cfg.AuthEndpoint = *jc.AuthEndpoint
	}
	if jc.APIKey != nil {
		cfg.APIKey = *jc.APIKey
	}
	if jc.AppOrigin != nil {
		cfg.AppOrigin = *jc.AppOrigin
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.LocalStorePath != nil {
		cfg.LocalStorePath = *jc.LocalStorePath
	}
	if jc.AssetCacheDir != nil {
		cfg.AssetCacheDir = *jc.AssetCacheDir
	}
	if jc.AssetVersion != nil {
		cfg.AssetVersion = *jc.AssetVersion
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
