// Package config loads runtime configuration for the liftfield CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables with the LIFTFIELD_ prefix (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the remote document database
//	-u string   base URL of the identity provider
//	-i int      online status check interval (seconds)
//	-d string   path of the local sqlite store
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "database_endpoint": "https://liftfield-db.example.com",
//	  "auth_endpoint": "https://identitytoolkit.example.com",
//	  "api_key": "AIza...",
//	  "app_origin": "https://liftfield.example.com",
//	  "online_check_interval": "3s",
//	  "local_store_path": "liftfield.db",
//	  "asset_cache_dir": "asset-cache",
//	  "asset_version": "v2.0.0"
//	}
package config
