// Package config loads runtime configuration for the toilettracker CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with TT_ (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST API
//	-t int      request timeout (seconds)
//	-g int      geolocation timeout (seconds)
//	-i int      online status check interval (seconds)
//	-d string   path of the local SQLite state database
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "15s" or integer nanoseconds. Absent keys keep earlier values:
//
//	{
//	  "api_url": "https://toilet-tracker-backend-1.onrender.com",
//	  "request_timeout": "30s",
//	  "geo_timeout": "15s",
//	  "online_check_interval": "10s",
//	  "db_path": "tracker.db",
//	  "log_level": "info",
//	  "locator": "fixed",
//	  "fixed_latitude": 51.505,
//	  "fixed_longitude": -0.09
//	}
//
// # Environment
//
// Every JSON key is also read from TT_<KEY>, e.g. TT_API_URL or
// TT_GEO_TIMEOUT=20s.
package config
