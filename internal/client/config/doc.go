// Package config loads runtime configuration for the deliveryio CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the delivery backend
//	-t int      request timeout (seconds)
//	-d string   path of the local session database
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Timeouts use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "request_timeout": "10s",
//	  "database_path": "deliveryio.db",
//	  "log_level": "info",
//	  "log_format": "console"
//	}
//
// Fields missing from the JSON file keep their previous value.
package config
