// Package config loads runtime configuration for the Odoo client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   Odoo server base URL (https://host[:port])
//	-d string   path of the local SQLite storage file
//	-t int      request timeout (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations accept strings like "30s" or integer nanoseconds:
//
//	{
//	  "storage_path": "odoo.db",
//	  "server_url": "https://odoo.example.com",
//	  "api_path": "/api",
//	  "request_timeout": "30s",
//	  "probe_timeout": "10s",
//	  "cache_ttl": "5m",
//	  "log_level": "info"
//	}
//
// Keys absent from the file keep their previous value.
package config
