// Package config loads runtime configuration for the event booking CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults). The default base URL
//     can be replaced through the EVENTBOOKING_API_URL environment variable.
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-d string   path of the local SQLite database ("" keeps state in memory)
//	-t int      request timeout (seconds)
//	-v          verbose logging
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be either
// strings like "30s" or integer nanoseconds. Absent keys keep earlier values:
//
//	{
//	  "base_url": "http://localhost:8080/api",
//	  "database_path": "eventbooking.db",
//	  "request_timeout": "30s",
//	  "verbose": false
//	}
package config
