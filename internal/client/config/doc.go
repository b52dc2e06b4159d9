// Package config loads runtime configuration for the Syllabify CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: a .env file in the working directory (if present), then
//     SYLLABIFY_API_URL and SYLLABIFY_DB_PATH.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the Syllabify API
//	-d string   path of the local session database
//	-t int      request timeout in seconds (0 disables it)
//	-v          verbose (debug) logging
//
// # JSON schema
//
// Durations are strings like "10s" or integer nanoseconds:
//
//	{
//	  "api_url": "https://api.syllabify.example",
//	  "db_path": "/home/alice/.syllabify.db",
//	  "request_timeout": "10s",
//	  "verbose": true
//	}
package config
