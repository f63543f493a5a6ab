// Package config loads runtime configuration for the invtracker CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see Default).
//  2. Optional JSON file selected with -config or INVTRACKER_CONFIG.
//  3. Environment variables.
//  4. Command-line flags, which override everything else.
//
// # Environment
//
//	INVTRACKER_SERVER       backend base URL
//	INVTRACKER_DB           path to the local token database
//	INVTRACKER_PASSPHRASE   token store passphrase (skips the prompt)
//	INVTRACKER_LOG_LEVEL    debug, info, warn or error
//	INVTRACKER_CONFIG       path to the JSON config file
//
// # JSON schema
//
// Durations can be strings like "15s" or integer seconds:
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "db_path": "invtracker-client.db",
//	  "passphrase_file": "~/.invtracker-pass",
//	  "request_timeout": "30s",
//	  "refresh_timeout": "15s",
//	  "cache_responses": true,
//	  "log_level": "warn"
//	}
package config
