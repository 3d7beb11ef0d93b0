// Package config loads runtime configuration for the favisend CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. FAVISEND_* environment variables.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-d string   download directory
//
// # JSON schema
//
//	{
//	  "base_url": "https://backend-favisend.onrender.com",
//	  "request_timeout": "30s",
//	  "poll_attempts": 3,
//	  "poll_interval": "2s",
//	  "storage_dsn": "favisend.db",
//	  "download_dir": "downloads",
//	  "log_level": "info",
//	  "log_format": "console"
//	}
//
// Environment variables use the same names upper-cased with the FAVISEND_
// prefix, e.g. FAVISEND_POLL_INTERVAL=500ms.
package config
