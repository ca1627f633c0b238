// Package config loads runtime configuration for the GophJournal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-f string   local SQLite file (bare names go under ./data)
//	-t int      request timeout (seconds)
//	-z string   IANA time zone for date filters, or "Local"
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_file": "journal.db",
//	  "request_timeout": "10s",
//	  "time_zone": "Europe/Riga"
//	}
package config
