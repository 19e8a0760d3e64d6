// Package config loads the ava client configuration.
//
// # Discovery
//
// Load reads the TOML file at the given path, or ~/.config/ava/config.toml
// when the path is empty. A missing file is not an error: the defaults are
// used and the client works without any configuration. Blank string values
// fall back to their defaults one by one; negative numbers are rejected.
//
// # Fields
//
//	api_url = "http://127.0.0.1:3000/"    # remote service base URL
//	data_dir = "~/.local/share/ava"       # cache.db and ava.log live here
//	log_level = "info"                    # debug, info, warn, error
//	page_size = 20                        # list page size, 0 disables paging
//	request_holdback_ms = 500             # minimum duration of auth requests
//	refresh_seconds = 60                  # background refresh, 0 disables it
//	metrics_addr = ""                     # Prometheus listener, empty disables it
//
// Paths starting with ~ are expanded to the home directory and made
// absolute. The returned Config is a plain value; nothing is cached at
// package level.
package config
