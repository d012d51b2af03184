// Package config handles loading and parsing the collfilter configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/collfilter/config.toml (default)
//  3. If the config file doesn't exist, fall back to Defaults()
//  4. If the file exists but fields are missing, empty or non-positive, use defaults
//
// # Default Values
//
//   - base_url: https://www.clickcritters.com
//   - slice_budget_ms: 100
//   - requests_per_second: 2
//   - request_timeout_seconds: 15
//   - session_db: ~/.cache/collfilter/session.db
//   - session_ttl_hours: 24
//   - log_path: ~/.local/state/collfilter/collfilter.log
//
// compare_to and cookie have no default. compare_to names the account to
// compare against; cookie is sent verbatim on every request because the
// comparison page needs a logged-in session.
//
// # TOML Format
//
//	base_url = "https://www.clickcritters.com"
//	compare_to = "202"
//	cookie = "PHPSESSID=..."
//	slice_budget_ms = 100
//	requests_per_second = 2
//	request_timeout_seconds = 15
//	session_db = "~/.cache/collfilter/session.db"
//	session_ttl_hours = 24
//	log_path = "~/.local/state/collfilter/collfilter.log"
//
// Tilde expansion is performed for session_db and log_path.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//
// Command-line flags are applied on top of the loaded Config by the caller.
package config
