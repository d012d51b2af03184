// Package app is the composition root for collfilter.
//
// # Overview
//
// New loads the config, builds the file logger, the catalog client and the
// session cache. Load then reads one comparison and wires the filter pipeline
// around it:
//
//	┌──────────────┐
//	│   New()      │ config, logger, catalog, session cache
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read ~/.config/collfilter/config.toml
//	       ├─────> catalog.NewClient()    Rate limited site client
//	       └─────> session.Open()         SQLite cache for the tag list
//
//	┌──────────────┐
//	│   Load()     │ one comparison
//	└──────┬───────┘
//	       │
//	       ├─────> compare.Fetch/ParseFile  records.Store
//	       ├─────> view.NewBuilder()        descriptors and links
//	       ├─────> render.NewBuffer/New()   host and chunked renderer
//	       └─────> controller.New()         request state machine
//
// # Commands
//
//   - RunTUI: Bubble Tea interface; a background refresher keeps the tag
//     suggestions current while it runs
//   - Print: one request, printed as one table per section
//   - KnownTags and ForgetTags: inspect or drop the cached tag list
//
// # Error Handling
//
// Fatal errors come back from New, Load and the commands: an unreadable
// config, an unreachable comparison page, a page without the comparison
// table, or no comparison target at all. A missing tag list is not fatal for
// the TUI; the tag field then works without suggestions. Refresh failures are
// logged and retried with exponential backoff.
//
// # Logging
//
// Everything is logged as JSON to log_path, never to the terminal. The TUI's
// log pane reads the same file back through logtail.
package app
