// Package state provides thread-safe request status for the collfilter UI.
//
// # Overview
//
// A filter request runs on a background goroutine while the Bubble Tea program
// keeps drawing. The Store is where the two meet: the controller writes
// status transitions, the UI reads immutable snapshots on its tick.
//
//	Writer (controller):          Reader (UI tick):
//	┌──────────────────┐          ┌──────────────────┐
//	│ Begin(criteria)  │          │                  │
//	│ Progress(s, n)   │─────────→│ store.Snapshot() │
//	│ Finish(err)      │ (mutex)  │ render status    │
//	└──────────────────┘          └──────────────────┘
//
// # Busy Guard
//
// Begin doubles as the Idle → Busy transition. It returns false if a request
// is already in flight, which is how a second submission is refused. Finish
// always returns the store to Idle, with or without an error, so a failed
// catalog fetch can never leave the trigger disabled.
//
// # Error Semantics
//
//	store.Finish(nil)
//	→ HasResult = true, LastError = nil, ConsecutiveFailures = 0
//
//	store.Finish(err)
//	→ Counts kept, LastError = err, ConsecutiveFailures++
//
// Snapshot wraps LastError in a fresh error value so readers never share the
// writer's instance.
//
// # Testing Considerations
//
// The zero Store is ready to use. Tests inject a clock through the unexported
// now field.
package state
