// Package ui provides the terminal interface for collfilter.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It is the host display for the chunked
// renderer: the controller appends descriptors to a render.Buffer from its own
// goroutine and the model polls the buffer on a short tick, redrawing only
// when the buffer version moved. Request status comes from a state.Store the
// same way.
//
// # Layout
//
//   - Header: comparison parties, known tag count and the busy spinner
//   - Command bar: key hints for the focused control
//   - Form: tag field with completion from the known tag list and the two
//     spares options
//   - Results: section headings and rows with a row cursor; the line under
//     them shows the selected row's guide and collection links, and c copies
//     them to the clipboard
//   - Logs: optional pane with the tail of collfilter's own log
//   - Status line: per-section counts and elapsed time, or the last error
//
// # Submitting
//
// Enter submits the form through a tea.Cmd that calls the Submitter, so the
// event loop keeps drawing while a request renders. The form is greyed out and
// submits are refused until the request returns. Each submit saves the
// criteria to the preferences file, and the next start restores them.
//
// # Themes
//
// Dracula and Slate palettes are available; T cycles them outside the tag
// field and the choice is persisted with the other preferences.
package ui
