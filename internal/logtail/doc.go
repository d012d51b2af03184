// Package logtail reads the last lines of a log file.
//
// The TUI's log pane uses it to show the tail of collfilter's own zap log
// without keeping the file open. A missing file is not an error; it reads as
// no lines, since nothing may have been logged yet.
package logtail
