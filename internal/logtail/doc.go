// Package logtail reads the tail of the client log file.
//
// The log is written by slog's text handler, one record per line:
//
//	time=2025-10-08T21:01:05Z level=WARN msg="operation failed" slot=conversationData.conversations error="..."
//
// Read keeps the last Options.Lines lines that pass the filters, using a
// ring buffer so memory stays proportional to the number of lines kept, not
// to the file size. Lines can be filtered by minimum level (parsed from the
// level= attribute) and by substring, which is how "ava logs --slot" narrows
// the output to one slot.
//
// A missing log file is not an error: Read returns no lines.
package logtail
