// Package logging provides structured logging for claudeguard using slog.
//
// The text handler prints one line per record and lifts the op and op_id
// attributes into a bracketed prefix, so every line of one backup or
// rollback can be picked out:
//
//	12:04:31 INFO  [create 5f0c9a1e] backup created backup_id=backup_20250930_160000_000000 risk=HIGH
//
// Both the text handler and [NewJSONHandler] mask values that look like
// credentials; operation details routinely carry shell commands.
// [Fanout] mirrors records to the --log-file sink.
//
// Tests use [ForTest] so output only shows up on failure or with -v.
package logging
