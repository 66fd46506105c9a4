// Package errors provides error handling conventions for claudeguard.
//
// It re-exports the wrapping helpers from [github.com/cockroachdb/errors] so
// callers import a single errors package, and defines the failure taxonomy
// used by the backup engine:
//
//   - [ErrConfig]: configuration is malformed or missing (fatal at startup)
//   - [ErrNotFound]: an unknown backup id was requested
//   - [ErrStorage]: a backup directory could not be created or removed
//   - [PartialCopyWarning]: a single file could not be backed up (non-fatal)
//   - [RestoreError]: a single file could not be restored (fatal to rollback)
//
// # Exit Codes
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion for the CLI boundary:
//
//	err := errors.NewUserError(errors.ErrNotFound, "Run: claudeguard list")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
