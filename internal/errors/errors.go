package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates any failure. The command surface reports every
	// error with the same code.
	ExitUser = 1
)

// Sentinel errors for the backup engine.
var (
	// ErrNotFound indicates the requested backup does not exist.
	ErrNotFound = crdb.New("backup not found")

	// ErrConfig indicates configuration loading or validation failed.
	ErrConfig = crdb.New("invalid configuration")

	// ErrStorage indicates a backup directory could not be created or removed.
	ErrStorage = crdb.New("storage error")
)

// Re-exported helpers so callers need only this package.
var (
	New    = crdb.New
	Newf   = crdb.Newf
	Wrap   = crdb.Wrap
	Wrapf  = crdb.Wrapf
	Is     = crdb.Is
	As     = crdb.As
	Mark   = crdb.Mark
	Unwrap = crdb.Unwrap
)

// StorageError marks err as an [ErrStorage] failure with context.
// Returns nil if err is nil.
func StorageError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return crdb.Mark(crdb.Wrap(err, msg), ErrStorage)
}

// NotFoundf returns an [ErrNotFound] carrying a formatted message.
func NotFoundf(format string, args ...any) error {
	return crdb.Wrapf(ErrNotFound, format, args...)
}

// PartialCopyWarning reports a file that was skipped while taking a backup.
// It never aborts the backup; the file is left out of the record.
type PartialCopyWarning struct {
	Path string
	Err  error
}

func (w *PartialCopyWarning) Error() string {
	if w.Err == nil {
		return "skipped " + w.Path
	}
	return fmt.Sprintf("skipped %s: %v", w.Path, w.Err)
}

func (w *PartialCopyWarning) Unwrap() error {
	return w.Err
}

// RestoreError reports the file that stopped a rollback.
type RestoreError struct {
	Path string
	Err  error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restoring %s: %v", e.Path, e.Err)
}

func (e *RestoreError) Unwrap() error {
	return e.Err
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError for configuration failures.
// The underlying error is marked with [ErrConfig].
func NewConfigError(err error) *ExitError {
	if err != nil && !crdb.Is(err, ErrConfig) {
		err = crdb.Mark(err, ErrConfig)
	}
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Check .claudeguard/config.yaml or run: claudeguard init --force",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}
