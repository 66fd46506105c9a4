package config

import (
	"fmt"

	"github.com/thoreinstein/claudeguard/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrMaxBackupsTooLow indicates backup.max_backups is below 1.
	ErrMaxBackupsTooLow = errors.New("backup.max_backups must be >= 1")

	// ErrRetentionTooLow indicates backup.retention_days is below 1.
	ErrRetentionTooLow = errors.New("backup.retention_days must be >= 1")

	// ErrThresholdRange indicates verification.compliance_threshold is outside 0-100.
	ErrThresholdRange = errors.New("verification.compliance_threshold must be between 0 and 100")
)

// Validate checks a Config for validity.
// Returns nil if valid, or every problem found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Backup.MaxBackups < 1 {
		errs = append(errs, &FieldError{Value: cfg.Backup.MaxBackups, Err: ErrMaxBackupsTooLow})
	}
	if cfg.Backup.RetentionDays < 1 {
		errs = append(errs, &FieldError{Value: cfg.Backup.RetentionDays, Err: ErrRetentionTooLow})
	}
	if t := cfg.Verification.ComplianceThreshold; t < 0 || t > 100 {
		errs = append(errs, &FieldError{Value: t, Err: ErrThresholdRange})
	}

	return errs
}

// FieldError carries the offending value of a failed check.
type FieldError struct {
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v (got %v)", e.Err, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
