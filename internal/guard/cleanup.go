package guard

import (
	"log/slog"
	"time"

	"github.com/thoreinstein/claudeguard/internal/errors"
)

// CleanupOptions overrides the configured retention. Zero values use the
// configuration.
type CleanupOptions struct {
	MaxBackups int
	MaxAgeDays int

	// DryRun reports what would be removed without removing it.
	DryRun bool
}

// CleanupResult describes a Cleanup call.
type CleanupResult struct {
	// Removed lists deleted backup ids, oldest first.
	Removed []string

	// Kept is how many backups remain.
	Kept int
}

// Cleanup enforces retention in two passes. The count pass deletes the
// oldest backups until at most MaxBackups remain. The age pass then deletes
// the remaining backups whose directory is older than MaxAgeDays.
//
// Running Cleanup twice with the same options removes nothing the second
// time. A backup that disappears during cleanup counts as removed.
func (m *Manager) Cleanup(opts CleanupOptions) (CleanupResult, error) {
	return m.cleanup(m.opLogger("cleanup"), opts)
}

func (m *Manager) cleanup(logger *slog.Logger, opts CleanupOptions) (CleanupResult, error) {
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = m.cfg.Backup.MaxBackups
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = m.cfg.Backup.RetentionDays
	}

	ids, err := m.store.Enumerate()
	if err != nil {
		return CleanupResult{}, err
	}

	var (
		res      CleanupResult
		firstErr error
	)
	remove := func(id, reason string) {
		if !opts.DryRun {
			if err := m.store.Delete(id); err != nil && !errors.Is(err, errors.ErrNotFound) {
				logger.Warn("removing backup failed", "backup_id", id, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				return
			}
		}
		logger.Debug("backup removed", "backup_id", id, "reason", reason, "dry_run", opts.DryRun)
		res.Removed = append(res.Removed, id)
	}

	remaining := ids
	if excess := len(ids) - opts.MaxBackups; excess > 0 {
		for _, id := range ids[:excess] {
			remove(id, "count")
		}
		remaining = ids[excess:]
	}

	cutoff := m.clock.Now().Add(-time.Duration(opts.MaxAgeDays) * 24 * time.Hour)
	for _, id := range remaining {
		mtime, err := m.store.ModTime(id)
		if err != nil {
			if !errors.Is(err, errors.ErrNotFound) {
				logger.Debug("skipping backup with unreadable age", "backup_id", id, "error", err)
			}
			continue
		}
		if mtime.Before(cutoff) {
			remove(id, "age")
		}
	}

	res.Kept = len(ids) - len(res.Removed)
	if len(res.Removed) > 0 {
		logger.Info("cleanup complete", "removed", len(res.Removed), "kept", res.Kept, "dry_run", opts.DryRun)
	}
	return res, firstErr
}
